package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"todam/internal/domain"
	"todam/internal/repository"
)

const (
	// Minimum gap between verification emails for one unverified user.
	applyThrottle = 60 * time.Second
	// How long a verification code stays valid.
	codeTTL = 24 * time.Hour

	registrationEmailSubject = "Todam - Complete Your Registration"
)

// UserStore is the registered-user persistence consumed by the services.
type UserStore interface {
	Get(ctx context.Context, userID string) (domain.RegisteredUser, error)
	PutApplication(ctx context.Context, user domain.RegisteredUser, priorApplyTimestamp int64) error
	MarkVerified(ctx context.Context, userID string) error
}

// Mailer sends a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// VerificationService manages time-boxed registration codes and verified-user
// state.
type VerificationService struct {
	users     UserStore
	mailer    Mailer
	verifyURL string
	now       func() time.Time
}

// NewVerificationService creates a VerificationService. verifyURL is the
// public callback endpoint embedded in registration emails.
func NewVerificationService(users UserStore, mailer Mailer, verifyURL string) (*VerificationService, error) {
	if users == nil {
		return nil, errors.New("usecase: user store must not be nil")
	}
	if mailer == nil {
		return nil, errors.New("usecase: mailer must not be nil")
	}
	verifyURL = strings.TrimSpace(verifyURL)
	if verifyURL == "" {
		return nil, errors.New("usecase: verify URL must not be empty")
	}
	return &VerificationService{
		users:     users,
		mailer:    mailer,
		verifyURL: verifyURL,
		now:       time.Now,
	}, nil
}

func (s *VerificationService) nowMillis() int64 {
	return s.now().UnixMilli()
}

// Apply records a registration request and emails a fresh verification code.
// Already-verified users and unverified users inside the throttle window are
// silent no-ops; so is losing a write race to a concurrent application.
func (s *VerificationService) Apply(ctx context.Context, userID, email string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(email) == "" {
		return newError(ErrorBadInput, "missing_user_or_email", nil)
	}

	var priorApply int64
	prior, err := s.users.Get(ctx, userID)
	switch {
	case err == nil:
		if prior.IsVerified {
			slog.Info("registration application ignored, user already verified", "user_id", userID)
			return nil
		}
		if s.nowMillis()-prior.ApplyTimestamp < applyThrottle.Milliseconds() {
			slog.Info("registration application throttled", "user_id", userID)
			return nil
		}
		priorApply = prior.ApplyTimestamp
	case errors.Is(err, repository.ErrNotFound):
		// first application
	default:
		return newError(ErrorInternal, "user_lookup_error", err)
	}

	code := uuid.NewString()
	name := emailLocalPart(email)
	user := domain.RegisteredUser{
		UserID:           userID,
		Email:            email,
		Name:             name,
		ApplyTimestamp:   s.nowMillis(),
		VerificationCode: code,
		IsVerified:       false,
	}
	if err := s.users.PutApplication(ctx, user, priorApply); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			slog.Info("concurrent registration application, keeping the earlier one", "user_id", userID)
			return nil
		}
		return newError(ErrorInternal, "user_write_error", err)
	}
	slog.Info("registration application recorded", "user_id", userID, "email", email)

	link := fmt.Sprintf("%s?user_id=%s&code=%s", s.verifyURL, userID, code)
	body := fmt.Sprintf("Hi %s, Please click on the link to complete your registration:\n %s", name, link)
	if err := s.mailer.Send(ctx, email, registrationEmailSubject, body); err != nil {
		// Unlike recording notifications, this email carries the code; without
		// it the application is useless.
		return newError(ErrorUpstream, "registration_email_error", err)
	}
	return nil
}

// Verify checks a callback code and flips the user to verified. This is the
// only mutation path for is_verified.
func (s *VerificationService) Verify(ctx context.Context, userID, code string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(code) == "" {
		return newError(ErrorBadInput, "missing_user_or_code", nil)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrorNotFound, "user_not_registered", err)
		}
		return newError(ErrorInternal, "user_lookup_error", err)
	}

	if s.nowMillis()-user.ApplyTimestamp > codeTTL.Milliseconds() {
		return newError(ErrorExpired, "verification_code_expired", nil)
	}
	if user.VerificationCode != code {
		return newError(ErrorInvalidCode, "verification_code_mismatch", nil)
	}

	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return newError(ErrorInternal, "user_write_error", err)
	}
	slog.Info("user verified", "user_id", userID)
	return nil
}

// ResolveUserType derives the display type for a user: "TAM" for a verified
// registration, "Client" otherwise. Recomputed on every message, never
// cached.
func (s *VerificationService) ResolveUserType(ctx context.Context, userID string) string {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("user type lookup failed, defaulting to Client", "user_id", userID, "err", err)
		}
		return domain.UserTypeClient
	}
	if user.IsVerified {
		return domain.UserTypeTAM
	}
	return domain.UserTypeClient
}

// VerifiedUser returns the registration record for a user along with whether
// it is verified. An unregistered user is (zero, false, nil).
func (s *VerificationService) VerifiedUser(ctx context.Context, userID string) (domain.RegisteredUser, bool, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.RegisteredUser{}, false, nil
		}
		return domain.RegisteredUser{}, false, fmt.Errorf("usecase: verified lookup: %w", err)
	}
	return user, user.IsVerified, nil
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}
