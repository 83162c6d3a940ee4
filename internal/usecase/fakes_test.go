package usecase

import (
	"context"
	"sort"

	"todam/internal/domain"
	"todam/internal/repository"
)

func repositoryNotFound() error { return repository.ErrNotFound }

// In-memory stores mirroring the DynamoDB stores' conditional-write
// semantics, so lifecycle tests exercise the same race outcomes.

type fakeUserStore struct {
	users   map[string]domain.RegisteredUser
	getErr  error
	putErr  error
	markErr error

	putCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]domain.RegisteredUser{}}
}

func (f *fakeUserStore) Get(_ context.Context, userID string) (domain.RegisteredUser, error) {
	if f.getErr != nil {
		return domain.RegisteredUser{}, f.getErr
	}
	u, ok := f.users[userID]
	if !ok {
		return domain.RegisteredUser{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) PutApplication(_ context.Context, user domain.RegisteredUser, prior int64) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	existing, exists := f.users[user.UserID]
	if prior == 0 && exists {
		return repository.ErrConditionFailed
	}
	if prior != 0 && (!exists || existing.ApplyTimestamp != prior) {
		return repository.ErrConditionFailed
	}
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUserStore) MarkVerified(_ context.Context, userID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	f.users[userID] = u
	return nil
}

type fakeSegmentStore struct {
	segments map[string]domain.Segment
	guards   map[string]string // group id -> open segment id

	createErr error
	getErr    error
	closeErr  error
	listErr   error
	markErr   error
}

func newFakeSegmentStore() *fakeSegmentStore {
	return &fakeSegmentStore{segments: map[string]domain.Segment{}, guards: map[string]string{}}
}

func (f *fakeSegmentStore) CreateOpen(_ context.Context, seg domain.Segment) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, open := f.guards[seg.GroupID]; open {
		return repository.ErrConditionFailed
	}
	f.segments[seg.ID] = seg
	f.guards[seg.GroupID] = seg.ID
	return nil
}

func (f *fakeSegmentStore) GetOpen(_ context.Context, groupID string) (domain.Segment, error) {
	if f.getErr != nil {
		return domain.Segment{}, f.getErr
	}
	id, ok := f.guards[groupID]
	if !ok {
		return domain.Segment{}, repository.ErrNotFound
	}
	return f.segments[id], nil
}

func (f *fakeSegmentStore) Get(_ context.Context, segmentID string) (domain.Segment, error) {
	if f.getErr != nil {
		return domain.Segment{}, f.getErr
	}
	seg, ok := f.segments[segmentID]
	if !ok {
		return domain.Segment{}, repository.ErrNotFound
	}
	return seg, nil
}

func (f *fakeSegmentStore) Close(_ context.Context, groupID, segmentID string, endTimestamp int64, segmentName string) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	seg, ok := f.segments[segmentID]
	if !ok || seg.IsEnd || f.guards[groupID] != segmentID {
		return repository.ErrConditionFailed
	}
	seg.IsEnd = true
	seg.EndTimestamp = endTimestamp
	seg.SegmentName = segmentName
	f.segments[segmentID] = seg
	delete(f.guards, groupID)
	return nil
}

func (f *fakeSegmentStore) ListUnresolved(_ context.Context, groupID string) ([]domain.Segment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Segment
	for _, seg := range f.segments {
		if seg.IsResolved {
			continue
		}
		if groupID != "" && seg.GroupID != groupID {
			continue
		}
		out = append(out, seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSegmentStore) MarkResolved(_ context.Context, segmentID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	seg, ok := f.segments[segmentID]
	if !ok {
		return repository.ErrNotFound
	}
	seg.IsResolved = true
	f.segments[segmentID] = seg
	return nil
}

// openCount reports how many segments are open, the invariant the lifecycle
// tests assert on.
func (f *fakeSegmentStore) openCount() int {
	n := 0
	for _, seg := range f.segments {
		if !seg.IsEnd {
			n++
		}
	}
	return n
}

type fakeMessageStore struct {
	msgs     []domain.Message
	putErr   error
	queryErr error
	table    string
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{table: "messages-table"}
}

func (f *fakeMessageStore) Put(_ context.Context, msg domain.Message) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeMessageStore) QueryRange(_ context.Context, groupID string, start, end int64) ([]domain.Message, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []domain.Message
	for _, m := range f.msgs {
		if m.GroupID == groupID && m.SendTimestamp >= start && m.SendTimestamp <= end {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SendTimestamp < out[j].SendTimestamp })
	return out, nil
}

func (f *fakeMessageStore) TableName() string { return f.table }

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return f.err
}

type fakeQueue struct {
	sent []any
	err  error
}

func (f *fakeQueue) Send(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}
