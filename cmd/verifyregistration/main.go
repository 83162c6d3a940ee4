package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsses "github.com/aws/aws-sdk-go-v2/service/ses"

	"todam/handler"
	"todam/internal/appenv"
	"todam/internal/integrations/email"
	"todam/internal/repository"
	"todam/internal/usecase"
)

func main() {
	ctx := context.Background()
	appenv.Load()

	usersTable := appenv.Must("REGISTERED_USERS_TABLE")
	emailSource := appenv.Must("EMAIL_SOURCE")
	verifyURL := appenv.Must("VERIFY_REGISTRATION_URL")

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		fatal("failed to load AWS config", err)
	}

	users, err := repository.NewUserStore(awsdynamodb.NewFromConfig(cfg), usersTable)
	if err != nil {
		fatal("failed to create user store", err)
	}
	mailer, err := email.New(awsses.NewFromConfig(cfg), emailSource)
	if err != nil {
		fatal("failed to create email client", err)
	}

	verification, err := usecase.NewVerificationService(users, mailer, verifyURL)
	if err != nil {
		fatal("failed to create verification service", err)
	}

	h, err := handler.NewVerifyHandler(verification)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
