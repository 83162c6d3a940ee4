package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsses "github.com/aws/aws-sdk-go-v2/service/ses"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"todam/handler"
	"todam/internal/appenv"
	"todam/internal/classify"
	"todam/internal/integrations/email"
	"todam/internal/integrations/lambdafn"
	"todam/internal/integrations/objectstore"
	"todam/internal/integrations/queue"
	"todam/internal/repository"
	"todam/internal/usecase"
)

func main() {
	ctx := context.Background()
	appenv.Load()

	// ---- Configuration (read only here) ----
	messagesTable := appenv.Must("MESSAGES_TABLE")
	segmentsTable := appenv.Must("SEGMENTS_TABLE")
	usersTable := appenv.Must("REGISTERED_USERS_TABLE")
	bucket := appenv.Must("S3_BUCKET")
	queueURL := appenv.Must("PARSE_IMAGE_FIFO_QUEUE_URL")
	parseImageFn := appenv.Must("PARSE_IMAGE_LAMBDA_FUNCTION_NAME")
	emailSource := appenv.Must("EMAIL_SOURCE")
	verifyURL := appenv.Must("VERIFY_REGISTRATION_URL")
	emailDomain := appenv.Must("REGISTRATION_EMAIL_DOMAIN")
	catalogPath := appenv.Or("STICKER_CATALOG_PATH", "stickers.json")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	messages, err := repository.NewMessageStore(dynamoClient, messagesTable)
	if err != nil {
		fatal("failed to create message store", err)
	}
	segments, err := repository.NewSegmentStore(dynamoClient, segmentsTable)
	if err != nil {
		fatal("failed to create segment store", err)
	}
	users, err := repository.NewUserStore(dynamoClient, usersTable)
	if err != nil {
		fatal("failed to create user store", err)
	}
	mailer, err := email.New(awsses.NewFromConfig(cfg), emailSource)
	if err != nil {
		fatal("failed to create email client", err)
	}
	jobQueue, err := queue.New(awssqs.NewFromConfig(cfg), queueURL)
	if err != nil {
		fatal("failed to create queue client", err)
	}
	store, err := objectstore.New(awss3.NewFromConfig(cfg), bucket)
	if err != nil {
		fatal("failed to create object store client", err)
	}
	invoker, err := lambdafn.New(awslambda.NewFromConfig(cfg))
	if err != nil {
		fatal("failed to create lambda client", err)
	}

	catalog, err := classify.LoadCatalog(catalogPath)
	if err != nil {
		fatal("failed to load sticker catalog", err)
	}
	classifier, err := classify.New(catalog, emailDomain)
	if err != nil {
		fatal("failed to create classifier", err)
	}

	// ---- Services ----
	verification, err := usecase.NewVerificationService(users, mailer, verifyURL)
	if err != nil {
		fatal("failed to create verification service", err)
	}
	recording, err := usecase.NewRecordingService(segments, verification, mailer)
	if err != nil {
		fatal("failed to create recording service", err)
	}
	ingest, err := usecase.NewIngestService(classifier, messages, recording, verification, jobQueue)
	if err != nil {
		fatal("failed to create ingest service", err)
	}

	// ---- Handler ----
	h, err := handler.NewIngestHandler(ingest, store, invoker, parseImageFn)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
