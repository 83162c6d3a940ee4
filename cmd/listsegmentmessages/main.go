package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"todam/handler"
	"todam/internal/appenv"
	"todam/internal/repository"
	"todam/internal/usecase"
)

func main() {
	ctx := context.Background()
	appenv.Load()

	messagesTable := appenv.Must("MESSAGES_TABLE")
	segmentsTable := appenv.Must("SEGMENTS_TABLE")

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		fatal("failed to load AWS config", err)
	}

	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	messages, err := repository.NewMessageStore(dynamoClient, messagesTable)
	if err != nil {
		fatal("failed to create message store", err)
	}
	segments, err := repository.NewSegmentStore(dynamoClient, segmentsTable)
	if err != nil {
		fatal("failed to create segment store", err)
	}

	correlation, err := usecase.NewCorrelationService(segments, messages)
	if err != nil {
		fatal("failed to create correlation service", err)
	}

	h, err := handler.NewSegmentMessagesHandler(correlation)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
