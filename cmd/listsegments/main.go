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

	segmentsTable := appenv.Must("SEGMENTS_TABLE")

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		fatal("failed to load AWS config", err)
	}

	segments, err := repository.NewSegmentStore(awsdynamodb.NewFromConfig(cfg), segmentsTable)
	if err != nil {
		fatal("failed to create segment store", err)
	}

	listing, err := usecase.NewListingService(segments)
	if err != nil {
		fatal("failed to create listing service", err)
	}

	h, err := handler.NewSegmentsHandler(listing)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
