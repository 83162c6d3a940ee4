package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"todam/handler"
	"todam/internal/appenv"
	"todam/internal/integrations/imageparser"
	"todam/internal/integrations/queue"
	"todam/internal/usecase"
)

func main() {
	ctx := context.Background()
	appenv.Load()

	queueURL := appenv.Must("PARSE_IMAGE_FIFO_QUEUE_URL")
	apiURL := appenv.Must("PARSE_IMAGE_API_URL")
	bucket := appenv.Must("S3_BUCKET")

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		fatal("failed to load AWS config", err)
	}

	jobQueue, err := queue.New(awssqs.NewFromConfig(cfg), queueURL)
	if err != nil {
		fatal("failed to create queue client", err)
	}
	parser, err := imageparser.NewClient(apiURL)
	if err != nil {
		fatal("failed to create image parser client", err)
	}

	svc, err := usecase.NewParseImageService(jobQueue, parser, bucket)
	if err != nil {
		fatal("failed to create parse image service", err)
	}

	h, err := handler.NewParseImageHandler(svc)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
