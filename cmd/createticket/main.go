package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"todam/handler"
	"todam/internal/appenv"
	"todam/internal/integrations/paramstore"
	"todam/internal/integrations/ticketing"
	"todam/internal/repository"
	"todam/internal/usecase"
)

func main() {
	ctx := context.Background()
	appenv.Load()

	segmentsTable := appenv.Must("SEGMENTS_TABLE")
	apiURL := appenv.Must("TICKET_API_URL")
	apiKeyParam := appenv.Or("TICKET_API_KEY_PARAM", "CreateTicketApiKey")

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		fatal("failed to load AWS config", err)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		fatal("failed to create SSM client", err)
	}
	ticketAPI, err := ticketing.NewClient(ssmClient, apiKeyParam, apiURL)
	if err != nil {
		fatal("failed to create ticketing client", err)
	}
	segments, err := repository.NewSegmentStore(awsdynamodb.NewFromConfig(cfg), segmentsTable)
	if err != nil {
		fatal("failed to create segment store", err)
	}

	svc, err := usecase.NewTicketService(ticketAPI, segments)
	if err != nil {
		fatal("failed to create ticket service", err)
	}

	h, err := handler.NewTicketHandler(svc)
	if err != nil {
		fatal("failed to create handler", err)
	}

	lambda.Start(h.Handle)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
