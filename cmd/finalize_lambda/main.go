package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/armand/immo-contracts/pkg/blobstore"
	"github.com/armand/immo-contracts/pkg/notify"
	"github.com/armand/immo-contracts/pkg/render"
	"github.com/armand/immo-contracts/pkg/scheduler"
	dydbstore "github.com/armand/immo-contracts/pkg/storage/dynamodb"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/joho/godotenv"
)

var finalizer *workflow.Finalizer

func init() {
	// Load environment variables from .env file (useful for local testing).
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Initialize dependencies once.
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	store := dydbstore.New(dbClient, tablesFromEnv())

	renderer := render.NewHTTPRenderer(mustEnv("RENDERER_BASE_URL"), os.Getenv("RENDERER_API_TOKEN"))

	files, err := blobstore.NewMinioStore(blobstore.Config{
		Endpoint:  mustEnv("MINIO_ENDPOINT"),
		AccessKey: mustEnv("MINIO_ACCESS_KEY"),
		SecretKey: mustEnv("MINIO_SECRET_KEY"),
		Bucket:    mustEnv("MINIO_BUCKET"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		log.Fatalf("unable to initialize object storage: %v", err)
	}

	finalizer = workflow.NewFinalizer(store, renderer, files, notify.LogDispatcher{})
}

// HandleRequest processes SQS messages and finalizes the contracts they name.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var msg scheduler.FinalizationMessage
		if err := json.Unmarshal([]byte(message.Body), &msg); err != nil {
			log.Printf("ERROR: failed to unmarshal finalization message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		log.Printf("Attempting to finalize contract %s", msg.ContractId)

		if err := finalizer.Finalize(ctx, msg.ContractId); err != nil {
			log.Printf("ERROR: failed to finalize contract %s: %v", msg.ContractId, err)
			// In a production system, persistent failures would be sent to a DLQ.
			return err
		}

		log.Printf("Successfully finalized contract %s", msg.ContractId)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}

func tablesFromEnv() dydbstore.Tables {
	return dydbstore.Tables{
		Contracts:    mustEnv("DYNAMODB_CONTRACTS_TABLE_NAME"),
		Versions:     mustEnv("DYNAMODB_VERSIONS_TABLE_NAME"),
		Amendments:   mustEnv("DYNAMODB_AMENDMENTS_TABLE_NAME"),
		Signatures:   mustEnv("DYNAMODB_SIGNATURES_TABLE_NAME"),
		Transactions: mustEnv("DYNAMODB_TRANSACTIONS_TABLE_NAME"),
		Disputes:     mustEnv("DYNAMODB_DISPUTES_TABLE_NAME"),
		Mediations:   mustEnv("DYNAMODB_MEDIATIONS_TABLE_NAME"),
	}
}

func mustEnv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		log.Fatalf("%s environment variable not set", name)
	}
	return value
}
