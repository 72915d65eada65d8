package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/armand/immo-contracts/pkg/blobstore"
	"github.com/armand/immo-contracts/pkg/handlers"
	"github.com/armand/immo-contracts/pkg/notify"
	"github.com/armand/immo-contracts/pkg/render"
	"github.com/armand/immo-contracts/pkg/scheduler"
	dydbstore "github.com/armand/immo-contracts/pkg/storage/dynamodb"
	"github.com/armand/immo-contracts/pkg/workflow"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	store := dydbstore.New(dbClient, tablesFromEnv())

	// SQS Client and Scheduler
	sqsClient := sqs.NewFromConfig(cfg)
	sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
	if sqsQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}
	sqsScheduler := scheduler.NewSQSScheduler(sqsClient, sqsQueueURL)

	// PDF rendering service client.
	renderer := render.NewHTTPRenderer(mustEnv("RENDERER_BASE_URL"), os.Getenv("RENDERER_API_TOKEN"))

	// Object storage for contract PDFs.
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
	if err := files.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("unable to ensure PDF bucket: %v", err)
	}

	sms := notify.LogDispatcher{}
	signatureSecret := mustEnv("SIGNATURE_SECRET")

	contractService := workflow.NewContractService(store, renderer, files, sms)
	engine := workflow.NewEngine(store, store, sms, sqsScheduler, signatureSecret)
	disputeService := workflow.NewDisputeService(store)

	router := handlers.NewRouter(handlers.Deps{
		Store:     store,
		Contracts: contractService,
		Engine:    engine,
		Disputes:  disputeService,
		JWTSecret: mustEnv("JWT_SECRET"),
		Logger:    logger,
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	// Start the server
	err = http.ListenAndServe(":"+port, router)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// tablesFromEnv reads the DynamoDB table names, failing fast on any missing one.
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
