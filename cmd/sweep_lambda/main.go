package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/armand/immo-contracts/pkg/storage"
	dydbstore "github.com/armand/immo-contracts/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var store storage.SweepStore

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	store = dydbstore.New(dbClient, tablesFromEnv())
}

// HandleRequest is triggered by an EventBridge Schedule. It advances
// commission transactions past their due date to due, and lingering due
// transactions to overdue.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting transaction sweep...")

	advanced, err := store.SweepTransactions(ctx, time.Now())
	if err != nil {
		log.Printf("ERROR: transaction sweep failed: %v", err)
		return err
	}

	log.Printf("Transaction sweep finished, advanced %d transactions.", advanced)
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
