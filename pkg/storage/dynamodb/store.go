package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/armand/immo-contracts/pkg/storage"
)

// orderedTimeLayout formats timestamps that DynamoDB compares or range-keys as
// strings (retraction_deadline, due_date). The fixed-width fraction keeps
// lexicographic order identical to chronological order; RFC3339Nano drops
// trailing zeros and mis-orders instants within the same second.
const orderedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func orderedTime(t time.Time) string {
	return t.UTC().Format(orderedTimeLayout)
}

// DynamoDBAPI captures the subset of the DynamoDB client used by the store.
// Declared here so tests can mock the client.
//
//go:generate mockery --name DynamoDBAPI --output mocks
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables holds the DynamoDB table names the store operates on.
type Tables struct {
	Contracts    string
	Versions     string
	Amendments   string
	Signatures   string
	Transactions string
	Disputes     string
	Mediations   string
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{Client: client, Tables: tables}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// isConditionalCheckFailed reports whether an UpdateItem/PutItem error was a
// failed ConditionExpression.
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// transactConditionFailed reports whether a TransactWriteItems error was
// cancelled because one of its condition checks failed.
func transactConditionFailed(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
