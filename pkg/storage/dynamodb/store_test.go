package dynamodb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/storage"
	"github.com/armand/immo-contracts/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	Contracts:    "contracts",
	Versions:     "contract_versions",
	Amendments:   "amendments",
	Signatures:   "signatures",
	Transactions: "transactions",
	Disputes:     "disputes",
	Mediations:   "mediations",
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var orderedTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}Z$`)

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func transactCancelled() error {
	return &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
}

func marshalItems(t *testing.T, txs []models.Transaction) []map[string]types.AttributeValue {
	t.Helper()
	items := make([]map[string]types.AttributeValue, len(txs))
	for i, tx := range txs {
		item, err := attributevalue.MarshalMap(tx)
		require.NoError(t, err)
		items[i] = item
	}
	return items
}

func TestCommitVersion(t *testing.T) {
	snapshot := &models.ContractVersion{ContractId: "c1", VersionNumber: 1, TemplateData: map[string]any{"type": "location"}}
	updated := &models.Contract{Id: "c1", Version: 2, Status: models.ContractAmended, TemplateData: map[string]any{"type": "location"}}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.TransactWriteItemsInput) bool {
			if len(input.TransactItems) != 2 {
				return false
			}
			put, update := input.TransactItems[0].Put, input.TransactItems[1].Update
			return put != nil && *put.TableName == "contract_versions" &&
				update != nil && *update.TableName == "contracts" &&
				*update.ConditionExpression == "version = :expected_version"
		})).Return(&awsdynamodb.TransactWriteItemsOutput{}, nil)

		err := store.CommitVersion(context.Background(), snapshot, updated)
		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("A lost race surfaces ErrVersionConflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, transactCancelled())

		err := store.CommitVersion(context.Background(), snapshot, updated)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("Other failures pass through", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		err := store.CommitVersion(context.Background(), snapshot, updated)
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrVersionConflict)
	})
}

func TestFinalizeContract(t *testing.T) {
	contract := &models.Contract{Id: "c1", Type: models.ContractLocation, Status: models.ContractSent}
	commissions := []models.Commission{
		{UserId: "landlord-1", PartyType: models.RoleLandlord, Amount: 125_000},
		{UserId: "tenant-1", PartyType: models.RoleTenant, Amount: 125_000},
	}

	t.Run("Writes the CAS update plus one put per commission", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.TransactWriteItemsInput) bool {
			if len(input.TransactItems) != 3 {
				return false
			}
			update := input.TransactItems[0].Update
			if update == nil || *update.TableName != "contracts" {
				return false
			}
			// Fixed-width so the retraction CAS string comparison is exact.
			deadline := update.ExpressionAttributeValues[":deadline"].(*types.AttributeValueMemberS).Value
			if deadline != "2026-03-12T12:00:00.000000000Z" {
				return false
			}
			for _, item := range input.TransactItems[1:] {
				if item.Put == nil || *item.Put.TableName != "transactions" {
					return false
				}
				dueDate := item.Put.Item["due_date"].(*types.AttributeValueMemberS).Value
				if !orderedTimePattern.MatchString(dueDate) {
					return false
				}
			}
			return true
		})).Return(&awsdynamodb.TransactWriteItemsOutput{}, nil)

		err := store.FinalizeContract(context.Background(), contract, "contracts/c1/v1-signed.pdf", commissions, testNow)
		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("A second finalization surfaces ErrAlreadyFinalized", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, transactCancelled())

		err := store.FinalizeContract(context.Background(), contract, "contracts/c1/v1-signed.pdf", commissions, testNow)
		assert.ErrorIs(t, err, storage.ErrAlreadyFinalized)
	})
}

func TestRetractContract(t *testing.T) {
	t.Run("Cancels the live transactions after the CAS", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		// The contract CAS, probing the deadline with the stored layout.
		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.UpdateItemInput) bool {
			if *input.TableName != "contracts" {
				return false
			}
			nowIso := input.ExpressionAttributeValues[":now_iso"].(*types.AttributeValueMemberS).Value
			return nowIso == "2026-03-10T12:00:00.000000000Z"
		})).Return(&awsdynamodb.UpdateItemOutput{}, nil).Once()

		txs := []models.Transaction{
			{Id: "t1", ContractId: "c1", Status: models.TransactionPending},
			{Id: "t2", ContractId: "c1", Status: models.TransactionPaid},
			{Id: "t3", ContractId: "c1", Status: models.TransactionDue},
		}
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&awsdynamodb.QueryOutput{Items: marshalItems(t, txs)}, nil)

		// Only the two live rows are cancelled.
		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.UpdateItemInput) bool {
			return *input.TableName == "transactions"
		})).Return(&awsdynamodb.UpdateItemOutput{}, nil).Twice()

		err := store.RetractContract(context.Background(), "c1", testNow)
		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Outside the window surfaces ErrInvalidState", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, conditionFailed())

		err := store.RetractContract(context.Background(), "c1", testNow)
		assert.ErrorIs(t, err, storage.ErrInvalidState)
	})

	t.Run("A concurrently paid transaction is left alone", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.UpdateItemInput) bool {
			return *input.TableName == "contracts"
		})).Return(&awsdynamodb.UpdateItemOutput{}, nil).Once()

		txs := []models.Transaction{{Id: "t1", ContractId: "c1", Status: models.TransactionPending}}
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&awsdynamodb.QueryOutput{Items: marshalItems(t, txs)}, nil)

		// The cancel condition fails because the row was paid in between.
		mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.UpdateItemInput) bool {
			return *input.TableName == "transactions"
		})).Return(nil, conditionFailed()).Once()

		err := store.RetractContract(context.Background(), "c1", testNow)
		assert.NoError(t, err)
	})
}

func TestSweepTransactions(t *testing.T) {
	t.Run("Advances pending to due and due to overdue", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		pending := []models.Transaction{
			{Id: "t1", Status: models.TransactionPending, DueDate: testNow.Add(-time.Hour)},
			{Id: "t2", Status: models.TransactionPending, DueDate: testNow.Add(-2 * time.Hour)},
		}
		due := []models.Transaction{
			{Id: "t3", Status: models.TransactionDue, DueDate: testNow.Add(-8 * 24 * time.Hour)},
		}

		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.QueryInput) bool {
			if input.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value != "pending" {
				return false
			}
			cutoff := input.ExpressionAttributeValues[":cutoff"].(*types.AttributeValueMemberS).Value
			return cutoff == "2026-03-10T12:00:00.000000000Z"
		})).Return(&awsdynamodb.QueryOutput{Items: marshalItems(t, pending)}, nil)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.QueryInput) bool {
			return input.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value == "due"
		})).Return(&awsdynamodb.QueryOutput{Items: marshalItems(t, due)}, nil)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&awsdynamodb.UpdateItemOutput{}, nil).Times(3)

		advanced, err := store.SweepTransactions(context.Background(), testNow)
		require.NoError(t, err)
		assert.Equal(t, 3, advanced)
		mockClient.AssertExpectations(t)
	})

	t.Run("Rows advanced by a concurrent sweep are not counted", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		pending := []models.Transaction{
			{Id: "t1", Status: models.TransactionPending, DueDate: testNow.Add(-time.Hour)},
			{Id: "t2", Status: models.TransactionPending, DueDate: testNow.Add(-2 * time.Hour)},
		}
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.QueryInput) bool {
			return input.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value == "pending"
		})).Return(&awsdynamodb.QueryOutput{Items: marshalItems(t, pending)}, nil)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.QueryInput) bool {
			return input.ExpressionAttributeValues[":status"].(*types.AttributeValueMemberS).Value == "due"
		})).Return(&awsdynamodb.QueryOutput{}, nil)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&awsdynamodb.UpdateItemOutput{}, nil).Once()
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, conditionFailed()).Once()

		advanced, err := store.SweepTransactions(context.Background(), testNow)
		require.NoError(t, err)
		assert.Equal(t, 1, advanced)
	})

	t.Run("Nothing to do", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("Query", mock.Anything, mock.Anything).Return(&awsdynamodb.QueryOutput{}, nil).Twice()

		advanced, err := store.SweepTransactions(context.Background(), testNow)
		require.NoError(t, err)
		assert.Equal(t, 0, advanced)
	})
}

func TestGetContract(t *testing.T) {
	t.Run("Missing contract surfaces ErrNotFound", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&awsdynamodb.GetItemOutput{}, nil)

		_, err := store.GetContract(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		item, err := attributevalue.MarshalMap(models.Contract{Id: "c1", Status: models.ContractSent, Version: 1})
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&awsdynamodb.GetItemOutput{Item: item}, nil)

		contract, err := store.GetContract(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, "c1", contract.Id)
		assert.Equal(t, models.ContractSent, contract.Status)
	})
}

func TestMarkSigned(t *testing.T) {
	t.Run("A stale slot surfaces ErrInvalidState", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := New(mockClient, testTables)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, conditionFailed())

		signedAt := testNow
		err := store.MarkSigned(context.Background(), &models.Signature{
			ContractId: "c1",
			SignerKey:  "u1#tenant",
			OtpCode:    "123456",
			SignedAt:   &signedAt,
		})
		assert.ErrorIs(t, err, storage.ErrInvalidState)
	})
}
