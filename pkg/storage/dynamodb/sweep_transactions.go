package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/armand/immo-contracts/pkg/models"
)

const transactionStatusIndex = "status-due_date-index"

// SweepTransactions advances commission transactions along their time-based
// lifecycle: pending becomes due once due_date has passed, due becomes overdue
// once due_date plus the overdue delay has passed. Every individual update is
// status-conditional, so the sweep only moves forward, never regresses, and
// re-running it is a no-op. Returns the number of transactions advanced.
func (s *Store) SweepTransactions(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	advanced := 0

	// pending -> due: everything whose due_date is already behind us.
	pendingTxs, err := s.queryByStatusBefore(ctx, models.TransactionPending, now)
	if err != nil {
		return advanced, fmt.Errorf("failed to query pending transactions: %w", err)
	}
	for _, tx := range pendingTxs {
		ok, err := s.advanceTransaction(ctx, tx.Id, models.TransactionPending, models.TransactionDue, now)
		if err != nil {
			return advanced, fmt.Errorf("failed to advance transaction %s to due: %w", tx.Id, err)
		}
		if ok {
			advanced++
		}
	}

	// due -> overdue: due_date + overdue delay behind us, i.e. due_date before
	// now - delay.
	dueTxs, err := s.queryByStatusBefore(ctx, models.TransactionDue, now.Add(-models.OverdueDelay))
	if err != nil {
		return advanced, fmt.Errorf("failed to query due transactions: %w", err)
	}
	for _, tx := range dueTxs {
		ok, err := s.advanceTransaction(ctx, tx.Id, models.TransactionDue, models.TransactionOverdue, now)
		if err != nil {
			return advanced, fmt.Errorf("failed to advance transaction %s to overdue: %w", tx.Id, err)
		}
		if ok {
			advanced++
		}
	}

	return advanced, nil
}

// queryByStatusBefore lists transactions in the given status whose due_date is
// strictly before the cutoff. due_date is stored fixed-width, so the range
// comparison is chronological.
func (s *Store) queryByStatusBefore(ctx context.Context, status models.TransactionStatus, cutoff time.Time) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Transactions),
		IndexName:              aws.String(transactionStatusIndex),
		KeyConditionExpression: aws.String("#status = :status AND due_date < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":cutoff": &types.AttributeValueMemberS{Value: orderedTime(cutoff)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &txs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	return txs, nil
}

// advanceTransaction moves one transaction forward between two adjacent
// lifecycle statuses. A row that changed underneath us (paid, cancelled, or
// already advanced by a concurrent sweep) fails the condition and reports
// false without error.
func (s *Store) advanceTransaction(ctx context.Context, txID string, from, to models.TransactionStatus, now time.Time) (bool, error) {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return false, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Transactions),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID},
		},
		UpdateExpression:    aws.String("SET #status = :to_status, updated_at = :now"),
		ConditionExpression: aws.String("#status = :from_status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to_status":   &types.AttributeValueMemberS{Value: string(to)},
			":from_status": &types.AttributeValueMemberS{Value: string(from)},
			":now":         nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
