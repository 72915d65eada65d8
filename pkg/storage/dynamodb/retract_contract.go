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
	"github.com/armand/immo-contracts/pkg/storage"
)

// RetractContract exercises the retraction window: the contract is CASed from
// signed to retracted (the condition re-checks the deadline and the one-shot
// retraction_used flag server-side), then every live commission transaction of
// the contract is cancelled. Cancellations are individually conditional and
// tolerate already-cancelled rows, so a partial failure can be retried.
func (s *Store) RetractContract(ctx context.Context, contractID string, now time.Time) error {
	// The deadline condition compares strings, so :now_iso must use the same
	// fixed-width layout FinalizeContract stored the deadline with.
	now = now.UTC()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Contracts),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: contractID},
		},
		UpdateExpression: aws.String("SET #status = :retracted, retraction_used = :true, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :signed AND retraction_used = :false " +
			"AND retraction_deadline > :now_iso"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":retracted": &types.AttributeValueMemberS{Value: string(models.ContractRetracted)},
			":signed":    &types.AttributeValueMemberS{Value: string(models.ContractSigned)},
			":true":      &types.AttributeValueMemberBOOL{Value: true},
			":false":     &types.AttributeValueMemberBOOL{Value: false},
			":now":       nowAV,
			":now_iso":   &types.AttributeValueMemberS{Value: orderedTime(now)},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("contract %s cannot be retracted: %w", contractID, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to retract contract: %w", err)
	}

	// Cancel the contract's commission transactions. Forward-only statuses
	// make this idempotent on retry.
	txs, err := s.ListTransactionsByContract(ctx, contractID)
	if err != nil {
		return fmt.Errorf("failed to list transactions for retraction: %w", err)
	}

	for _, tx := range txs {
		if tx.Status == models.TransactionCancelled || tx.Status == models.TransactionPaid {
			continue
		}
		if err := s.cancelTransaction(ctx, tx.Id, now); err != nil {
			return fmt.Errorf("failed to cancel transaction %s: %w", tx.Id, err)
		}
	}

	return nil
}

// cancelTransaction moves a live transaction to cancelled. Rows that were
// concurrently paid or cancelled fail the condition and are left alone.
func (s *Store) cancelTransaction(ctx context.Context, txID string, now time.Time) error {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Transactions),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID},
		},
		UpdateExpression:    aws.String("SET #status = :cancelled, updated_at = :now"),
		ConditionExpression: aws.String("#status IN (:pending, :due, :overdue)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": &types.AttributeValueMemberS{Value: string(models.TransactionCancelled)},
			":pending":   &types.AttributeValueMemberS{Value: string(models.TransactionPending)},
			":due":       &types.AttributeValueMemberS{Value: string(models.TransactionDue)},
			":overdue":   &types.AttributeValueMemberS{Value: string(models.TransactionOverdue)},
			":now":       nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return nil
		}
		return err
	}

	return nil
}
