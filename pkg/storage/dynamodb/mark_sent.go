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

// MarkSent transitions a draft contract to sent and stamps sent_at.
func (s *Store) MarkSent(ctx context.Context, contractID string, now time.Time) error {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Contracts),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: contractID},
		},
		UpdateExpression:    aws.String("SET #status = :sent_status, sent_at = :now, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :draft_status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sent_status":  &types.AttributeValueMemberS{Value: string(models.ContractSent)},
			":draft_status": &types.AttributeValueMemberS{Value: string(models.ContractDraft)},
			":now":          nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("contract %s is not a draft: %w", contractID, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to mark contract sent: %w", err)
	}

	return nil
}

// SetContractStatus transitions the contract between the two given statuses.
func (s *Store) SetContractStatus(ctx context.Context, contractID string, from, to models.ContractStatus) error {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Contracts),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: contractID},
		},
		UpdateExpression:    aws.String("SET #status = :to_status, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :from_status"),
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
			return fmt.Errorf("contract %s is not %s: %w", contractID, from, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to update contract status: %w", err)
	}

	return nil
}
