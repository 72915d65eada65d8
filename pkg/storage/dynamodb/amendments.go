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

const amendmentContractIndex = "contract_id-index"

// CreateAmendment persists a pending amendment and moves the contract to
// under_review in the same write. A contract goes under review as soon as an
// amendment is proposed, before any acceptance.
func (s *Store) CreateAmendment(ctx context.Context, amendment *models.Amendment) error {
	amendmentAV, err := attributevalue.MarshalMap(amendment)
	if err != nil {
		return fmt.Errorf("failed to marshal amendment: %w", err)
	}
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Create the amendment record.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Amendments),
					Item:                amendmentAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				// Operation 2: Put the contract under review. Only live,
				// unsigned contracts can be amended.
				Update: &types.Update{
					TableName: aws.String(s.Tables.Contracts),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: amendment.ContractId},
					},
					UpdateExpression:    aws.String("SET #status = :under_review, updated_at = :now"),
					ConditionExpression: aws.String("attribute_exists(id) AND #status IN (:sent, :under_review, :amended)"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":under_review": &types.AttributeValueMemberS{Value: string(models.ContractUnderReview)},
						":sent":         &types.AttributeValueMemberS{Value: string(models.ContractSent)},
						":amended":      &types.AttributeValueMemberS{Value: string(models.ContractAmended)},
						":now":          nowAV,
					},
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if transactConditionFailed(err) {
			return fmt.Errorf("contract %s cannot be amended: %w", amendment.ContractId, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to create amendment: %w", err)
	}

	return nil
}

// GetAmendment retrieves an amendment from DynamoDB by its ID.
func (s *Store) GetAmendment(ctx context.Context, amendmentID string) (*models.Amendment, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": amendmentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amendment ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Amendments),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get amendment from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("amendment %s: %w", amendmentID, storage.ErrNotFound)
	}

	var amendment models.Amendment
	if err := attributevalue.UnmarshalMap(result.Item, &amendment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal amendment: %w", err)
	}

	return &amendment, nil
}

// ListAmendments retrieves all amendments of a contract, newest first.
func (s *Store) ListAmendments(ctx context.Context, contractID string) ([]models.Amendment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Amendments),
		IndexName:              aws.String(amendmentContractIndex),
		KeyConditionExpression: aws.String("contract_id = :contract_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":contract_id": &types.AttributeValueMemberS{Value: contractID},
		},
		ScanIndexForward: aws.Bool(false),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query amendments: %w", err)
	}

	var amendments []models.Amendment
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &amendments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal amendments: %w", err)
	}

	return amendments, nil
}

// UpdateAmendmentStatus records the counter-party's response on a pending
// amendment.
func (s *Store) UpdateAmendmentStatus(ctx context.Context, amendmentID string, status models.AmendmentStatus, respondedBy, note string) error {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Amendments),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: amendmentID},
		},
		UpdateExpression:    aws.String("SET #status = :status, responded_by = :responded_by, response_note = :note, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status IN (:pending, :negotiating)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":       &types.AttributeValueMemberS{Value: string(status)},
			":responded_by": &types.AttributeValueMemberS{Value: respondedBy},
			":note":         &types.AttributeValueMemberS{Value: note},
			":pending":      &types.AttributeValueMemberS{Value: string(models.AmendmentPending)},
			":negotiating":  &types.AttributeValueMemberS{Value: string(models.AmendmentNegotiating)},
			":now":          nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("amendment %s is not awaiting a response: %w", amendmentID, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to update amendment status: %w", err)
	}

	return nil
}
