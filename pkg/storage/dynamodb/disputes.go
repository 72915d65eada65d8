package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/armand/immo-contracts/pkg/models"
)

const (
	disputeContractIndex  = "contract_id-index"
	mediationDisputeIndex = "dispute_id-index"
)

// CreateDispute persists a new dispute and its automatically spawned mediation
// record in one atomic write. Every dispute starts with exactly one pending
// mediation.
func (s *Store) CreateDispute(ctx context.Context, dispute *models.Dispute, mediation *models.Mediation) error {
	disputeAV, err := attributevalue.MarshalMap(dispute)
	if err != nil {
		return fmt.Errorf("failed to marshal dispute: %w", err)
	}
	mediationAV, err := attributevalue.MarshalMap(mediation)
	if err != nil {
		return fmt.Errorf("failed to marshal mediation: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Disputes),
					Item:                disputeAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Mediations),
					Item:                mediationAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}

	return nil
}

// ListDisputes retrieves all disputes of a contract.
func (s *Store) ListDisputes(ctx context.Context, contractID string) ([]models.Dispute, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Disputes),
		IndexName:              aws.String(disputeContractIndex),
		KeyConditionExpression: aws.String("contract_id = :contract_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":contract_id": &types.AttributeValueMemberS{Value: contractID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query disputes: %w", err)
	}

	var disputes []models.Dispute
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &disputes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal disputes: %w", err)
	}

	return disputes, nil
}

// ListMediations retrieves the mediation records of a dispute.
func (s *Store) ListMediations(ctx context.Context, disputeID string) ([]models.Mediation, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Mediations),
		IndexName:              aws.String(mediationDisputeIndex),
		KeyConditionExpression: aws.String("dispute_id = :dispute_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":dispute_id": &types.AttributeValueMemberS{Value: disputeID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query mediations: %w", err)
	}

	var mediations []models.Mediation
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &mediations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mediations: %w", err)
	}

	return mediations, nil
}
