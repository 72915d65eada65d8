package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/storage"
)

const (
	landlordIndex = "landlord_id-index"
	tenantIndex   = "tenant_id-index"
	buyerIndex    = "buyer_id-index"
)

// GetContract retrieves a contract from DynamoDB by its ID.
func (s *Store) GetContract(ctx context.Context, contractID string) (*models.Contract, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": contractID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contract ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Contracts),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("contract %s: %w", contractID, storage.ErrNotFound)
	}

	var contract models.Contract
	if err := attributevalue.UnmarshalMap(result.Item, &contract); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract: %w", err)
	}

	return &contract, nil
}

// ListContractsByUserID retrieves all contracts where the user appears as
// landlord, tenant or buyer. Each role has its own GSI; results are merged and
// de-duplicated.
func (s *Store) ListContractsByUserID(ctx context.Context, userID string) ([]models.Contract, error) {
	var out []models.Contract
	seen := make(map[string]bool)

	for _, q := range []struct {
		index string
		attr  string
	}{
		{landlordIndex, "landlord_id"},
		{tenantIndex, "tenant_id"},
		{buyerIndex, "buyer_id"},
	} {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Contracts),
			IndexName:              aws.String(q.index),
			KeyConditionExpression: aws.String(fmt.Sprintf("%s = :user_id", q.attr)),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":user_id": &types.AttributeValueMemberS{Value: userID},
			},
		}

		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query contracts by %s: %w", q.attr, err)
		}

		var contracts []models.Contract
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &contracts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contracts: %w", err)
		}

		for _, c := range contracts {
			if !seen[c.Id] {
				seen[c.Id] = true
				out = append(out, c)
			}
		}
	}

	return out, nil
}
