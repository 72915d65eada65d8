package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/armand/immo-contracts/pkg/models"
)

// CreateContract persists a freshly built draft contract. The caller has
// already rendered and stored the PDF; this is the last step of creation, so
// a render failure never leaves a half-created contract behind.
func (s *Store) CreateContract(ctx context.Context, contract *models.Contract) error {
	item, err := attributevalue.MarshalMap(contract)
	if err != nil {
		return fmt.Errorf("failed to marshal contract: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Contracts),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to put contract: %w", err)
	}

	return nil
}
