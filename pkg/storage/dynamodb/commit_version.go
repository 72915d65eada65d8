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

// CommitVersion atomically snapshots the contract's previous content as an
// immutable version row and applies the merged content with a bumped version.
// Two guards prevent concurrent amendment acceptances from producing duplicate
// version numbers: the snapshot put requires the (contract_id, version_number)
// key to be absent, and the contract update requires version to still equal
// the snapshot's version_number. Either failing surfaces ErrVersionConflict.
func (s *Store) CommitVersion(ctx context.Context, snapshot *models.ContractVersion, updated *models.Contract) error {
	snapshotAV, err := attributevalue.MarshalMap(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal version snapshot: %w", err)
	}

	templateDataAV, err := attributevalue.Marshal(updated.TemplateData)
	if err != nil {
		return fmt.Errorf("failed to marshal template data: %w", err)
	}
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Snapshot the previous version content.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Versions),
					Item:                snapshotAV,
					ConditionExpression: aws.String("attribute_not_exists(contract_id) AND attribute_not_exists(version_number)"),
				},
			},
			{
				// Operation 2: Apply the merged content and bump the version.
				Update: &types.Update{
					TableName: aws.String(s.Tables.Contracts),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: updated.Id},
					},
					UpdateExpression:    aws.String("SET template_data = :template_data, version = :new_version, pdf_path = :pdf_path, #status = :status, updated_at = :now"),
					ConditionExpression: aws.String("version = :expected_version"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":template_data":    templateDataAV,
						":new_version":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", updated.Version)},
						":expected_version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", snapshot.VersionNumber)},
						":pdf_path":         &types.AttributeValueMemberS{Value: updated.PdfPath},
						":status":           &types.AttributeValueMemberS{Value: string(updated.Status)},
						":now":              nowAV,
					},
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if transactConditionFailed(err) {
			return fmt.Errorf("contract %s version %d: %w", updated.Id, snapshot.VersionNumber, storage.ErrVersionConflict)
		}
		return fmt.Errorf("failed to commit contract version: %w", err)
	}

	return nil
}

// ListVersions retrieves the immutable version snapshots of a contract, oldest
// first.
func (s *Store) ListVersions(ctx context.Context, contractID string) ([]models.ContractVersion, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Versions),
		KeyConditionExpression: aws.String("contract_id = :contract_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":contract_id": &types.AttributeValueMemberS{Value: contractID},
		},
		ScanIndexForward: aws.Bool(true),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query contract versions: %w", err)
	}

	var versions []models.ContractVersion
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &versions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract versions: %w", err)
	}

	return versions, nil
}
