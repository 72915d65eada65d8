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
	"github.com/google/uuid"
)

// FinalizeContract commits full signing in one atomic write: the contract is
// CASed from its pre-signed status to signed (stamping signed_at, the signed
// PDF path and the 48h retraction deadline) and one pending commission
// transaction is created per party. The status CAS makes the whole operation
// at-most-once: a second invocation, whether from a duplicate queue delivery
// or from two signatures completing concurrently, fails the condition and
// surfaces ErrAlreadyFinalized.
func (s *Store) FinalizeContract(ctx context.Context, contract *models.Contract, signedPdfPath string, commissions []models.Commission, now time.Time) error {
	now = now.UTC()
	deadline := now.Add(models.RetractionWindow)
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: CAS the contract to signed.
			Update: &types.Update{
				TableName: aws.String(s.Tables.Contracts),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: contract.Id},
				},
				UpdateExpression: aws.String("SET #status = :signed, signed_at = :now, signed_pdf_path = :signed_pdf_path, " +
					"retraction_deadline = :deadline, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(id) AND #status IN (:sent, :under_review, :amended)"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":signed":          &types.AttributeValueMemberS{Value: string(models.ContractSigned)},
					":sent":            &types.AttributeValueMemberS{Value: string(models.ContractSent)},
					":under_review":    &types.AttributeValueMemberS{Value: string(models.ContractUnderReview)},
					":amended":         &types.AttributeValueMemberS{Value: string(models.ContractAmended)},
					":signed_pdf_path": &types.AttributeValueMemberS{Value: signedPdfPath},
					// Stored fixed-width so RetractContract's string comparison
					// against the deadline is exact.
					":deadline": &types.AttributeValueMemberS{Value: orderedTime(deadline)},
					":now":             nowAV,
				},
			},
		},
	}

	// Operations 2..n: one pending commission transaction per party.
	for _, commission := range commissions {
		tx := models.Transaction{
			Id:         uuid.New().String(),
			ContractId: contract.Id,
			UserId:     commission.UserId,
			Type:       contract.Type,
			PartyType:  commission.PartyType,
			Amount:     commission.Amount,
			Status:     models.TransactionPending,
			DueDate:    now.Add(models.CommissionDueDelay),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		txAV, err := attributevalue.MarshalMap(tx)
		if err != nil {
			return fmt.Errorf("failed to marshal commission transaction: %w", err)
		}
		// due_date is the status index's range key; keep it fixed-width.
		txAV["due_date"] = &types.AttributeValueMemberS{Value: orderedTime(tx.DueDate)}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Transactions),
				Item:                txAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}

	if _, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if transactConditionFailed(err) {
			return fmt.Errorf("contract %s: %w", contract.Id, storage.ErrAlreadyFinalized)
		}
		return fmt.Errorf("failed to finalize contract: %w", err)
	}

	return nil
}
