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

// GetSignature retrieves the signature slot for a signer key on a contract.
func (s *Store) GetSignature(ctx context.Context, contractID, signerKey string) (*models.Signature, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"contract_id": contractID,
		"signer_key":  signerKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signature key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Signatures),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signature from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("signature %s/%s: %w", contractID, signerKey, storage.ErrNotFound)
	}

	var sig models.Signature
	if err := attributevalue.UnmarshalMap(result.Item, &sig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signature: %w", err)
	}

	return &sig, nil
}

// PutSignature upserts a signature slot. OTP re-issuance overwrites the
// previous unverified code; a slot that has already signed must never be
// overwritten, hence the status guard.
func (s *Store) PutSignature(ctx context.Context, sig *models.Signature) error {
	item, err := attributevalue.MarshalMap(sig)
	if err != nil {
		return fmt.Errorf("failed to marshal signature: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Signatures),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(contract_id) OR #status IN (:pending, :otp_sent)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending":  &types.AttributeValueMemberS{Value: string(models.SignaturePending)},
			":otp_sent": &types.AttributeValueMemberS{Value: string(models.SignatureOtpSent)},
		},
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("signature %s/%s already signed: %w", sig.ContractId, sig.SignerKey, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to put signature: %w", err)
	}

	return nil
}

// MarkSigned records a successful OTP verification. The update is guarded on
// the slot still being in otp_sent with the same code that was verified, so a
// consumed OTP can never re-sign and two concurrent verifications collapse to
// one.
func (s *Store) MarkSigned(ctx context.Context, sig *models.Signature) error {
	signedAtAV, err := attributevalue.Marshal(sig.SignedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal signed_at: %w", err)
	}
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Signatures),
		Key: map[string]types.AttributeValue{
			"contract_id": &types.AttributeValueMemberS{Value: sig.ContractId},
			"signer_key":  &types.AttributeValueMemberS{Value: sig.SignerKey},
		},
		UpdateExpression: aws.String("SET #status = :signed, otp_verified = :true, signed_at = :signed_at, " +
			"ip_address = :ip, user_agent = :ua, #hash = :hash, updated_at = :now"),
		ConditionExpression: aws.String("#status = :otp_sent AND otp_code = :otp_code"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#hash":   "hash",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":signed":    &types.AttributeValueMemberS{Value: string(models.SignatureSigned)},
			":otp_sent":  &types.AttributeValueMemberS{Value: string(models.SignatureOtpSent)},
			":otp_code":  &types.AttributeValueMemberS{Value: sig.OtpCode},
			":true":      &types.AttributeValueMemberBOOL{Value: true},
			":signed_at": signedAtAV,
			":ip":        &types.AttributeValueMemberS{Value: sig.IpAddress},
			":ua":        &types.AttributeValueMemberS{Value: sig.UserAgent},
			":hash":      &types.AttributeValueMemberS{Value: sig.Hash},
			":now":       nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("signature %s/%s is not awaiting verification: %w", sig.ContractId, sig.SignerKey, storage.ErrInvalidState)
		}
		return fmt.Errorf("failed to mark signature signed: %w", err)
	}

	return nil
}

// ListSignatures retrieves all signature slots of a contract.
func (s *Store) ListSignatures(ctx context.Context, contractID string) ([]models.Signature, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Signatures),
		KeyConditionExpression: aws.String("contract_id = :contract_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":contract_id": &types.AttributeValueMemberS{Value: contractID},
		},
		// Strongly consistent read: the fully-signed check must see every
		// signature that has already committed.
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}

	var sigs []models.Signature
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &sigs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signatures: %w", err)
	}

	return sigs, nil
}
