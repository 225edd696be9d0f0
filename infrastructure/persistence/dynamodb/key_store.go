package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"netgraph-backend/application/ports"
	pkgerrors "netgraph-backend/pkg/errors"
)

// KeyStore persists encrypted user keys as single binary items.
type KeyStore struct {
	client *awsdynamodb.Client
	table  TableConfig
}

var _ ports.KeyStore = (*KeyStore)(nil)

// NewKeyStore creates the store.
func NewKeyStore(client *awsdynamodb.Client, table TableConfig) *KeyStore {
	return &KeyStore{client: client, table: table}
}

func (s *KeyStore) Load(ctx context.Context, userID string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName:      aws.String(s.table.TableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"PK": stringAttr(buildUserKeyPK(userID)),
			"SK": stringAttr(skKey),
		},
	})
	if err != nil {
		return nil, pkgerrors.NewUnavailableError("DynamoDB GetItem failed").WithCause(err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("user key").WithCode("KEY_NOT_FOUND")
	}
	blob, ok := out.Item["encryptedKey"].(*types.AttributeValueMemberB)
	if !ok {
		return nil, pkgerrors.NewDataIntegrityError("user key item malformed")
	}
	return blob.Value, nil
}

func (s *KeyStore) Store(ctx context.Context, userID string, encryptedKey []byte) error {
	_, err := s.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(s.table.TableName),
		Item: map[string]types.AttributeValue{
			"PK":           stringAttr(buildUserKeyPK(userID)),
			"SK":           stringAttr(skKey),
			"encryptedKey": &types.AttributeValueMemberB{Value: encryptedKey},
		},
	})
	if err != nil {
		return pkgerrors.NewUnavailableError("DynamoDB PutItem failed").WithCause(err)
	}
	return nil
}
