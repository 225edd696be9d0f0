// Package dynamodb provides the durable repository implementations on a
// single DynamoDB table. Items share one table and are addressed by
// composite keys:
//
//	graph meta:   PK=GRAPH#{graphID}  SK=META
//	insight:      PK=GRAPH#{graphID}  SK=INSIGHT#{insightID}
//	user key:     PK=USERKEY#{userID} SK=KEY
//
// Graph payloads are stored as an opaque binary snapshot so float scores
// round-trip exactly; DynamoDB's decimal numbers cannot represent every
// float64.
package dynamodb

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "netgraph-backend/pkg/errors"
)

// TableConfig names the table and its owner index.
type TableConfig struct {
	TableName string
	// OwnerIndexName is the GSI keyed by GSI1PK=OWNER#{ownerID}.
	OwnerIndexName string
}

// NewClient builds a DynamoDB client from the ambient AWS configuration.
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, pkgerrors.NewUnavailableError("failed to load AWS config").WithCause(err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func buildGraphPK(graphID string) string {
	return fmt.Sprintf("GRAPH#%s", graphID)
}

func buildOwnerPK(ownerID string) string {
	return fmt.Sprintf("OWNER#%s", ownerID)
}

func buildInsightSK(insightID string) string {
	return fmt.Sprintf("INSIGHT#%s", insightID)
}

func buildUserKeyPK(userID string) string {
	return fmt.Sprintf("USERKEY#%s", userID)
}

const (
	skMeta          = "META"
	skKey           = "KEY"
	skInsightPrefix = "INSIGHT#"
)

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}
