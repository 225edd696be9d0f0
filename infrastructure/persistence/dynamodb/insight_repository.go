package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/domain/insights"
	pkgerrors "netgraph-backend/pkg/errors"
)

// DynamoDB caps one transaction at 100 items; a replace touching more
// cannot be done atomically on this layout.
const maxTransactItems = 100

type insightItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	insights.GeneratedInsight
}

// InsightRepository implements ports.InsightRepository on DynamoDB.
// Replacement is transactional: old and new set swap in one
// TransactWriteItems call.
type InsightRepository struct {
	client *awsdynamodb.Client
	table  TableConfig
	logger *zap.Logger
}

var _ ports.InsightRepository = (*InsightRepository)(nil)

// NewInsightRepository creates the repository.
func NewInsightRepository(client *awsdynamodb.Client, table TableConfig, logger *zap.Logger) *InsightRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightRepository{client: client, table: table, logger: logger}
}

func (r *InsightRepository) ReplaceForGraph(ctx context.Context, graphID valueobjects.GraphID, set []insights.GeneratedInsight) error {
	existing, err := r.FindByGraph(ctx, graphID)
	if err != nil {
		return err
	}

	writes := make([]types.TransactWriteItem, 0, len(existing)+len(set))
	newIDs := make(map[string]struct{}, len(set))
	for _, ins := range set {
		newIDs[ins.ID.String()] = struct{}{}
	}
	for _, old := range existing {
		if _, replaced := newIDs[old.ID.String()]; replaced {
			continue
		}
		writes = append(writes, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.table.TableName),
				Key: map[string]types.AttributeValue{
					"PK": stringAttr(buildGraphPK(graphID.String())),
					"SK": stringAttr(buildInsightSK(old.ID.String())),
				},
			},
		})
	}
	for _, ins := range set {
		av, err := attributevalue.MarshalMap(insightItem{
			PK:               buildGraphPK(graphID.String()),
			SK:               buildInsightSK(ins.ID.String()),
			GeneratedInsight: ins,
		})
		if err != nil {
			return pkgerrors.NewInternalError("failed to marshal insight item").WithCause(err)
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.table.TableName),
				Item:      av,
			},
		})
	}

	if len(writes) == 0 {
		return nil
	}
	if len(writes) > maxTransactItems {
		return pkgerrors.NewValidationError("insight set too large to replace atomically")
	}

	_, err = r.client.TransactWriteItems(ctx, &awsdynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		return pkgerrors.NewUnavailableError("DynamoDB TransactWriteItems failed").WithCause(err)
	}
	return nil
}

func (r *InsightRepository) FindByGraph(ctx context.Context, graphID valueobjects.GraphID) ([]insights.GeneratedInsight, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(buildGraphPK(graphID.String()))).
		And(expression.Key("SK").BeginsWith(skInsightPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build insight query").WithCause(err)
	}

	set := make([]insights.GeneratedInsight, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &awsdynamodb.QueryInput{
			TableName:                 aws.String(r.table.TableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewUnavailableError("DynamoDB Query failed").WithCause(err)
		}
		for _, item := range out.Items {
			var stored insightItem
			if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
				return nil, pkgerrors.NewDataIntegrityError("failed to unmarshal insight item").WithCause(err)
			}
			set = append(set, stored.GeneratedInsight)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return set, nil
}

func (r *InsightRepository) DeleteByGraph(ctx context.Context, graphID valueobjects.GraphID) error {
	existing, err := r.FindByGraph(ctx, graphID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	// BatchWriteItem caps at 25 requests per call.
	const batchSize = 25
	for start := 0; start < len(existing); start += batchSize {
		end := start + batchSize
		if end > len(existing) {
			end = len(existing)
		}
		requests := make([]types.WriteRequest, 0, end-start)
		for _, ins := range existing[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": stringAttr(buildGraphPK(graphID.String())),
						"SK": stringAttr(buildInsightSK(ins.ID.String())),
					},
				},
			})
		}
		_, err := r.client.BatchWriteItem(ctx, &awsdynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.table.TableName: requests,
			},
		})
		if err != nil {
			return pkgerrors.NewUnavailableError("DynamoDB BatchWriteItem failed").WithCause(err)
		}
	}
	return nil
}
