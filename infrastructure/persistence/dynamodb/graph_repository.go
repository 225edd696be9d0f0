package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/infrastructure/cache"
	pkgerrors "netgraph-backend/pkg/errors"
)

// graphItem is the stored form of a graph. Query attributes are
// denormalized; the full snapshot travels as an opaque msgpack payload.
type graphItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	GSI1PK    string `dynamodbav:"GSI1PK"`
	GSI1SK    string `dynamodbav:"GSI1SK"`
	OwnerID   string `dynamodbav:"ownerId"`
	Status    string `dynamodbav:"status"`
	Version   int    `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"createdAt"`
	Payload   []byte `dynamodbav:"payload"`
}

// GraphRepository implements ports.GraphRepository on DynamoDB.
type GraphRepository struct {
	client *awsdynamodb.Client
	table  TableConfig
	codec  cache.SnapshotCodec
	logger *zap.Logger
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates the repository.
func NewGraphRepository(client *awsdynamodb.Client, table TableConfig, logger *zap.Logger) *GraphRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphRepository{client: client, table: table, logger: logger}
}

func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	if graph == nil {
		return pkgerrors.NewValidationError("graph cannot be nil")
	}
	snapshot := graph.Snapshot()
	payload, err := r.codec.Encode(snapshot)
	if err != nil {
		return err
	}

	item := graphItem{
		PK:        buildGraphPK(snapshot.ID),
		SK:        skMeta,
		GSI1PK:    buildOwnerPK(snapshot.OwnerID),
		GSI1SK:    snapshot.CreatedAt.UTC().Format(time.RFC3339Nano) + "#" + snapshot.ID,
		OwnerID:   snapshot.OwnerID,
		Status:    snapshot.Status,
		Version:   snapshot.Version,
		CreatedAt: snapshot.CreatedAt.UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal graph item").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(r.table.TableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewUnavailableError("DynamoDB PutItem failed").WithCause(err)
	}
	return nil
}

func (r *GraphRepository) FindByID(ctx context.Context, id valueobjects.GraphID) (*aggregates.Graph, error) {
	result, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.table.TableName),
		Key: map[string]types.AttributeValue{
			"PK": stringAttr(buildGraphPK(id.String())),
			"SK": stringAttr(skMeta),
		},
	})
	if err != nil {
		return nil, pkgerrors.NewUnavailableError("DynamoDB GetItem failed").WithCause(err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("graph").WithCode("GRAPH_NOT_FOUND")
	}
	return r.restoreItem(result.Item)
}

func (r *GraphRepository) FindByOwner(ctx context.Context, ownerID string) ([]*aggregates.Graph, error) {
	keyEx := expression.Key("GSI1PK").Equal(expression.Value(buildOwnerPK(ownerID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build owner query").WithCause(err)
	}

	graphs := make([]*aggregates.Graph, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &awsdynamodb.QueryInput{
			TableName:                 aws.String(r.table.TableName),
			IndexName:                 aws.String(r.table.OwnerIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewUnavailableError("DynamoDB Query failed").WithCause(err)
		}
		for _, item := range out.Items {
			graph, err := r.restoreItem(item)
			if err != nil {
				return nil, err
			}
			graphs = append(graphs, graph)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	return graphs, nil
}

func (r *GraphRepository) Delete(ctx context.Context, id valueobjects.GraphID) error {
	out, err := r.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName: aws.String(r.table.TableName),
		Key: map[string]types.AttributeValue{
			"PK": stringAttr(buildGraphPK(id.String())),
			"SK": stringAttr(skMeta),
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return pkgerrors.NewUnavailableError("DynamoDB DeleteItem failed").WithCause(err)
	}
	if out.Attributes == nil {
		return pkgerrors.NewNotFoundError("graph").WithCode("GRAPH_NOT_FOUND")
	}
	return nil
}

func (r *GraphRepository) restoreItem(item map[string]types.AttributeValue) (*aggregates.Graph, error) {
	var stored graphItem
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("failed to unmarshal graph item").WithCause(err)
	}
	snapshot, err := r.codec.Decode(stored.Payload)
	if err != nil {
		return nil, err
	}
	return aggregates.RestoreGraph(snapshot)
}
