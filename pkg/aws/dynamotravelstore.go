package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/scrapmap/scrapmap/pkg/store/travelstore"
)

type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoTravelStore implements the travelstore.Store interface on dynamodb
type DynamoTravelStore struct {
	tableName      string
	dynamoDbClient dynamoAPI
}

// NewDynamoTravelStore returns a travel Store connected to a AWS DynamoDB table
func NewDynamoTravelStore(cfg aws.Config, tableName string, opts ...func(*dynamodb.Options)) *DynamoTravelStore {
	return &DynamoTravelStore{
		tableName:      tableName,
		dynamoDbClient: dynamodb.NewFromConfig(cfg, opts...),
	}
}

type destinationItem struct {
	User    string                  `dynamodbav:"PK"`
	SortKey string                  `dynamodbav:"SK"`
	Entity  travelstore.Destination `dynamodbav:"Entity"`
}

type placeItem struct {
	User    string            `dynamodbav:"PK"`
	SortKey string            `dynamodbav:"SK"`
	Entity  travelstore.Place `dynamodbav:"Entity"`
}

// PutDestination implements travelstore.Store. Last write wins on sort key
// collision.
func (d *DynamoTravelStore) PutDestination(ctx context.Context, user string, destination travelstore.Destination) error {
	item, err := attributevalue.MarshalMap(destinationItem{
		User:    user,
		SortKey: travelstore.SortKey(travelstore.EntityDestination, destination.PlaceID),
		Entity:  destination,
	})
	if err != nil {
		return fmt.Errorf("serializing item: %w", err)
	}
	return d.put(ctx, item)
}

// PutPlace implements travelstore.Store.
func (d *DynamoTravelStore) PutPlace(ctx context.Context, user string, place travelstore.Place) error {
	item, err := attributevalue.MarshalMap(placeItem{
		User:    user,
		SortKey: travelstore.SortKey(travelstore.EntityPlace, place.PlaceID),
		Entity:  place,
	})
	if err != nil {
		return fmt.Errorf("serializing item: %w", err)
	}
	return d.put(ctx, item)
}

func (d *DynamoTravelStore) put(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := d.dynamoDbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName), Item: item,
	})
	if err != nil {
		return fmt.Errorf("storing item: %w", err)
	}
	return nil
}

// DeletePlace implements travelstore.Store. Deleting an absent key succeeds.
func (d *DynamoTravelStore) DeletePlace(ctx context.Context, user string, placeID string) error {
	_, err := d.dynamoDbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			travelstore.AttrUser:    &types.AttributeValueMemberS{Value: user},
			travelstore.AttrSortKey: &types.AttributeValueMemberS{Value: travelstore.SortKey(travelstore.EntityPlace, placeID)},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// List implements travelstore.Store: all records of one entity type for a
// user, via a begins_with query on the sort key prefix.
func (d *DynamoTravelStore) List(ctx context.Context, user string, entity travelstore.Entity) ([]travelstore.Record, error) {
	keyEx := expression.Key(travelstore.AttrUser).Equal(expression.Value(user)).
		And(expression.Key(travelstore.AttrSortKey).BeginsWith(entity.SortKeyPrefix()))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	records := []travelstore.Record{}
	queryPaginator := dynamodb.NewQueryPaginator(d.dynamoDbClient, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		KeyConditionExpression:    expr.KeyCondition(),
	})
	for queryPaginator.HasMorePages() {
		response, err := queryPaginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying records: %w", err)
		}
		var page []travelstore.Record
		err = attributevalue.UnmarshalListOfMaps(response.Items, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing query responses: %w", err)
		}
		records = append(records, page...)
	}
	return records, nil
}

var _ travelstore.Store = (*DynamoTravelStore)(nil)
