package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/scrapmap/scrapmap/pkg/store/travelstore"
)

type mockDynamo struct {
	PutItemFunc    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItemFunc func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	QueryFunc      func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return m.PutItemFunc(ctx, params, optFns...)
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return m.DeleteItemFunc(ctx, params, optFns...)
}

func (m *mockDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return m.QueryFunc(ctx, params, optFns...)
}

func stringAttr(t *testing.T, item map[string]types.AttributeValue, name string) string {
	t.Helper()
	attr, ok := item[name].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %s is not a string", name)
	return attr.Value
}

func TestPutDestinationKeysRecordBySortKey(t *testing.T) {
	var put *dynamodb.PutItemInput
	mock := &mockDynamo{}
	mock.PutItemFunc = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
		put = params
		return &dynamodb.PutItemOutput{}, nil
	}
	store := &DynamoTravelStore{tableName: "scrapmap", dynamoDbClient: mock}

	err := store.PutDestination(context.Background(), "alice", travelstore.Destination{
		PlaceID:     "ChIJd_Y0eVIvkIAR",
		Name:        "San Francisco",
		Country:     "United States",
		CountryCode: "US",
		Latitude:    37.7749,
		Longitude:   -122.4194,
	})
	require.NoError(t, err)
	require.Equal(t, "scrapmap", aws.ToString(put.TableName))
	require.Equal(t, "alice", stringAttr(t, put.Item, travelstore.AttrUser))
	require.Equal(t, "DESTINATION#ChIJd_Y0eVIvkIAR", stringAttr(t, put.Item, travelstore.AttrSortKey))

	entity, ok := put.Item[travelstore.AttrEntity].(*types.AttributeValueMemberM)
	require.True(t, ok)
	require.Equal(t, "San Francisco", stringAttr(t, entity.Value, "name"))
	require.Equal(t, "US", stringAttr(t, entity.Value, "country_code"))
}

func TestPutPlaceKeysRecordBySortKey(t *testing.T) {
	var put *dynamodb.PutItemInput
	mock := &mockDynamo{}
	mock.PutItemFunc = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
		put = params
		return &dynamodb.PutItemOutput{}, nil
	}
	store := &DynamoTravelStore{tableName: "scrapmap", dynamoDbClient: mock}

	err := store.PutPlace(context.Background(), "alice", travelstore.Place{
		PlaceID:       "abc123",
		Name:          "Golden Gate Bridge",
		DestinationID: "ChIJd_Y0eVIvkIAR",
	})
	require.NoError(t, err)
	require.Equal(t, "PLACE#abc123", stringAttr(t, put.Item, travelstore.AttrSortKey))

	entity, ok := put.Item[travelstore.AttrEntity].(*types.AttributeValueMemberM)
	require.True(t, ok)
	require.Equal(t, "ChIJd_Y0eVIvkIAR", stringAttr(t, entity.Value, "destination_id"))
}

func TestDeletePlaceUsesCompositeKey(t *testing.T) {
	var deleted *dynamodb.DeleteItemInput
	mock := &mockDynamo{}
	mock.DeleteItemFunc = func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
		deleted = params
		return &dynamodb.DeleteItemOutput{}, nil
	}
	store := &DynamoTravelStore{tableName: "scrapmap", dynamoDbClient: mock}

	err := store.DeletePlace(context.Background(), "alice", "abc123")
	require.NoError(t, err)
	require.Equal(t, "scrapmap", aws.ToString(deleted.TableName))
	require.Equal(t, "alice", stringAttr(t, deleted.Key, travelstore.AttrUser))
	require.Equal(t, "PLACE#abc123", stringAttr(t, deleted.Key, travelstore.AttrSortKey))
}

func TestListQueriesByUserAndEntityPrefix(t *testing.T) {
	item, err := attributevalue.MarshalMap(destinationItem{
		User:    "alice",
		SortKey: "DESTINATION#ChIJd_Y0eVIvkIAR",
		Entity:  travelstore.Destination{PlaceID: "ChIJd_Y0eVIvkIAR", Name: "San Francisco"},
	})
	require.NoError(t, err)

	var query *dynamodb.QueryInput
	mock := &mockDynamo{}
	mock.QueryFunc = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		query = params
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil
	}
	store := &DynamoTravelStore{tableName: "scrapmap", dynamoDbClient: mock}

	records, err := store.List(context.Background(), "alice", travelstore.EntityDestination)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "alice", records[0].User)
	require.Equal(t, "DESTINATION#ChIJd_Y0eVIvkIAR", records[0].SortKey)
	require.Equal(t, "San Francisco", records[0].Entity["name"])

	require.Contains(t, aws.ToString(query.KeyConditionExpression), "begins_with")
	values := map[string]bool{}
	for _, v := range query.ExpressionAttributeValues {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			values[s.Value] = true
		}
	}
	require.True(t, values["alice"])
	require.True(t, values["DESTINATION#"])
}

func TestListEmptyTableReturnsEmptySlice(t *testing.T) {
	mock := &mockDynamo{}
	mock.QueryFunc = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		return &dynamodb.QueryOutput{}, nil
	}
	store := &DynamoTravelStore{tableName: "scrapmap", dynamoDbClient: mock}

	records, err := store.List(context.Background(), "alice", travelstore.EntityPlace)
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestListPropagatesQueryErrors(t *testing.T) {
	mock := &mockDynamo{}
	mock.QueryFunc = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		return nil, errors.New("ProvisionedThroughputExceededException")
	}
	store := &DynamoTravelStore{tableName: "scrapmap", dynamoDbClient: mock}

	_, err := store.List(context.Background(), "alice", travelstore.EntityDestination)
	require.ErrorContains(t, err, "querying records")
}
