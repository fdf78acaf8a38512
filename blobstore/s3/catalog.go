package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/navigo/blobstore"
)

// ErrConcurrentModification is returned when another publisher already
// claimed the version being published.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// DDBClient is the subset of the DynamoDB API used by Catalog.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// CatalogEntry describes one published graph version.
type CatalogEntry struct {
	Graph       string
	Version     uint64
	Key         string
	PublishedAt time.Time
}

// Catalog maps graph names to the blob holding their newest version.
//
// Table schema:
//   - Partition key: graph (string)
//   - Sort key: version (number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name navigo-graphs \
//	  --attribute-definitions AttributeName=graph,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=graph,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client DDBClient
	table  string
	now    func() time.Time
}

// NewCatalog creates a catalog backed by the given table.
func NewCatalog(client DDBClient, table string) *Catalog {
	return &Catalog{client: client, table: table, now: time.Now}
}

// Current returns the newest version of graph.
// Returns blobstore.ErrNotFound if the graph was never published.
func (c *Catalog) Current(ctx context.Context, graph string) (CatalogEntry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("graph = :g"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":g": &types.AttributeValueMemberS{Value: graph},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("query catalog: %w", err)
	}
	if len(resp.Items) == 0 {
		return CatalogEntry{}, fmt.Errorf("graph %q: %w", graph, blobstore.ErrNotFound)
	}
	return decodeEntry(graph, resp.Items[0])
}

// Publish records key as the next version of graph and returns the new entry.
// Returns ErrConcurrentModification if another publisher won the race.
func (c *Catalog) Publish(ctx context.Context, graph, key string) (CatalogEntry, error) {
	var next uint64 = 1
	cur, err := c.Current(ctx, graph)
	switch {
	case err == nil:
		next = cur.Version + 1
	case !errors.Is(err, blobstore.ErrNotFound):
		return CatalogEntry{}, err
	}

	entry := CatalogEntry{Graph: graph, Version: next, Key: key, PublishedAt: c.now().UTC()}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]types.AttributeValue{
			"graph":        &types.AttributeValueMemberS{Value: graph},
			"version":      &types.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"key":          &types.AttributeValueMemberS{Value: key},
			"published_at": &types.AttributeValueMemberS{Value: entry.PublishedAt.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return CatalogEntry{}, ErrConcurrentModification
		}
		return CatalogEntry{}, fmt.Errorf("publish %q v%d: %w", graph, next, err)
	}

	return entry, nil
}

func decodeEntry(graph string, item map[string]types.AttributeValue) (CatalogEntry, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return CatalogEntry{}, errors.New("catalog: invalid version attribute")
	}
	keyAttr, ok := item["key"].(*types.AttributeValueMemberS)
	if !ok {
		return CatalogEntry{}, errors.New("catalog: invalid key attribute")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("catalog: parse version: %w", err)
	}

	entry := CatalogEntry{Graph: graph, Version: version, Key: keyAttr.Value}
	if ts, ok := item["published_at"].(*types.AttributeValueMemberS); ok {
		entry.PublishedAt, _ = time.Parse(time.RFC3339Nano, ts.Value)
	}
	return entry, nil
}
