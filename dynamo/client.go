// Package dynamo implements the engine's store client against DynamoDB,
// executing rendered statements through PartiQL.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/jacentio/lattice/repo"
)

// API is the subset of the DynamoDB client this package uses.
type API interface {
	ExecuteStatement(ctx context.Context, params *dynamodb.ExecuteStatementInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ExecuteStatementOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Client adapts DynamoDB to the engine's store-client contract. Partition
// scoping is carried by the statement itself: a WHERE clause equating the
// table's hash key runs as a single-partition query, anything else scans.
type Client struct {
	api API
}

// New creates a Client over a DynamoDB API.
func New(api API) *Client {
	return &Client{api: api}
}

// Execute runs a statement and drains all result pages.
func (c *Client) Execute(ctx context.Context, stmt repo.Statement) ([]repo.Document, error) {
	input := &dynamodb.ExecuteStatementInput{
		Statement:  aws.String(stmt.Text),
		Parameters: stmt.Params,
	}

	var docs []repo.Document
	for {
		out, err := c.api.ExecuteStatement(ctx, input)
		if err != nil {
			return nil, translate(err)
		}
		for _, item := range out.Items {
			docs = append(docs, repo.Document(item))
		}
		if out.NextToken == nil {
			return docs, nil
		}
		input.NextToken = out.NextToken
	}
}

// Upsert writes a document, replacing any existing one with the same key.
func (c *Client) Upsert(ctx context.Context, container string, doc repo.Document) error {
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(container),
		Item:      doc,
	})
	return translate(err)
}

// Delete removes the document addressed by key. The delete is conditioned on
// the document existing at that exact key, so an id paired with the wrong
// partition value fails instead of silently no-opping.
func (c *Client) Delete(ctx context.Context, container string, key repo.Document) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(container),
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#k": anyKeyAttr(key),
		},
	})
	return translate(err)
}

// Count runs a statement and counts the returned rows across all pages. The
// engine projects only the id field into counting statements, so pages stay
// small.
func (c *Client) Count(ctx context.Context, stmt repo.Statement) (int64, error) {
	input := &dynamodb.ExecuteStatementInput{
		Statement:  aws.String(stmt.Text),
		Parameters: stmt.Params,
	}

	var n int64
	for {
		out, err := c.api.ExecuteStatement(ctx, input)
		if err != nil {
			return 0, translate(err)
		}
		n += int64(len(out.Items))
		if out.NextToken == nil {
			return n, nil
		}
		input.NextToken = out.NextToken
	}
}

// anyKeyAttr picks a deterministic attribute name from a key map. If the
// document exists at the key, every key attribute exists on it.
func anyKeyAttr(key repo.Document) string {
	var name string
	for k := range key {
		if name == "" || k < name {
			name = k
		}
	}
	return name
}

// translate folds DynamoDB faults into the engine's taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("%w: no document at the addressed key", repo.ErrDocumentAccess)
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: container not found", repo.ErrDocumentAccess)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		return fmt.Errorf("%w: %s", repo.ErrIllegalQuery, apiErr.ErrorMessage())
	}

	return fmt.Errorf("%w: %v", repo.ErrDocumentAccess, err)
}
