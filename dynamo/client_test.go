package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/jacentio/lattice/repo"
)

// fakeAPI implements API with pluggable behavior per call.
type fakeAPI struct {
	executeFn func(*dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error)
	putFn     func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	deleteFn  func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
}

func (f *fakeAPI) ExecuteStatement(_ context.Context, in *dynamodb.ExecuteStatementInput, _ ...func(*dynamodb.Options)) (*dynamodb.ExecuteStatementOutput, error) {
	return f.executeFn(in)
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return f.putFn(in)
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return f.deleteFn(in)
}

func item(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func TestExecute_DrainsAllPages(t *testing.T) {
	var tokens []*string
	api := &fakeAPI{
		executeFn: func(in *dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error) {
			tokens = append(tokens, in.NextToken)
			if in.NextToken == nil {
				return &dynamodb.ExecuteStatementOutput{
					Items:     []map[string]types.AttributeValue{item("a"), item("b")},
					NextToken: aws.String("page-2"),
				}, nil
			}
			return &dynamodb.ExecuteStatementOutput{
				Items: []map[string]types.AttributeValue{item("c")},
			}, nil
		},
	}

	docs, err := New(api).Execute(context.Background(), repo.Statement{Text: `SELECT * FROM "t"`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected 3 documents across pages, got %d", len(docs))
	}
	if len(tokens) != 2 || tokens[1] == nil || *tokens[1] != "page-2" {
		t.Errorf("expected second call with token 'page-2', got %v", tokens)
	}
}

func TestExecute_ValidationFault(t *testing.T) {
	api := &fakeAPI{
		executeFn: func(*dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "bad statement"}
		},
	}

	_, err := New(api).Execute(context.Background(), repo.Statement{Text: "garbage"})
	if !errors.Is(err, repo.ErrIllegalQuery) {
		t.Errorf("expected ErrIllegalQuery, got %v", err)
	}
}

func TestCount_SumsPages(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		executeFn: func(in *dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error) {
			calls++
			if calls == 1 {
				return &dynamodb.ExecuteStatementOutput{
					Items:     []map[string]types.AttributeValue{item("a"), item("b")},
					NextToken: aws.String("next"),
				}, nil
			}
			return &dynamodb.ExecuteStatementOutput{
				Items: []map[string]types.AttributeValue{item("c"), item("d")},
			}, nil
		},
	}

	n, err := New(api).Count(context.Background(), repo.Statement{Text: `SELECT "id" FROM "t"`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected count 4, got %d", n)
	}
}

func TestUpsert_PassesDocumentThrough(t *testing.T) {
	var captured *dynamodb.PutItemInput
	api := &fakeAPI{
		putFn: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			captured = in
			return &dynamodb.PutItemOutput{}, nil
		},
	}

	doc := repo.Document{
		"id":         &types.AttributeValueMemberS{Value: "addr-1"},
		"postalCode": &types.AttributeValueMemberS{Value: "201107"},
	}
	if err := New(api).Upsert(context.Background(), "addresses", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil || *captured.TableName != "addresses" {
		t.Fatal("expected PutItem against 'addresses'")
	}
	if len(captured.Item) != 2 {
		t.Errorf("expected the full document, got %d attributes", len(captured.Item))
	}
}

func TestDelete_ConditionsOnExistence(t *testing.T) {
	var captured *dynamodb.DeleteItemInput
	api := &fakeAPI{
		deleteFn: func(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			captured = in
			return &dynamodb.DeleteItemOutput{}, nil
		},
	}

	key := repo.Document{
		"postalCode": &types.AttributeValueMemberS{Value: "201107"},
		"id":         &types.AttributeValueMemberS{Value: "addr-1"},
	}
	if err := New(api).Delete(context.Background(), "addresses", key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.ConditionExpression == nil || *captured.ConditionExpression != "attribute_exists(#k)" {
		t.Errorf("expected existence condition, got %v", captured.ConditionExpression)
	}
	if captured.ExpressionAttributeNames["#k"] != "id" {
		t.Errorf("expected deterministic key attribute 'id', got %q", captured.ExpressionAttributeNames["#k"])
	}
}

func TestDelete_MissingDocument(t *testing.T) {
	api := &fakeAPI{
		deleteFn: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{}
		},
	}

	key := repo.Document{"id": &types.AttributeValueMemberS{Value: "addr-1"}}
	err := New(api).Delete(context.Background(), "addresses", key)
	if !errors.Is(err, repo.ErrDocumentAccess) {
		t.Errorf("expected ErrDocumentAccess, got %v", err)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"conditional check", &types.ConditionalCheckFailedException{}, repo.ErrDocumentAccess},
		{"resource not found", &types.ResourceNotFoundException{}, repo.ErrDocumentAccess},
		{"validation", &smithy.GenericAPIError{Code: "ValidationException"}, repo.ErrIllegalQuery},
		{"other api error", &smithy.GenericAPIError{Code: "ThrottlingException"}, repo.ErrDocumentAccess},
		{"plain error", errors.New("conn reset"), repo.ErrDocumentAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("translate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnyKeyAttr_Deterministic(t *testing.T) {
	key := repo.Document{
		"postalCode": &types.AttributeValueMemberS{Value: "201107"},
		"id":         &types.AttributeValueMemberS{Value: "addr-1"},
	}

	for i := 0; i < 10; i++ {
		if got := anyKeyAttr(key); got != "id" {
			t.Fatalf("expected 'id' every time, got %q", got)
		}
	}
}
