package repo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Document is a raw wire document: attribute name to attribute value.
type Document map[string]types.AttributeValue

// Scope addresses a statement to a single partition or fans it out across
// all of them.
type Scope struct {
	// Pinned is true when the statement is restricted to one partition.
	Pinned bool

	// PartitionValue is the pinned partition key value. Nil unless Pinned.
	PartitionValue types.AttributeValue
}

// CrossPartition returns the fan-out scope.
func CrossPartition() Scope {
	return Scope{}
}

// SinglePartition returns a scope pinned to one partition key value.
func SinglePartition(v types.AttributeValue) Scope {
	return Scope{Pinned: true, PartitionValue: v}
}

// Condition is a marshaled equality predicate, ready for the wire.
type Condition struct {
	Field string
	Value types.AttributeValue
}

// Statement is an executable query. Text is the rendered SQL form with ?
// placeholders bound by Params, for clients that speak a query language.
// Where and Connective carry the same predicates structurally so that
// clients with native filter APIs (and test fakes) can push down without
// parsing the text.
type Statement struct {
	Container  string
	Text       string
	Params     []types.AttributeValue
	Partition  Scope
	Where      []Condition
	Connective Connective
}

// Client is the store collaborator. Implementations own transport, paging,
// and retry of transient faults; the engine never retries. Errors returned
// by a Client should wrap the package taxonomy where classifiable; anything
// else is folded into ErrDocumentAccess by the engine.
type Client interface {
	// Execute runs a query and returns all matching raw documents. Result
	// order is store-defined and not guaranteed stable across calls.
	Execute(ctx context.Context, stmt Statement) ([]Document, error)

	// Upsert writes a document, replacing any existing document with the
	// same primary key (partition value + id).
	Upsert(ctx context.Context, container string, doc Document) error

	// Delete removes the document addressed by key. Key carries the
	// partition key attribute and the id attribute.
	Delete(ctx context.Context, container string, key Document) error

	// Count returns the number of documents matching a statement.
	Count(ctx context.Context, stmt Statement) (int64, error)
}

// CountResult is the single emission of an asynchronous count: exactly one
// value or one error, never both.
type CountResult struct {
	Value int64
	Err   error
}
