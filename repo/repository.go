package repo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// Repository is the typed facade over one registered entity type. It
// composes the schema registry, query derivation, and the executor behind a
// CRUD + derived-query surface. Construct one per entity type with New.
type Repository[T any] struct {
	def     Definition
	exec    executor
	queries map[string]Intent
}

// New builds a repository for a registered entity type. The entity type must
// be registered before construction; both the client and the registration
// are injected explicitly.
func New[T any](client Client, registry *Registry, entityType string) (*Repository[T], error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil client", ErrConfiguration)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrConfiguration)
	}
	def, err := registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	return &Repository[T]{
		def:     def,
		exec:    executor{client: client},
		queries: make(map[string]Intent),
	}, nil
}

// Define registers a named derived-query shape. The shape is validated
// against the entity schema here, at definition time, so Find and DeleteBy
// only bind values.
func (r *Repository[T]) Define(name string, in Intent) error {
	if name == "" {
		return fmt.Errorf("%w: %s: empty derived query name", ErrConfiguration, r.def.EntityType)
	}
	if _, exists := r.queries[name]; exists {
		return fmt.Errorf("%w: %s: derived query %q already defined", ErrConfiguration, r.def.EntityType, name)
	}
	if err := in.validateShape(r.def); err != nil {
		return err
	}
	r.queries[name] = in
	return nil
}

// intent resolves a defined derived-query name.
func (r *Repository[T]) intent(name string) (Intent, error) {
	in, ok := r.queries[name]
	if !ok {
		return Intent{}, fmt.Errorf("%w: %s: derived query %q not defined", ErrConfiguration, r.def.EntityType, name)
	}
	return in, nil
}

// Save upserts an entity. A missing id is assigned a generated one; the
// assigned or existing id is returned. A document without a partition key
// value cannot be addressed to a partition and fails with ErrDocumentAccess.
func (r *Repository[T]) Save(ctx context.Context, entity T) (string, error) {
	doc, err := encode(entity)
	if err != nil {
		return "", err
	}
	if !hasValue(doc[r.def.PartitionKey]) {
		return "", fmt.Errorf("%w: %s: document missing partition key value for %q",
			ErrDocumentAccess, r.def.EntityType, r.def.PartitionKey)
	}

	id := attrString(doc[r.def.ID])
	if id == "" {
		id = uuid.NewString()
		doc[r.def.ID] = &types.AttributeValueMemberS{Value: id}
	}

	if err := r.exec.client.Upsert(ctx, r.def.Container, doc); err != nil {
		return "", classify(err)
	}
	return id, nil
}

// FindAll returns every entity of this type, cross-partition. At most one
// sort may be given; its field is validated against the schema before any
// store call.
func (r *Repository[T]) FindAll(ctx context.Context, sorts ...Sort) ([]T, error) {
	d := Descriptor{EntityType: r.def.EntityType, Connective: And}
	if len(sorts) > 1 {
		return nil, fmt.Errorf("%w: %s: multiple sort clauses", ErrIllegalQuery, r.def.EntityType)
	}
	if len(sorts) == 1 {
		if err := validateSort(r.def, sorts[0]); err != nil {
			return nil, err
		}
		d.Sort = &sorts[0]
	}

	docs, err := r.exec.find(ctx, r.def, d)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

// Find executes a defined derived query with the given values.
func (r *Repository[T]) Find(ctx context.Context, name string, values ...any) ([]T, error) {
	in, err := r.intent(name)
	if err != nil {
		return nil, err
	}
	d, err := derive(r.def, in, values...)
	if err != nil {
		return nil, err
	}
	docs, err := r.exec.find(ctx, r.def, d)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

// DeleteBy executes a defined derived delete and returns the number of
// documents removed. Deleting by a non-partition-key field fans out: the
// matches are read cross-partition, then each is deleted by its own key.
func (r *Repository[T]) DeleteBy(ctx context.Context, name string, values ...any) (int64, error) {
	in, err := r.intent(name)
	if err != nil {
		return 0, err
	}
	d, err := derive(r.def, in, values...)
	if err != nil {
		return 0, err
	}
	return r.exec.deleteMatching(ctx, r.def, d)
}

// DeleteWhere removes every document whose field equals value. This is the
// programmatic single-predicate form of DeleteBy.
func (r *Repository[T]) DeleteWhere(ctx context.Context, field string, value any) (int64, error) {
	d, err := derive(r.def, Intent{Fields: []string{field}, Connective: And}, value)
	if err != nil {
		return 0, err
	}
	return r.exec.deleteMatching(ctx, r.def, d)
}

// DeleteByID removes one document by id. The partition key value is
// mandatory for partitioned types: without it the store cannot locate the
// partition holding the document, so a nil partitionValue fails with
// ErrDocumentAccess before any store call. This is expected behavior, not
// a transient fault.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string, partitionValue any) error {
	if partitionValue == nil {
		return fmt.Errorf("%w: %s: delete by id %q without partition key value",
			ErrDocumentAccess, r.def.EntityType, id)
	}
	pv, err := attributevalue.Marshal(partitionValue)
	if err != nil {
		return fmt.Errorf("%w: %s: marshal partition key value: %v", ErrDocumentAccess, r.def.EntityType, err)
	}
	key := Document{
		r.def.PartitionKey: pv,
		r.def.ID:           &types.AttributeValueMemberS{Value: id},
	}
	return classify(r.exec.client.Delete(ctx, r.def.Container, key))
}

// DeleteAll removes every document of this type and returns how many were
// deleted. Cross-partition: read then delete each by key.
func (r *Repository[T]) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec.deleteMatching(ctx, r.def, Descriptor{EntityType: r.def.EntityType, Connective: And})
}

// Count returns the number of documents of this type, blocking until the
// store round-trip completes.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.exec.count(ctx, r.def, Descriptor{EntityType: r.def.EntityType, Connective: And})
}

// CountAsync returns immediately with a single-shot producer for the count.
// The producer completes exactly once with a value or an error, on whatever
// goroutine services the store response. Cancelling ctx unsubscribes: the
// channel is closed without a value and nothing is delivered afterwards.
func (r *Repository[T]) CountAsync(ctx context.Context) <-chan CountResult {
	return r.exec.countAsync(ctx, r.def, Descriptor{EntityType: r.def.EntityType, Connective: And})
}

// Definition returns the entity definition this repository serves.
func (r *Repository[T]) Definition() Definition {
	return r.def
}

// hasValue reports whether an attribute carries a usable value. Absent,
// NULL, and empty-string attributes do not address a partition.
func hasValue(av types.AttributeValue) bool {
	switch v := av.(type) {
	case nil:
		return false
	case *types.AttributeValueMemberNULL:
		return false
	case *types.AttributeValueMemberS:
		return v.Value != ""
	default:
		return true
	}
}

// attrString extracts a string form of an id attribute, or "" when absent.
func attrString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return ""
	}
}
