package repo

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/internal/partiql"
)

// executor turns descriptors into store statements, executes them, and owns
// the merged result set. It holds no state between calls; each invocation
// carries its own descriptor and results.
type executor struct {
	client Client
}

// connectiveText maps a connective to its statement keyword.
func connectiveText(c Connective) string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// statement renders a descriptor into an executable statement. Predicate
// values are marshaled here, so value marshaling faults surface before the
// store is touched.
func (e *executor) statement(def Definition, d Descriptor, projection []string) (Statement, error) {
	conds := make([]Condition, len(d.Predicates))
	fields := make([]string, len(d.Predicates))
	params := make([]types.AttributeValue, len(d.Predicates))
	for i, p := range d.Predicates {
		av, err := attributevalue.Marshal(p.Value)
		if err != nil {
			return Statement{}, fmt.Errorf("%w: %s: marshal value for %q: %v",
				ErrIllegalQuery, def.EntityType, p.Field, err)
		}
		conds[i] = Condition{Field: p.Field, Value: av}
		fields[i] = p.Field
		params[i] = av
	}

	return Statement{
		Container:  def.Container,
		Text:       partiql.Select(def.Container, projection, fields, connectiveText(d.Connective)),
		Params:     params,
		Partition:  resolveScope(def, d, conds),
		Where:      conds,
		Connective: d.Connective,
	}, nil
}

// resolveScope pins the statement to a single partition when the predicates,
// taken together, fix the partition key to one literal: every predicate is
// ANDed (or there is only one) and one of them equates the partition key.
// Anything else fans out across all partitions.
func resolveScope(def Definition, d Descriptor, conds []Condition) Scope {
	if len(d.Predicates) > 1 && d.Connective != And {
		return CrossPartition()
	}
	for i, p := range d.Predicates {
		if p.Field == def.PartitionKey && p.Op == OpEqual {
			return SinglePartition(conds[i].Value)
		}
	}
	return CrossPartition()
}

// find executes a descriptor and returns the merged raw result set, sorted
// in-core when the descriptor asks for ordering. Store order is not stable
// across calls, so unsorted results are an unordered set.
func (e *executor) find(ctx context.Context, def Definition, d Descriptor) ([]Document, error) {
	stmt, err := e.statement(def, d, nil)
	if err != nil {
		return nil, err
	}
	docs, err := e.client.Execute(ctx, stmt)
	if err != nil {
		return nil, classify(err)
	}
	if d.Sort != nil {
		sortDocuments(docs, *d.Sort)
	}
	return docs, nil
}

// deleteMatching removes every document matching a descriptor: read the
// matches, then delete each by primary key with its own partition value.
// Returns the number of documents deleted.
func (e *executor) deleteMatching(ctx context.Context, def Definition, d Descriptor) (int64, error) {
	d.Sort = nil
	docs, err := e.find(ctx, def, d)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, doc := range docs {
		key, err := primaryKey(def, doc)
		if err != nil {
			return deleted, err
		}
		if err := e.client.Delete(ctx, def.Container, key); err != nil {
			return deleted, classify(err)
		}
		deleted++
	}
	return deleted, nil
}

// count executes a counting statement, projecting only the id field.
func (e *executor) count(ctx context.Context, def Definition, d Descriptor) (int64, error) {
	stmt, err := e.statement(def, d, []string{def.ID})
	if err != nil {
		return 0, err
	}
	n, err := e.client.Count(ctx, stmt)
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// countAsync starts a count and returns a single-shot producer: exactly one
// CountResult, or nothing at all if ctx is cancelled before the store
// responds. The channel is always closed after at most one emission.
func (e *executor) countAsync(ctx context.Context, def Definition, d Descriptor) <-chan CountResult {
	ch := make(chan CountResult, 1)
	go func() {
		defer close(ch)
		n, err := e.count(ctx, def, d)
		select {
		case <-ctx.Done():
			// Unsubscribed; deliver nothing.
		default:
			ch <- CountResult{Value: n, Err: err}
		}
	}()
	return ch
}

// primaryKey extracts the (partition value, id) key pair from a document.
func primaryKey(def Definition, doc Document) (Document, error) {
	pv, ok := doc[def.PartitionKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s: document missing partition key %q",
			ErrDocumentAccess, def.EntityType, def.PartitionKey)
	}
	id, ok := doc[def.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s: document missing id field %q",
			ErrDocumentAccess, def.EntityType, def.ID)
	}
	return Document{def.PartitionKey: pv, def.ID: id}, nil
}

// sortDocuments orders a merged result set by a schema field. Documents
// missing the field sort first in ascending order.
func sortDocuments(docs []Document, s Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		if s.Direction == Descending {
			return attrLess(docs[j][s.Field], docs[i][s.Field])
		}
		return attrLess(docs[i][s.Field], docs[j][s.Field])
	})
}

// attrLess compares two attribute values of the same field. Strings compare
// lexically, numbers numerically, booleans false-before-true; a missing
// attribute compares less than any present one.
func attrLess(a, b types.AttributeValue) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		if bv, ok := b.(*types.AttributeValueMemberS); ok {
			return av.Value < bv.Value
		}
	case *types.AttributeValueMemberN:
		if bv, ok := b.(*types.AttributeValueMemberN); ok {
			af, aerr := strconv.ParseFloat(av.Value, 64)
			bf, berr := strconv.ParseFloat(bv.Value, 64)
			if aerr == nil && berr == nil {
				return af < bf
			}
			return av.Value < bv.Value
		}
	case *types.AttributeValueMemberBOOL:
		if bv, ok := b.(*types.AttributeValueMemberBOOL); ok {
			return !av.Value && bv.Value
		}
	}
	return false
}
