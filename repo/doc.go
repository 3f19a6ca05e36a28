// Package repo implements a partition-aware document-repository query
// engine: declarative find/delete/count intents are derived into
// partition-scoped statements, executed against a document store, and mapped
// back to typed values.
//
// # Components
//
// A [Registry] holds one [Definition] per entity type, naming its container,
// partition key field, id field, and declared schema properties. The
// partition key is resolved from the registry; using an unregistered type is
// a configuration fault.
//
// Derived query shapes are declared as [Intent] values and registered on a
// [Repository] by name:
//
//	r, _ := repo.New[Address](client, registry, "address")
//	_ = r.Define("byCity", repo.Intent{Fields: []string{"city"}, Connective: repo.And})
//	addrs, err := r.Find(ctx, "byCity", "Shanghai")
//
// Shapes are validated against the schema when defined, so invalid fields,
// connectives, and sort clauses are rejected before any store call.
//
// # Partition scope
//
// A query whose ANDed predicates pin the partition key to a single literal
// runs against one partition. Everything else fans out cross-partition;
// cross-partition results are an unordered set unless a sort is requested,
// in which case the executor orders the merged set itself.
//
// # Errors
//
//   - [ErrConfiguration] - registration/setup faults, fatal, never retried
//   - [ErrIllegalQuery] - query shape rejected before any store call
//   - [ErrDocumentAccess] - store-side addressing failures; the canonical
//     case is deleting a partitioned document by id without its partition
//     key value
//
// No other store fault propagates untranslated, and the engine never retries.
package repo
