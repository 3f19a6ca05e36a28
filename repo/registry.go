package repo

import "fmt"

// Definition describes a registered entity type: which container holds its
// documents, which field addresses the partition, and the declared schema.
type Definition struct {
	// EntityType is the type name used for registry lookups (e.g., "address").
	EntityType string

	// Container is the store container (table/collection) holding documents
	// of this type.
	Container string

	// PartitionKey is the field whose value places a document in a partition.
	// Every document of this type must carry a value for it.
	PartitionKey string

	// ID is the document identifier field. Default: "id".
	ID string

	// Fields are the declared schema properties. Predicate and sort fields
	// are matched against this list case-sensitively.
	Fields []string
}

// HasField reports whether name is a declared schema property.
func (d Definition) HasField(name string) bool {
	for _, f := range d.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// validate checks the definition and applies defaults.
func (d *Definition) validate() error {
	if d.EntityType == "" {
		return fmt.Errorf("%w: definition missing entity type", ErrConfiguration)
	}
	if d.Container == "" {
		return fmt.Errorf("%w: %s: definition missing container", ErrConfiguration, d.EntityType)
	}
	if d.PartitionKey == "" {
		return fmt.Errorf("%w: %s: definition missing partition key", ErrConfiguration, d.EntityType)
	}
	if d.ID == "" {
		d.ID = "id"
	}
	if !d.HasField(d.PartitionKey) {
		return fmt.Errorf("%w: %s: partition key %q not in declared fields", ErrConfiguration, d.EntityType, d.PartitionKey)
	}
	if !d.HasField(d.ID) {
		d.Fields = append(d.Fields, d.ID)
	}
	return nil
}

// Registry holds entity definitions registered at startup.
type Registry struct {
	byType map[string]Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Definition)}
}

// Register adds an entity definition. This should be called once per type
// during application setup, before any repository is constructed.
func (r *Registry) Register(def Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	if _, exists := r.byType[def.EntityType]; exists {
		return fmt.Errorf("%w: %s: already registered", ErrConfiguration, def.EntityType)
	}
	r.byType[def.EntityType] = def
	return nil
}

// Lookup returns the definition for an entity type.
func (r *Registry) Lookup(entityType string) (Definition, error) {
	def, ok := r.byType[entityType]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s: entity type not registered", ErrConfiguration, entityType)
	}
	return def, nil
}

// PartitionKey resolves the partition key field for an entity type.
func (r *Registry) PartitionKey(entityType string) (string, error) {
	def, err := r.Lookup(entityType)
	if err != nil {
		return "", err
	}
	return def.PartitionKey, nil
}
