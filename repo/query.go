package repo

import "fmt"

// Operator compares a document field against a bound value.
type Operator int

const (
	// OpEqual matches documents whose field equals the bound value. It is the
	// only operator derived method shapes produce today.
	OpEqual Operator = iota
)

// Connective joins the predicates of a descriptor. A descriptor carries
// exactly one connective; mixed AND/OR shapes are rejected.
type Connective int

const (
	And Connective = iota
	Or
)

// Direction orders a sorted result set.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Sort requests ordering of a result set by a declared schema field.
type Sort struct {
	Field     string
	Direction Direction
}

// Predicate is a single (field, operator, value) condition.
type Predicate struct {
	Field string
	Op    Operator
	Value any
}

// Descriptor is a fully derived query: validated predicates joined by one
// connective, plus an optional sort. Descriptors are built per invocation
// and discarded after execution.
type Descriptor struct {
	EntityType string
	Predicates []Predicate
	Connective Connective
	Sort       *Sort
}

// Intent is the declarative shape of a derived method: which fields it
// predicates on, how they combine, and how results are ordered. Intents are
// validated once, when the shape is defined, so invocation-time derivation
// only binds values.
type Intent struct {
	Fields     []string
	Connective Connective
	Sort       *Sort
}

// validateShape checks an intent against the entity schema. All shape errors
// surface before any store call is made.
func (in Intent) validateShape(def Definition) error {
	if len(in.Fields) == 0 {
		return fmt.Errorf("%w: %s: intent has no predicate fields", ErrIllegalQuery, def.EntityType)
	}
	if in.Connective != And && in.Connective != Or {
		return fmt.Errorf("%w: %s: unsupported query shape: connective %d", ErrIllegalQuery, def.EntityType, in.Connective)
	}
	for _, f := range in.Fields {
		if !def.HasField(f) {
			return fmt.Errorf("%w: %s: unknown property %q", ErrIllegalQuery, def.EntityType, f)
		}
	}
	if in.Sort != nil {
		if err := validateSort(def, *in.Sort); err != nil {
			return err
		}
	}
	return nil
}

// derive binds values to an intent, producing a descriptor. The intent is
// re-validated so ad hoc intents get the same schema checks as defined ones.
func derive(def Definition, in Intent, values ...any) (Descriptor, error) {
	if err := in.validateShape(def); err != nil {
		return Descriptor{}, err
	}
	if len(values) != len(in.Fields) {
		return Descriptor{}, fmt.Errorf("%w: %s: %d fields but %d values",
			ErrIllegalQuery, def.EntityType, len(in.Fields), len(values))
	}

	preds := make([]Predicate, len(in.Fields))
	for i, f := range in.Fields {
		preds[i] = Predicate{Field: f, Op: OpEqual, Value: values[i]}
	}

	return Descriptor{
		EntityType: def.EntityType,
		Predicates: preds,
		Connective: in.Connective,
		Sort:       in.Sort,
	}, nil
}

// validateSort rejects sort fields outside the declared schema. Validation is
// schema-wide: any declared property is sortable, not only the partition key.
func validateSort(def Definition, s Sort) error {
	if !def.HasField(s.Field) {
		return fmt.Errorf("%w: %s: sort field %q not in schema", ErrIllegalQuery, def.EntityType, s.Field)
	}
	if s.Direction != Ascending && s.Direction != Descending {
		return fmt.Errorf("%w: %s: invalid sort direction %d", ErrIllegalQuery, def.EntityType, s.Direction)
	}
	return nil
}
