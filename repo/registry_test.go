package repo_test

import (
	"errors"
	"testing"

	"github.com/jacentio/lattice/repo"
)

func addressDefinition() repo.Definition {
	return repo.Definition{
		EntityType:   "address",
		Container:    "addresses",
		PartitionKey: "postalCode",
		Fields:       []string{"postalCode", "street", "city"},
	}
}

func TestNewRegistry(t *testing.T) {
	r := repo.NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil Registry")
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := repo.NewRegistry()
	if err := r.Register(addressDefinition()); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	def, err := r.Lookup("address")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if def.Container != "addresses" {
		t.Errorf("expected container 'addresses', got %q", def.Container)
	}
	if def.ID != "id" {
		t.Errorf("expected default id field 'id', got %q", def.ID)
	}
	if !def.HasField("id") {
		t.Error("expected id field appended to declared fields")
	}
}

func TestRegistry_PartitionKey(t *testing.T) {
	r := repo.NewRegistry()
	if err := r.Register(addressDefinition()); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	pk, err := r.PartitionKey("address")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pk != "postalCode" {
		t.Errorf("expected partition key 'postalCode', got %q", pk)
	}
}

func TestRegistry_UnregisteredType(t *testing.T) {
	r := repo.NewRegistry()

	if _, err := r.Lookup("ghost"); !errors.Is(err, repo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if _, err := r.PartitionKey("ghost"); !errors.Is(err, repo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := repo.NewRegistry()
	if err := r.Register(addressDefinition()); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	err := r.Register(addressDefinition())
	if !errors.Is(err, repo.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for duplicate registration, got %v", err)
	}
}

func TestRegistry_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  repo.Definition
	}{
		{
			name: "missing entity type",
			def: repo.Definition{
				Container:    "addresses",
				PartitionKey: "postalCode",
				Fields:       []string{"postalCode"},
			},
		},
		{
			name: "missing container",
			def: repo.Definition{
				EntityType:   "address",
				PartitionKey: "postalCode",
				Fields:       []string{"postalCode"},
			},
		},
		{
			name: "missing partition key",
			def: repo.Definition{
				EntityType: "address",
				Container:  "addresses",
				Fields:     []string{"postalCode"},
			},
		},
		{
			name: "partition key not declared",
			def: repo.Definition{
				EntityType:   "address",
				Container:    "addresses",
				PartitionKey: "postalCode",
				Fields:       []string{"street", "city"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := repo.NewRegistry()
			if err := r.Register(tt.def); !errors.Is(err, repo.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestDefinition_HasFieldCaseSensitive(t *testing.T) {
	def := addressDefinition()

	if !def.HasField("postalCode") {
		t.Error("expected 'postalCode' to be a declared field")
	}
	if def.HasField("PostalCode") {
		t.Error("field matching must be case-sensitive")
	}
	if def.HasField("country") {
		t.Error("expected 'country' to be undeclared")
	}
}
