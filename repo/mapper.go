package repo

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// encode marshals an entity into a wire document.
func encode[T any](entity T) (Document, error) {
	doc, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal entity: %v", ErrDocumentAccess, err)
	}
	return doc, nil
}

// decode unmarshals a raw document into the registered type. Unknown
// document fields are ignored; fields absent from the document are left at
// their zero values.
func decode[T any](doc Document) (T, error) {
	var out T
	if err := attributevalue.UnmarshalMap(doc, &out); err != nil {
		return out, fmt.Errorf("%w: unmarshal document: %v", ErrDocumentAccess, err)
	}
	return out, nil
}

// decodeAll maps a raw result set into typed entities.
func decodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// classify folds store faults into the package taxonomy. Errors already
// classified pass through; everything else becomes a document access
// failure, so no store fault propagates untranslated.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrIllegalQuery) ||
		errors.Is(err, ErrDocumentAccess) ||
		errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDocumentAccess, err)
}
