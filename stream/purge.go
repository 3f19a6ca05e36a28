// Package stream provides DynamoDB Streams handlers that keep dependent
// documents consistent with their sources.
package stream

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Deleter issues a derived delete of every document whose field equals a
// value. *repo.Repository satisfies this with DeleteWhere.
type Deleter interface {
	DeleteWhere(ctx context.Context, field string, value any) (int64, error)
}

// Rule declares a dependency between containers: when a document is removed
// from SourceTable, dependent documents whose TargetField equals the removed
// document's SourceField value are purged from the target repository.
type Rule struct {
	// SourceTable is the table whose REMOVE events trigger the purge.
	SourceTable string

	// SourceField is the attribute read from the removed document's image.
	SourceField string

	// Target holds the dependent documents.
	Target Deleter

	// TargetField is matched against the source field's value.
	TargetField string
}

// Handler processes DynamoDB stream events and applies purge rules.
// Purges are idempotent: re-delivered events delete nothing the second time.
type Handler struct {
	rules  []Rule
	logger *slog.Logger
}

// NewHandler creates a stream handler with the given purge rules.
func NewHandler(rules []Rule, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{rules: rules, logger: logger}
}

// HandlePurge processes a stream event. This function is designed to be used
// as an AWS Lambda handler.
func (h *Handler) HandlePurge(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord applies every matching rule to a single REMOVE record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	table := tableFromARN(record.EventSourceArn)
	for _, rule := range h.rules {
		if rule.SourceTable != table {
			continue
		}

		value, ok := attrValue(record.Change.OldImage, rule.SourceField)
		if !ok {
			h.logger.Warn("removed document missing source field",
				"table", table,
				"field", rule.SourceField,
				"eventID", record.EventID,
			)
			continue
		}

		purged, err := rule.Target.DeleteWhere(ctx, rule.TargetField, value)
		if err != nil {
			return err
		}

		h.logger.Info("purged dependent documents",
			"sourceTable", table,
			"sourceField", rule.SourceField,
			"targetField", rule.TargetField,
			"purged", purged,
		)
	}

	return nil
}

// tableFromARN extracts the table name from a stream source ARN of the form
// arn:aws:dynamodb:region:account:table/NAME/stream/LABEL.
func tableFromARN(arn string) string {
	i := strings.Index(arn, ":table/")
	if i < 0 {
		return ""
	}
	rest := arn[i+len(":table/"):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rest[:j]
	}
	return rest
}

// attrValue extracts a stream image attribute as a Go value suitable for a
// derived delete: strings stay strings, numbers become int64 or float64.
func attrValue(image map[string]events.DynamoDBAttributeValue, key string) (any, bool) {
	v, ok := image[key]
	if !ok {
		return nil, false
	}
	switch v.DataType() {
	case events.DataTypeString:
		return v.String(), true
	case events.DataTypeNumber:
		if n, err := strconv.ParseInt(v.Number(), 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(v.Number(), 64); err == nil {
			return f, true
		}
		return nil, false
	case events.DataTypeBoolean:
		return v.Boolean(), true
	default:
		return nil, false
	}
}
