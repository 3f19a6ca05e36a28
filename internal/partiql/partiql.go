// Package partiql renders PartiQL statement text for document queries.
package partiql

import "strings"

// Quote wraps an identifier in double quotes, escaping embedded quotes.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Select renders a SELECT statement. Projection lists the fields to return
// (nil or empty selects everything). Each where field becomes an equality
// against a ? placeholder; placeholders bind positionally, in where order.
// Connective is "AND" or "OR".
func Select(container string, projection []string, where []string, connective string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(projection) == 0 {
		b.WriteString("*")
	} else {
		for i, f := range projection {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Quote(f))
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(Quote(container))

	if len(where) > 0 {
		b.WriteString(" WHERE ")
		for i, f := range where {
			if i > 0 {
				b.WriteString(" ")
				b.WriteString(connective)
				b.WriteString(" ")
			}
			b.WriteString(Quote(f))
			b.WriteString(" = ?")
		}
	}

	return b.String()
}
