package esfilter

import "strings"

// DefaultOperator is the operator of a key without a parenthesized suffix
const DefaultOperator = "default"

// Key is a filter key split into its field and operator name
type Key struct {
	Field    string
	Operator string
}

// ParseKey splits "field" or "field(operator)" into its parts. Every ')' is
// dropped, the key is split on the first '(' and both halves are trimmed.
// The field is not validated.
func ParseKey(raw string) Key {
	field, op, found := strings.Cut(strings.ReplaceAll(raw, ")", ""), "(")
	if !found {
		return Key{Field: strings.TrimSpace(field), Operator: DefaultOperator}
	}
	return Key{Field: strings.TrimSpace(field), Operator: strings.TrimSpace(op)}
}
