package esfilter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Bucket is a section of the compiled bool query
type Bucket uint8

const (
	Must Bucket = iota
	MustNot
)

func (b Bucket) String() string {
	if b == MustNot {
		return "must_not"
	}
	return "must"
}

// ClauseKind is the query primitive a clause renders to
type ClauseKind uint8

const (
	ClauseTerm ClauseKind = iota
	ClauseTerms
	ClauseRange
	ClauseMissing
)

func (k ClauseKind) String() string {
	switch k {
	case ClauseTerm:
		return "term"
	case ClauseTerms:
		return "terms"
	case ClauseRange:
		return "range"
	case ClauseMissing:
		return "missing"
	}
	return "unknown"
}

const (
	boundGte = "gte"
	boundLte = "lte"
)

// MissingStyle selects how a "field does not exist" test is rendered
type MissingStyle uint8

const (
	// MissingLegacy renders {"missing":{"field":f}}
	MissingLegacy MissingStyle = iota
	// MissingExists renders {"bool":{"must_not":[{"exists":{"field":f}}]}},
	// the form accepted by Elasticsearch 5 and later.
	MissingExists
)

// ParseMissingStyle accepts "legacy"/"missing" and "exists"
func ParseMissingStyle(s string) (MissingStyle, error) {
	switch s {
	case "", "legacy", "missing":
		return MissingLegacy, nil
	case "exists":
		return MissingExists, nil
	}
	return 0, fmt.Errorf("unknown missing style %q", s)
}

func (s MissingStyle) String() string {
	if s == MissingExists {
		return "exists"
	}
	return "legacy"
}

// Clause is one bool-query primitive about a single field
type Clause struct {
	Kind  ClauseKind
	Field string
	// Bound is "gte" or "lte" for range clauses
	Bound string
	Value Value

	missing MissingStyle
}

func termClause(field string, v Value) Clause {
	return Clause{Kind: ClauseTerm, Field: field, Value: v}
}

func termsClause(field string, v Value) Clause {
	return Clause{Kind: ClauseTerms, Field: field, Value: v}
}

func rangeClause(field, bound string, v Value) Clause {
	return Clause{Kind: ClauseRange, Field: field, Bound: bound, Value: v}
}

func missingClause(field string) Clause {
	return Clause{Kind: ClauseMissing, Field: field}
}

// Source returns the clause in the generic map form the engine expects
func (c Clause) Source() map[string]interface{} {
	switch c.Kind {
	case ClauseTerm, ClauseTerms:
		return map[string]interface{}{
			c.Kind.String(): map[string]interface{}{c.Field: c.Value.Interface()},
		}
	case ClauseRange:
		return map[string]interface{}{
			"range": map[string]interface{}{
				c.Field: map[string]interface{}{c.Bound: c.Value.Interface()},
			},
		}
	case ClauseMissing:
		if c.missing == MissingExists {
			return map[string]interface{}{
				"bool": map[string]interface{}{
					"must_not": []interface{}{
						map[string]interface{}{"exists": map[string]interface{}{"field": c.Field}},
					},
				},
			}
		}
		return map[string]interface{}{
			"missing": map[string]interface{}{"field": c.Field},
		}
	}
	return map[string]interface{}{}
}

// MarshalJSON renders the clause. Every map involved has a single key, so
// the output is deterministic.
func (c Clause) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(c.Source())
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
