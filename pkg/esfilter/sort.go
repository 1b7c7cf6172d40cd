package esfilter

import "strings"

// Direction is a sort order accepted by the engine
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortEntry is one compiled sort key
type SortEntry struct {
	Field     string
	Direction Direction
}

// Sort is an ordered list of sort keys; earlier entries take precedence
type Sort []SortEntry

// ParseSortToken compiles a single token:
//
//	^field       ascending
//	field:dir    dir is asc or desc (case-insensitive)
//	field        ascending
func ParseSortToken(token string) (SortEntry, error) {
	var e SortEntry
	trimmed := strings.TrimSpace(token)
	switch {
	case strings.HasPrefix(trimmed, "^"):
		e = SortEntry{Field: strings.TrimSpace(trimmed[1:]), Direction: Asc}
	case strings.Contains(trimmed, ":"):
		field, dir, _ := strings.Cut(trimmed, ":")
		d, ok := parseDirection(dir)
		if !ok {
			return SortEntry{}, &MalformedSortTokenError{Token: token, Reason: "direction must be asc or desc"}
		}
		e = SortEntry{Field: strings.TrimSpace(field), Direction: d}
	default:
		e = SortEntry{Field: trimmed, Direction: Asc}
	}

	if e.Field == "" {
		return SortEntry{}, &MalformedSortTokenError{Token: token, Reason: "empty field"}
	}
	return e, nil
}

func parseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// CompileSort compiles tokens in order. The first malformed token aborts.
func CompileSort(tokens []string) (Sort, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	out := make(Sort, 0, len(tokens))
	for _, t := range tokens {
		e, err := ParseSortToken(t)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Source renders [{"field": {"order": "asc"}}, ...]
func (s Sort) Source() []interface{} {
	out := make([]interface{}, len(s))
	for i, e := range s {
		out[i] = map[string]interface{}{
			e.Field: map[string]interface{}{"order": string(e.Direction)},
		}
	}
	return out
}

func (s Sort) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(s.Source())
}
