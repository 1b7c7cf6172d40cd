package esfilter

import "bytes"

// Entry is one raw filter pair, e.g. {"year(min)", 1973}
type Entry struct {
	Key   string
	Value Value
}

// Filter is an insertion-ordered set of filter entries. Order matters: it
// is the order of the clauses in each bucket of the compiled query.
type Filter struct {
	entries []Entry
	index   map[string]int
}

// NewFilter builds a Filter from entries, in order
func NewFilter(entries ...Entry) Filter {
	var f Filter
	for _, e := range entries {
		f.Set(e.Key, e.Value)
	}
	return f
}

// Set stores v under key. Setting an existing key replaces its value and
// keeps its original position.
func (f *Filter) Set(key string, v Value) {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if i, ok := f.index[key]; ok {
		f.entries[i].Value = v
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, Entry{Key: key, Value: v})
}

// Add is Set with the value shape decided by ValueOf
func (f *Filter) Add(key string, v interface{}) *Filter {
	f.Set(key, ValueOf(v))
	return f
}

// Get returns the value stored under key
func (f Filter) Get(key string) (Value, bool) {
	i, ok := f.index[key]
	if !ok {
		return Value{}, false
	}
	return f.entries[i].Value, true
}

// Len returns the number of entries
func (f Filter) Len() int {
	return len(f.entries)
}

// Entries returns a copy of the entries in insertion order
func (f Filter) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// MarshalJSON renders the filter as a JSON object in insertion order
func (f Filter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range f.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(e.Value.Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Query is a compiled filter: the must and must_not buckets of a bool query
type Query struct {
	Must    []Clause
	MustNot []Clause
}

// IsEmpty reports whether no clause was compiled
func (q Query) IsEmpty() bool {
	return len(q.Must) == 0 && len(q.MustNot) == 0
}

// Source returns {"bool": {"must": [...], "must_not": [...]}} with empty
// buckets omitted. An empty query returns an empty map.
func (q Query) Source() map[string]interface{} {
	if q.IsEmpty() {
		return map[string]interface{}{}
	}
	b := make(map[string]interface{}, 2)
	if len(q.Must) > 0 {
		b["must"] = clauseSources(q.Must)
	}
	if len(q.MustNot) > 0 {
		b["must_not"] = clauseSources(q.MustNot)
	}
	return map[string]interface{}{"bool": b}
}

func clauseSources(cs []Clause) []interface{} {
	out := make([]interface{}, len(cs))
	for i, c := range cs {
		out[i] = c.Source()
	}
	return out
}

// MarshalJSON renders the query; map keys are sorted by encoding/json so
// compiling the same input twice yields identical bytes.
func (q Query) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(q.Source())
}

// Compiler turns filters into bool queries. The zero Compiler renders
// "field does not exist" tests as legacy missing clauses.
type Compiler struct {
	Missing MissingStyle
}

// Compile compiles f with the zero Compiler
func Compile(f Filter) (Query, error) {
	return Compiler{}.Compile(f)
}

// Compile walks the filter in insertion order and appends one clause per
// entry to the bucket chosen by its operator. The first unknown operator
// aborts compilation and no partial query is returned.
func (c Compiler) Compile(f Filter) (Query, error) {
	var q Query
	for _, e := range f.entries {
		key := ParseKey(e.Key)
		op, ok := ParseOperator(key.Operator)
		if !ok {
			return Query{}, &UnknownOperatorError{Key: e.Key, Operator: key.Operator}
		}

		bucket, clause, err := op.Apply(key.Field, e.Value)
		if err != nil {
			return Query{}, err
		}
		clause.missing = c.Missing

		switch bucket {
		case Must:
			q.Must = append(q.Must, clause)
		case MustNot:
			q.MustNot = append(q.MustNot, clause)
		}
	}
	return q, nil
}
