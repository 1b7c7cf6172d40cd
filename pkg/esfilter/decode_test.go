package esfilter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseJSON_KeepsOrderAndShapes(t *testing.T) {
	f, err := ParseJSON([]byte(`{"z": 1.50, "a": ["x", 2, true, null], "m": null, "b": false}`))
	require.NoError(t, err)

	entries := f.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, []string{"z", "a", "m", "b"}, []string{entries[0].Key, entries[1].Key, entries[2].Key, entries[3].Key})

	assert.Equal(t, KindScalar, entries[0].Value.Kind())
	assert.Equal(t, json.Number("1.50"), entries[0].Value.Scalar())

	assert.Equal(t, KindList, entries[1].Value.Kind())
	assert.Equal(t, []interface{}{"x", json.Number("2"), true, nil}, entries[1].Value.List())

	assert.True(t, entries[2].Value.IsNull())
	assert.Equal(t, false, entries[3].Value.Scalar())
}

func TestParseJSON_Null(t *testing.T) {
	f, err := ParseJSON([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestParseJSON_TrailingWhitespace(t *testing.T) {
	f, err := ParseJSON([]byte("{\"a\": 1}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}

func TestParseJSON_Rejects(t *testing.T) {
	tests := map[string]string{
		"not an object": `["a"]`,
		"nested object": `{"a": {"b": 1}}`,
		"nested list":   `{"a": [[1]]}`,
		"broken":        `{"a": `,
		"trailing text": `{"a": 1} garbage`,
		"two objects":   `{"a": 1} {"b": 2}`,
		"after null":    `null 1`,
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFilter))
		})
	}
}

func TestFilter_UnmarshalJSONInsideStruct(t *testing.T) {
	var body struct {
		Filter Filter   `json:"filter"`
		Sort   []string `json:"sort"`
	}
	err := json.Unmarshal([]byte(`{"filter": {"b(not)": 2, "a": 1}, "sort": ["^a"]}`), &body)
	require.NoError(t, err)

	entries := body.Filter.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b(not)", entries[0].Key)
	assert.Equal(t, "a", entries[1].Key)
	assert.Equal(t, []string{"^a"}, body.Sort)
}

func TestFilter_UnmarshalYAML(t *testing.T) {
	in := `
id: "0001"
authors: [John, Jane]
deleted:
age(min): 25
tags(not):
  - foo
  - bar
`
	var f Filter
	require.NoError(t, yaml.Unmarshal([]byte(in), &f))

	entries := f.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, "id", entries[0].Key)
	assert.Equal(t, "0001", entries[0].Value.Scalar())
	assert.Equal(t, []interface{}{"John", "Jane"}, entries[1].Value.List())
	assert.True(t, entries[2].Value.IsNull())
	assert.Equal(t, 25, entries[3].Value.Scalar())
	assert.Equal(t, "tags(not)", entries[4].Key)

	q, err := Compile(f)
	require.NoError(t, err)
	assert.Len(t, q.Must, 4)
	assert.Len(t, q.MustNot, 1)
}

func TestFilter_UnmarshalYAMLRejectsNested(t *testing.T) {
	var f Filter
	err := yaml.Unmarshal([]byte("a:\n  b: 1\n"), &f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFilter))
}
