package elsearch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfilter/pkg/esfilter"
)

func intPtr(i int) *int {
	return &i
}

func TestBuildSearchBody(t *testing.T) {
	filter, err := esfilter.ParseJSON([]byte(`{
		"id": "0001",
		"updated(max)": "2017-01-01T00:00:00",
		"year(min)": 1973,
		"published": false
	}`))
	require.NoError(t, err)

	body, err := BuildSearchBody(SearchParams{
		Text:   "My book",
		Fields: []string{"name"},
		Filter: filter,
		Sort:   []string{"^year"},
		Limit:  intPtr(15),
		Offset: intPtr(0),
	}, esfilter.Compiler{})
	require.NoError(t, err)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"from": 0,
		"size": 15,
		"query": {"bool": {
			"must": {"query_string": {"query": "My book", "fields": ["name"]}},
			"filter": {"bool": {"must": [
				{"term": {"id": "0001"}},
				{"range": {"updated": {"lte": "2017-01-01T00:00:00"}}},
				{"range": {"year": {"gte": 1973}}},
				{"term": {"published": false}}
			]}}
		}},
		"sort": [{"year": {"order": "asc"}}]
	}`, string(out))
}

func TestBuildSearchBody_OmitsMissingParts(t *testing.T) {
	body, err := BuildSearchBody(SearchParams{}, esfilter.Compiler{})
	require.NoError(t, err)
	assert.Empty(t, body)

	body, err = BuildSearchBody(SearchParams{Text: "john doe"}, esfilter.Compiler{})
	require.NoError(t, err)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query": {"bool": {"must": {"query_string": {"query": "john doe"}}}}}`, string(out))
}

func TestBuildSearchBody_Errors(t *testing.T) {
	var f esfilter.Filter
	f.Add("id(foo)", "0001")

	_, err := BuildSearchBody(SearchParams{Filter: f}, esfilter.Compiler{})
	var opErr *esfilter.UnknownOperatorError
	assert.True(t, errors.As(err, &opErr))

	_, err = BuildSearchBody(SearchParams{Sort: []string{"year:sideways"}}, esfilter.Compiler{})
	var sortErr *esfilter.MalformedSortTokenError
	assert.True(t, errors.As(err, &sortErr))

	_, err = BuildSearchBody(SearchParams{Limit: intPtr(-1)}, esfilter.Compiler{})
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = BuildSearchBody(SearchParams{Offset: intPtr(-5)}, esfilter.Compiler{})
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestBuildSearchBody_ExistsStyle(t *testing.T) {
	var f esfilter.Filter
	f.Add("deleted", nil)

	body, err := BuildSearchBody(SearchParams{Filter: f}, esfilter.Compiler{Missing: esfilter.MissingExists})
	require.NoError(t, err)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query": {"bool": {"filter": {"bool": {"must": [
		{"bool": {"must_not": [{"exists": {"field": "deleted"}}]}}
	]}}}}}`, string(out))
}
