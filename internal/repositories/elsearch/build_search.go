package elsearch

import (
	"errors"
	"fmt"

	"esfilter/pkg/esfilter"
)

// ErrInvalidParams is returned for a search window that cannot be sent
var ErrInvalidParams = errors.New("invalid search parameters")

// SearchParams are the inputs of a search: free text over fields, a filter,
// sort tokens and a window.
type SearchParams struct {
	Index  string
	Text   string
	Fields []string
	Filter esfilter.Filter
	Sort   []string
	Limit  *int
	Offset *int
}

// BuildSearchBody compiles the filter and sort tokens and assembles the
// _search body:
//
//	{"from": offset, "size": limit,
//	 "query": {"bool": {"must": {"query_string": ...}, "filter": <compiled>}},
//	 "sort": [...]}
//
// Parts that were not supplied are left out.
func BuildSearchBody(params SearchParams, compiler esfilter.Compiler) (map[string]interface{}, error) {
	filter, err := compiler.Compile(params.Filter)
	if err != nil {
		return nil, err
	}

	sort, err := esfilter.CompileSort(params.Sort)
	if err != nil {
		return nil, err
	}

	if params.Limit != nil && *params.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidParams, *params.Limit)
	}
	if params.Offset != nil && *params.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative, got %d", ErrInvalidParams, *params.Offset)
	}

	body := map[string]interface{}{}

	if params.Offset != nil {
		body["from"] = *params.Offset
	}
	if params.Limit != nil {
		body["size"] = *params.Limit
	}

	boolQuery := map[string]interface{}{}
	if params.Text != "" {
		queryString := map[string]interface{}{
			"query": params.Text,
		}
		if len(params.Fields) > 0 {
			queryString["fields"] = params.Fields
		}
		boolQuery["must"] = map[string]interface{}{
			"query_string": queryString,
		}
	}
	if !filter.IsEmpty() {
		boolQuery["filter"] = filter.Source()
	}
	if len(boolQuery) > 0 {
		body["query"] = map[string]interface{}{
			"bool": boolQuery,
		}
	}

	if len(sort) > 0 {
		body["sort"] = sort.Source()
	}

	return body, nil
}
