// Package esfilter compiles flat filter and sort descriptions into
// Elasticsearch bool queries and sort arrays.
//
// A filter key is "field" or "field(operator)":
//
//	{"year(min)": 1973, "tags(not)": ["a", "b"], "deleted": null}
//
// compiles to
//
//	{"bool": {
//	    "must": [{"range": {"year": {"gte": 1973}}}, {"missing": {"field": "deleted"}}],
//	    "must_not": [{"terms": {"tags": ["a", "b"]}}]}}
//
// Compilation is pure and safe for concurrent use.
package esfilter
