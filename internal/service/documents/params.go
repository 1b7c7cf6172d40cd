package documents

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"esfilter/internal/models/dto"
	"esfilter/internal/repositories/elsearch"
	"esfilter/pkg/esfilter"
)

const filterPrefix = "filter["

// ParseSearchQuery reads the query-string form of a search:
//
//	q=text&fields=a,b&sort=^year&sort=name:desc&limit=15&offset=0
//	&filter[year(min)]=1973&filter[id(any)]=1&filter[id(any)]=2&filter[author]
//
// Filter entries keep the order they appear in the URL. A repeated key or a
// key ending in [] yields a list, a key without "=" yields null. Other
// parameters are ignored.
func ParseSearchQuery(rawQuery string) (dto.SearchRequest, error) {
	var req dto.SearchRequest

	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}

		rawKey, rawVal, hasValue := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return req, fmt.Errorf("%w: %v", elsearch.ErrInvalidParams, err)
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return req, fmt.Errorf("%w: %v", elsearch.ErrInvalidParams, err)
		}

		switch {
		case key == "q":
			req.Text = val
		case key == "fields":
			req.Fields = append(req.Fields, splitList(val)...)
		case key == "sort":
			req.Sort = append(req.Sort, splitList(val)...)
		case key == "limit":
			n, err := parseWindow(key, val)
			if err != nil {
				return req, err
			}
			req.Limit = &n
		case key == "offset":
			n, err := parseWindow(key, val)
			if err != nil {
				return req, err
			}
			req.Offset = &n
		case strings.HasPrefix(key, filterPrefix):
			name, forceList, err := filterName(key)
			if err != nil {
				return req, err
			}
			addFilterValue(&req.Filter, name, val, hasValue, forceList)
		}
	}

	return req, nil
}

// filterName extracts the filter key from filter[<key>] or filter[<key>][]
func filterName(param string) (name string, list bool, err error) {
	name = strings.TrimPrefix(param, filterPrefix)
	if strings.HasSuffix(name, "][]") {
		name, list = strings.TrimSuffix(name, "][]"), true
	} else if strings.HasSuffix(name, "]") {
		name = strings.TrimSuffix(name, "]")
	} else {
		return "", false, fmt.Errorf("%w: malformed filter parameter %q", elsearch.ErrInvalidParams, param)
	}
	if strings.TrimSpace(name) == "" {
		return "", false, fmt.Errorf("%w: empty filter key in %q", elsearch.ErrInvalidParams, param)
	}
	return name, list, nil
}

func addFilterValue(f *esfilter.Filter, name, val string, hasValue, forceList bool) {
	if !hasValue {
		f.Set(name, esfilter.Null())
		return
	}

	existing, seen := f.Get(name)
	switch {
	case seen && existing.Kind() == esfilter.KindList:
		f.Set(name, esfilter.List(append(existing.List(), val)...))
	case seen && existing.Kind() == esfilter.KindScalar:
		f.Set(name, esfilter.List(existing.Scalar(), val))
	case forceList:
		f.Set(name, esfilter.List(val))
	default:
		f.Set(name, esfilter.Scalar(val))
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseWindow(name, val string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", elsearch.ErrInvalidParams, name, val)
	}
	return n, nil
}
