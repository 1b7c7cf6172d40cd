package dto

import (
	"encoding/json"

	"esfilter/pkg/esfilter"
)

// SearchRequest is the JSON body of POST /indices/:index/_search
type SearchRequest struct {
	Text   string          `json:"text,omitempty" example:"My book"`
	Fields []string        `json:"fields,omitempty" example:"name"`
	Filter esfilter.Filter `json:"filter" swaggertype:"object"`
	Sort   []string        `json:"sort,omitempty" example:"^year"`
	Limit  *int            `json:"limit,omitempty" example:"15"`
	Offset *int            `json:"offset,omitempty" example:"0"`
}

// ESResponse is the subset of the _search response the gateway reads
type ESResponse struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []ESHit  `json:"hits"`
	} `json:"hits"`
}

// ESHit is a single search hit
type ESHit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []interface{}   `json:"sort,omitempty"`
}

// SearchHit is a hit as returned to API clients
type SearchHit struct {
	ID     string                 `json:"id"`
	Index  string                 `json:"index"`
	Score  *float64               `json:"score,omitempty"`
	Source map[string]interface{} `json:"source"`
}

// SearchResult is a decoded page of hits
type SearchResult struct {
	Took  int         `json:"took"`
	Total int64       `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// IndexResult is the decoded response of an index operation
type IndexResult struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Result  string `json:"result"`
}
