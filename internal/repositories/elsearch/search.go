package elsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"esfilter/internal/models/dto"
)

// Engine is what the HTTP layer needs from the search cluster
type Engine interface {
	Search(ctx context.Context, params SearchParams) (*dto.SearchResult, error)
	IndexDocument(ctx context.Context, index, id string, doc map[string]interface{}) (*dto.IndexResult, error)
	Ping(ctx context.Context) error
}

// ErrIndexRequired is returned when neither the request nor the client
// configuration names an index
var ErrIndexRequired = errors.New("index name is required")

// EngineError is a non-2xx response from the cluster
type EngineError struct {
	Status int
	Body   string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("elasticsearch responded %d: %s", e.Status, e.Body)
}

// Search compiles params into a _search body, runs it and decodes the hits
func (es *Client) Search(ctx context.Context, params SearchParams) (*dto.SearchResult, error) {
	index := params.Index
	if index == "" {
		index = es.config.IndexName
	}
	if index == "" {
		return nil, ErrIndexRequired
	}

	body, err := BuildSearchBody(params, es.compiler)
	if err != nil {
		return nil, err
	}

	queryJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, es.ES)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer closeBody(res.Body)

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if res.IsError() {
		return nil, &EngineError{Status: res.StatusCode, Body: string(raw)}
	}

	var esResponse dto.ESResponse
	if err := json.Unmarshal(raw, &esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]dto.SearchHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		var source map[string]interface{}
		if len(hit.Source) > 0 {
			if err := json.Unmarshal(hit.Source, &source); err != nil {
				return nil, fmt.Errorf("failed to decode hit %s: %w", hit.ID, err)
			}
		}
		hits = append(hits, dto.SearchHit{
			ID:     hit.ID,
			Index:  hit.Index,
			Score:  hit.Score,
			Source: source,
		})
	}

	return &dto.SearchResult{
		Took:  esResponse.Took,
		Total: esResponse.Hits.Total.Value,
		Hits:  hits,
	}, nil
}
