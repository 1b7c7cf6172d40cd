package elsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"esfilter/internal/models/dto"
)

// IndexDocument stores doc under id in index, creating or replacing it
func (es *Client) IndexDocument(ctx context.Context, index, id string, doc map[string]interface{}) (*dto.IndexResult, error) {
	if index == "" {
		index = es.config.IndexName
	}
	if index == "" {
		return nil, ErrIndexRequired
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, es.ES)
	if err != nil {
		return nil, fmt.Errorf("index request failed: %w", err)
	}
	defer closeBody(res.Body)

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read index response: %w", err)
	}

	if res.IsError() {
		return nil, &EngineError{Status: res.StatusCode, Body: string(raw)}
	}

	var result dto.IndexResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode index response: %w", err)
	}
	return &result, nil
}
