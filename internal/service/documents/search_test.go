package documents_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfilter/internal/config"
	"esfilter/internal/metrics"
	"esfilter/internal/models/dto"
	"esfilter/internal/repositories/elsearch"
	"esfilter/internal/service/documents"
	"esfilter/pkg/esfilter"
	"esfilter/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeEngine compiles the request like the real client and returns a canned
// result or error
type fakeEngine struct {
	mu       sync.Mutex
	result   *dto.SearchResult
	err      error
	compiler esfilter.Compiler
	searches []elsearch.SearchParams
	bodies   []map[string]interface{}
	indexed  map[string]map[string]interface{}
}

func (f *fakeEngine) Search(_ context.Context, params elsearch.SearchParams) (*dto.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, params)

	body, err := elsearch.BuildSearchBody(params, f.compiler)
	if err != nil {
		return nil, err
	}
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeEngine) IndexDocument(_ context.Context, index, id string, doc map[string]interface{}) (*dto.IndexResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.indexed == nil {
		f.indexed = map[string]map[string]interface{}{}
	}
	result := "created"
	if _, ok := f.indexed[index+"/"+id]; ok {
		result = "updated"
	}
	f.indexed[index+"/"+id] = doc
	return &dto.IndexResult{Index: index, ID: id, Version: 1, Result: result}, nil
}

func (f *fakeEngine) Ping(context.Context) error {
	return f.err
}

func (f *fakeEngine) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

// memoryCache is an in-memory redis.Store
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(value.(string))
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryCache) TTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(time.Minute, nil)
}

func (m *memoryCache) Incr(context.Context, string) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func newApp(engine *fakeEngine) *config.App {
	return &config.App{
		Settings: &config.Settings{ServiceVersion: "test"},
		ES:       engine,
		Logger:   logger.NewNop(),
		Metrics:  metrics.New(),
	}
}

func newRouter(cfg *config.App) *gin.Engine {
	r := gin.New()
	r.POST("/indices/:index/_search", documents.Search(cfg))
	r.GET("/indices/:index/_search", documents.SearchQuery(cfg))
	r.PUT("/indices/:index/_doc/:id", documents.IndexDocument(cfg))
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var bookResult = &dto.SearchResult{
	Took:  2,
	Total: 3,
	Hits: []dto.SearchHit{
		{ID: "0001", Index: "books", Source: map[string]interface{}{"name": "My book two"}},
	},
}

func TestSearch_Post(t *testing.T) {
	engine := &fakeEngine{result: bookResult}
	cfg := newApp(engine)

	rec := do(newRouter(cfg), http.MethodPost, "/indices/books/_search", `{
		"text": "My book",
		"fields": ["name"],
		"filter": {"year(min)": 1973, "id(not)": "0002", "author": null},
		"sort": ["^year"],
		"limit": 1,
		"offset": 1
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success    bool            `json:"success"`
		Data       []dto.SearchHit `json:"data"`
		Pagination dto.Pagination  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "0001", resp.Data[0].ID)
	assert.Equal(t, dto.Pagination{
		Offset: 1, Limit: 1, Returned: 1, TotalRecords: 3, HasNext: true, HasPrev: true,
	}, resp.Pagination)

	require.Equal(t, 1, engine.searchCount())
	params := engine.searches[0]
	assert.Equal(t, "books", params.Index)
	keys := make([]string, 0, params.Filter.Len())
	for _, e := range params.Filter.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"year(min)", "id(not)", "author"}, keys)
	assert.Equal(t, float64(1), testutil.ToFloat64(cfg.Metrics.FiltersCompiled))
}

func TestSearch_UnknownOperator(t *testing.T) {
	engine := &fakeEngine{result: bookResult}
	cfg := newApp(engine)

	rec := do(newRouter(cfg), http.MethodPost, "/indices/books/_search", `{"filter": {"id(foo)": "0001"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_filter", resp.Error)
	assert.Equal(t, "invalid filter key 'id(foo)': unknown operator 'foo'", resp.Message)
	assert.Equal(t, map[string]interface{}{"kind": "unknown_operator"}, resp.Details)
	assert.Equal(t, float64(1), testutil.ToFloat64(cfg.Metrics.CompileErrors.WithLabelValues("unknown_operator")))
}

func TestSearch_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   string
	}{
		{"malformed sort", http.MethodPost, "/indices/books/_search", `{"sort": ["year:up"]}`, "invalid_filter"},
		{"nested filter", http.MethodPost, "/indices/books/_search", `{"filter": {"a": {"b": 1}}}`, "invalid_filter"},
		{"negative limit", http.MethodPost, "/indices/books/_search", `{"limit": -1}`, "invalid_params"},
		{"not json", http.MethodPost, "/indices/books/_search", `{`, "invalid_body"},
		{"empty body", http.MethodPost, "/indices/books/_search", ``, "invalid_body"},
		{"query limit", http.MethodGet, "/indices/books/_search?limit=x", ``, "invalid_params"},
		{"query sort", http.MethodGet, "/indices/books/_search?sort=year:", ``, "invalid_filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newRouter(newApp(&fakeEngine{result: bookResult})), tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestSearch_EngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"rejected", &elsearch.EngineError{Status: 400, Body: `{"error":"parsing_exception"}`}, http.StatusBadRequest, "invalid_query"},
		{"failed", &elsearch.EngineError{Status: 503, Body: `{"error":"unavailable_shards_exception"}`}, http.StatusBadGateway, "search_engine_error"},
		{"unreachable", errors.New("dial tcp: connection refused"), http.StatusBadGateway, "search_engine_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newRouter(newApp(&fakeEngine{err: tt.err})), http.MethodPost, "/indices/books/_search", `{}`)
			require.Equal(t, tt.status, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestSearch_NullFilterDefaultsToExists(t *testing.T) {
	t.Setenv("FILTER_MISSING_STYLE", "")
	require.NoError(t, os.Unsetenv("FILTER_MISSING_STYLE"))
	settings, err := config.LoadSettings()
	require.NoError(t, err)

	engine := &fakeEngine{result: bookResult, compiler: esfilter.Compiler{Missing: settings.Missing()}}
	cfg := newApp(engine)

	rec := do(newRouter(cfg), http.MethodPost, "/indices/books/_search", `{"filter": {"deleted": null}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(newRouter(cfg), http.MethodGet, "/indices/books/_search?filter[deleted]", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, engine.bodies, 2)
	for _, body := range engine.bodies {
		out, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"query": {"bool": {"filter": {"bool": {"must": [
			{"bool": {"must_not": [{"exists": {"field": "deleted"}}]}}
		]}}}}}`, string(out))
	}
}

func TestSearchQuery(t *testing.T) {
	engine := &fakeEngine{result: bookResult}
	cfg := newApp(engine)

	rec := do(newRouter(cfg), http.MethodGet,
		"/indices/books/_search?q=book&filter[id(any)]=0001&filter[id(any)]=0002&sort=name:desc&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Equal(t, 1, engine.searchCount())
	params := engine.searches[0]
	assert.Equal(t, "book", params.Text)
	assert.Equal(t, []string{"name:desc"}, params.Sort)
	v, ok := params.Filter.Get("id(any)")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"0001", "0002"}, v.List())
}

func TestSearch_Cache(t *testing.T) {
	engine := &fakeEngine{result: bookResult}
	cfg := newApp(engine)
	cfg.Redis = newMemoryCache()
	cfg.Settings.CacheTTL = time.Minute
	r := newRouter(cfg)

	body := `{"filter": {"a": 1, "b": 2}}`
	first := do(r, http.MethodPost, "/indices/books/_search", body)
	second := do(r, http.MethodPost, "/indices/books/_search", body)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, engine.searchCount())

	// same entries in a different order build a different body
	do(r, http.MethodPost, "/indices/books/_search", `{"filter": {"b": 2, "a": 1}}`)
	assert.Equal(t, 2, engine.searchCount())

	assert.Equal(t, float64(1), testutil.ToFloat64(cfg.Metrics.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(cfg.Metrics.CacheLookups.WithLabelValues("miss")))
}

func TestIndexDocument(t *testing.T) {
	engine := &fakeEngine{}
	r := newRouter(newApp(engine))

	rec := do(r, http.MethodPut, "/indices/books/_doc/0001", `{"id":"0001","year":1980}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(r, http.MethodPut, "/indices/books/_doc/0001", `{"id":"0001","year":1981}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data dto.IndexResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "updated", resp.Data.Result)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/indices/books/_doc/0002", `[1,2]`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/indices/books/_doc/0002", `null`).Code)
}

func TestIndexDocument_EngineError(t *testing.T) {
	r := newRouter(newApp(&fakeEngine{err: &elsearch.EngineError{Status: 503, Body: "unavailable"}}))
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodPut, "/indices/books/_doc/0001", `{"id":"0001"}`).Code)

	r = newRouter(newApp(&fakeEngine{err: &elsearch.EngineError{Status: 400, Body: "mapper_parsing_exception"}}))
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/indices/books/_doc/0001", `{"id":"0001"}`).Code)
}
