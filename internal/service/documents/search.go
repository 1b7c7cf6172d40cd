package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"esfilter/internal/config"
	"esfilter/internal/metrics"
	"esfilter/internal/middleware"
	"esfilter/internal/models/dto"
	"esfilter/internal/repositories/elsearch"
	"esfilter/pkg/esfilter"
	"esfilter/pkg/logger"
)

// defaultLimit is the page size Elasticsearch applies when none is sent
const defaultLimit = 10

const searchTimeout = 30 * time.Second

// Search handles POST /indices/:index/_search
// @Summary      Search an index
// @Description  Compiles the filter and sort tokens into an Elasticsearch bool query and returns the matching documents.
// @Description  Filter keys are "field" or "field(op)" with op one of not, min, max, any, none, all.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        index  path      string              true  "Index name"
// @Param        body   body      dto.SearchRequest   true  "Search request"
// @Success      200    {object}  dto.PaginatedResponse{data=[]dto.SearchHit}
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      429    {object}  dto.RateLimitErrorResponse
// @Failure      502    {object}  dto.ErrorResponse
// @Router       /indices/{index}/_search [post]
func Search(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req dto.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if errors.Is(err, esfilter.ErrInvalidFilter) {
				writeError(c, cfg, err)
				return
			}
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_body", err.Error(), nil))
			return
		}

		runSearch(c, cfg, req)
	}
}

// SearchQuery handles GET /indices/:index/_search
// @Summary      Search an index using query parameters
// @Description  Same as the POST form. Filters are passed as filter[key]=value, in order; repeat a key or append [] for a list, omit "=" for null.
// @Tags         documents
// @Produce      json
// @Param        index   path      string  true   "Index name"
// @Param        q       query     string  false  "Free text"
// @Param        fields  query     string  false  "Comma separated fields searched by q"
// @Param        sort    query     string  false  "Sort token, ^field or field:asc|desc (repeatable)"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Offset of the first hit"
// @Success      200     {object}  dto.PaginatedResponse{data=[]dto.SearchHit}
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      429     {object}  dto.RateLimitErrorResponse
// @Failure      502     {object}  dto.ErrorResponse
// @Router       /indices/{index}/_search [get]
func SearchQuery(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {

		req, err := ParseSearchQuery(c.Request.URL.RawQuery)
		if err != nil {
			writeError(c, cfg, err)
			return
		}

		runSearch(c, cfg, req)
	}
}

func runSearch(c *gin.Context, cfg *config.App, req dto.SearchRequest) {
	params := elsearch.SearchParams{
		Index:  c.Param("index"),
		Text:   req.Text,
		Fields: req.Fields,
		Filter: req.Filter,
		Sort:   req.Sort,
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	cacheKey := searchCacheKey(params)
	if result, ok := cachedResult(ctx, cfg, cacheKey); ok {
		middleware.AddLogFields(c, map[string]interface{}{"cache": "hit"})
		c.JSON(http.StatusOK, paginate(c, result, params))
		return
	}

	start := time.Now()
	result, err := cfg.ES.Search(ctx, params)
	if err != nil {
		if !isInputError(err) {
			cfg.Metrics.ObserveSearch(start, err)
		}
		writeError(c, cfg, err)
		return
	}
	cfg.Metrics.ObserveSearch(start, nil)
	if cfg.Metrics != nil {
		cfg.Metrics.FiltersCompiled.Inc()
	}

	storeResult(ctx, cfg, cacheKey, result)

	c.JSON(http.StatusOK, paginate(c, result, params))
}

func paginate(c *gin.Context, result *dto.SearchResult, params elsearch.SearchParams) dto.PaginatedResponse {
	offset, limit := 0, defaultLimit
	if params.Offset != nil {
		offset = *params.Offset
	}
	if params.Limit != nil {
		limit = *params.Limit
	}

	hits := result.Hits
	if hits == nil {
		hits = []dto.SearchHit{}
	}

	return dto.NewPaginatedResponse(c, hits, dto.Pagination{
		Offset:       offset,
		Limit:        limit,
		Returned:     len(hits),
		TotalRecords: result.Total,
		HasNext:      int64(offset+len(hits)) < result.Total,
		HasPrev:      offset > 0,
	}, "Search completed")
}

// searchCacheKey hashes everything that determines the response. Filter
// entries are hashed in order since order changes the generated body.
func searchCacheKey(params elsearch.SearchParams) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "search:" + hex.EncodeToString(sum[:])
}

func cachedResult(ctx context.Context, cfg *config.App, key string) (*dto.SearchResult, bool) {
	if !cacheEnabled(cfg) || key == "" {
		return nil, false
	}

	var result dto.SearchResult
	found, err := cfg.Redis.GetJSON(ctx, key, &result)
	switch {
	case err != nil:
		cacheLookup(cfg, "error")
		cfg.Logger.Warn("search cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	case !found:
		cacheLookup(cfg, "miss")
		return nil, false
	}
	cacheLookup(cfg, "hit")
	return &result, true
}

func storeResult(ctx context.Context, cfg *config.App, key string, result *dto.SearchResult) {
	if !cacheEnabled(cfg) || key == "" {
		return
	}
	if err := cfg.Redis.SetJSON(ctx, key, result, cfg.Settings.CacheTTL); err != nil {
		cfg.Logger.Warn("search cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func cacheEnabled(cfg *config.App) bool {
	return cfg.Redis != nil && cfg.Settings != nil && cfg.Settings.CacheTTL > 0
}

func cacheLookup(cfg *config.App, result string) {
	if cfg.Metrics != nil {
		cfg.Metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func isInputError(err error) bool {
	return errors.Is(err, esfilter.ErrInvalidFilter) ||
		errors.Is(err, elsearch.ErrInvalidParams) ||
		errors.Is(err, elsearch.ErrIndexRequired)
}

// writeError maps an error to the response status: invalid input and
// queries the cluster refuses with 400 are 400, other cluster failures 502.
func writeError(c *gin.Context, cfg *config.App, err error) {
	var engineErr *elsearch.EngineError

	switch {
	case errors.Is(err, esfilter.ErrInvalidFilter):
		cfg.Metrics.ObserveCompileError(err)
		kind := metrics.CompileErrorKind(err)
		middleware.AddLogFields(c, map[string]interface{}{"compile_error": kind})
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_filter", err.Error(),
			map[string]interface{}{"kind": kind}))

	case isInputError(err):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_params", err.Error(), nil))

	case errors.As(err, &engineErr) && engineErr.Status == http.StatusBadRequest:
		middleware.AddLogFields(c, map[string]interface{}{"engine_error": engineErr.Body})
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_query",
			"Elasticsearch rejected the query", map[string]interface{}{"reason": engineErr.Body}))

	case errors.As(err, &engineErr):
		cfg.Logger.WithContext(logger.LevelError, "search engine rejected request", logger.LogContext{
			Error: &logger.ErrorContext{
				Type:    "engine_error",
				Message: engineErr.Body,
				Code:    http.StatusText(engineErr.Status),
			},
		})
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(c, http.StatusBadGateway, "search_engine_error",
			"Elasticsearch rejected the request", map[string]interface{}{"status": engineErr.Status}))

	default:
		cfg.Logger.Error("search engine unavailable", err)
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(c, http.StatusBadGateway, "search_engine_unavailable",
			"Elasticsearch could not be reached", nil))
	}
}
