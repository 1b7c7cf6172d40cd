package documents

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"esfilter/internal/config"
	"esfilter/internal/models/dto"
	"esfilter/internal/repositories/elsearch"
)

const indexTimeout = 10 * time.Second

// IndexDocument handles PUT /indices/:index/_doc/:id
// @Summary      Index a document
// @Description  Creates or replaces the document with the given id.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        index  path      string  true  "Index name"
// @Param        id     path      string  true  "Document id"
// @Param        body   body      object  true  "Document source"
// @Success      200    {object}  dto.SuccessResponse{data=dto.IndexResult}
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      401    {object}  dto.AuthErrorResponse
// @Failure      502    {object}  dto.ErrorResponse
// @Router       /indices/{index}/_doc/{id} [put]
func IndexDocument(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {

		index := strings.TrimSpace(c.Param("index"))
		id := strings.TrimSpace(c.Param("id"))
		if index == "" || id == "" {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_params", "index and id are required", nil))
			return
		}

		var doc map[string]interface{}
		if err := c.ShouldBindJSON(&doc); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_body", err.Error(), nil))
			return
		}
		if doc == nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_body", "document must be a JSON object", nil))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), indexTimeout)
		defer cancel()

		result, err := cfg.ES.IndexDocument(ctx, index, id, doc)
		if err != nil {
			var engineErr *elsearch.EngineError
			if errors.As(err, &engineErr) && engineErr.Status == http.StatusBadRequest {
				c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "invalid_document", engineErr.Body, nil))
				return
			}
			cfg.Logger.Error("failed to index document", err, map[string]interface{}{
				"index": index,
				"id":    id,
			})
			c.JSON(http.StatusBadGateway, dto.NewErrorResponse(c, http.StatusBadGateway, "search_engine_error", "Error while indexing document", nil))
			return
		}

		status := http.StatusOK
		if result.Result == "created" {
			status = http.StatusCreated
		}
		c.JSON(status, dto.NewSuccessResponse(c, result, "Document "+result.Result))
	}
}
