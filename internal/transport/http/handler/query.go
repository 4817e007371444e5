package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"multimodal-knowledge-assistant/internal/app"
	"multimodal-knowledge-assistant/internal/transport/http/response"
)

type QueryHandler struct {
	query *app.QueryService
}

func NewQueryHandler(query *app.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask answers a natural-language question over the ingested corpus. The
// non-answer outcomes (empty query, no data, provider failures) are business
// responses carried in the result kind; only retrieval failures surface as
// an HTTP error, distinct from "no results".
func (h *QueryHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.query.Answer(c.Request.Context(), req.Question)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeSearchFailed, "search failed")
		return
	}

	response.OK(c, result)
}
