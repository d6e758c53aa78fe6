package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/textlens/internal/pkg/response"
	"github.com/xxxsen/textlens/internal/service"
)

type AnalyzeHandler struct {
	analyze  *service.AnalyzeService
	mockMode bool
}

func NewAnalyzeHandler(analyze *service.AnalyzeService, mockMode bool) *AnalyzeHandler {
	return &AnalyzeHandler{analyze: analyze, mockMode: mockMode}
}

type analyzeRequest struct {
	Text            string   `json:"text"`
	CandidateLabels []string `json:"candidate_labels"`
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	res, err := h.analyze.Analyze(c.Request.Context(), getUserID(c), req.Text, req.CandidateLabels)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *AnalyzeHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok", "service": "analyze", "mock_mode": h.mockMode})
}
