package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"contract-backend/models"
	"contract-backend/service"

	"github.com/gin-gonic/gin"
)

// Actions accepted by POST /api/analyze
const (
	actionAnalyze   = ""
	actionAsk       = "ask"
	actionNegotiate = "negotiate"
	actionLegal     = "legal"
)

// AnalyzeHandler serves the stateless analysis endpoint
type AnalyzeHandler struct {
	analysis *service.AnalysisService
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analysis *service.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{analysis: analysis}
}

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Action          string           `json:"action"`
	ContractText    string           `json:"contractText"`
	Question        string           `json:"question"`
	ContractContext string           `json:"contractContext"`
	RedFlags        []models.RedFlag `json:"redFlags"`
}

// Analyze handles POST /api/analyze. Without an action the contract is
// analyzed; "ask", "negotiate" and "legal" return free text.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.FailedResult("Requête invalide : "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case actionAsk:
		if strings.TrimSpace(req.Question) == "" {
			c.JSON(http.StatusBadRequest, models.FailedResult("Aucune question fournie"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"answer": h.analysis.AskQuestion(ctx, req.Question, req.ContractContext)})

	case actionNegotiate:
		c.JSON(http.StatusOK, gin.H{"advice": h.analysis.Negotiate(ctx, req.contract(), req.RedFlags)})

	case actionLegal:
		c.JSON(http.StatusOK, gin.H{"expertise": h.analysis.LegalExpertise(ctx, req.contract(), req.RedFlags)})

	case actionAnalyze, "analyze":
		h.analyze(c, req.ContractText)

	default:
		c.JSON(http.StatusBadRequest, models.FailedResult("Action inconnue : "+req.Action))
	}
}

func (h *AnalyzeHandler) analyze(c *gin.Context, contractText string) {
	result, err := h.analysis.AnalyzeContract(c.Request.Context(), contractText)
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, models.FailedResult(service.MsgEmptyInput))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, models.FailedResult(service.MsgUpstream))
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.FailedResult(service.MsgUpstream))
	case !result.Success:
		c.JSON(http.StatusInternalServerError, result)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// contract returns the contract text for advice actions, preferring contractContext
func (r AnalyzeRequest) contract() string {
	if strings.TrimSpace(r.ContractContext) != "" {
		return r.ContractContext
	}
	return r.ContractText
}
