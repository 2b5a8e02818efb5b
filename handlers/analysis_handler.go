package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contract-backend/logger"
	"contract-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalysisHandler handles HTTP requests for persisted analyses
type AnalysisHandler struct {
	contracts      *service.ContractService
	processTimeout time.Duration
}

// NewAnalysisHandler creates a new analysis handler. processTimeout bounds
// each background analysis; zero means no limit.
func NewAnalysisHandler(contracts *service.ContractService, processTimeout time.Duration) *AnalysisHandler {
	return &AnalysisHandler{contracts: contracts, processTimeout: processTimeout}
}

// CreateAnalysisRequest is the body of POST /api/analyses
type CreateAnalysisRequest struct {
	Name         string `json:"name"`
	FileName     string `json:"file_name"`
	ContractText string `json:"contract_text"`
	FileID       string `json:"file_id"`
}

// CreateAnalysis handles POST /api/analyses
func (h *AnalysisHandler) CreateAnalysis(c *gin.Context) {
	var req CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	serviceReq := service.CreateAnalysisRequest{
		Name:         req.Name,
		FileName:     req.FileName,
		ContractText: req.ContractText,
	}
	if req.FileID != "" {
		fileID, err := uuid.Parse(req.FileID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_FILE_ID", "Invalid file_id format")
			return
		}
		serviceReq.FileID = &fileID
	}

	// Create analysis and job (synchronous, fast)
	result, err := h.contracts.CreateAnalysis(c.Request.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyInput):
			respondError(c, http.StatusBadRequest, "EMPTY_CONTRACT", service.MsgEmptyInput)
		case errors.Is(err, service.ErrFileNotFound):
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		case errors.Is(err, service.ErrUnsupportedFile):
			respondError(c, http.StatusUnprocessableEntity, "UNSUPPORTED_FILE", "Only plain-text documents can be analyzed directly; send contract_text for PDFs")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "CREATION_FAILED", err.Error())
		}
		return
	}

	// Run the analysis in the background; clients poll /api/jobs/:id
	jobID := result.Job.ID
	go func() {
		ctx := context.Background()
		if h.processTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.processTimeout)
			defer cancel()
		}
		if err := h.contracts.ProcessAnalysis(ctx, jobID); err != nil {
			// The failure is stored on the job and the analysis
			logger.Log.WithError(err).WithField("job_id", jobID).Warn("Analysis job failed")
		}
	}()

	respondData(c, http.StatusAccepted, gin.H{
		"analysis_id":   result.Analysis.ID,
		"job_id":        jobID,
		"status":        result.Analysis.Status,
		"name":          result.Analysis.Name,
		"contract_type": result.Analysis.ContractType,
	})
}

// GetAnalysis handles GET /api/analyses/:id
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, ok := parseID(c, "Invalid analysis ID format")
	if !ok {
		return
	}

	analysis, err := h.contracts.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	respondData(c, http.StatusOK, analysis)
}

// ListAnalyses handles GET /api/analyses?limit=
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	analyses, err := h.contracts.ListAnalyses(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
		return
	}

	respondData(c, http.StatusOK, analyses)
}

// DeleteAnalysis handles DELETE /api/analyses/:id
func (h *AnalysisHandler) DeleteAnalysis(c *gin.Context) {
	id, ok := parseID(c, "Invalid analysis ID format")
	if !ok {
		return
	}

	if err := h.contracts.DeleteAnalysis(c.Request.Context(), id); err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AskQuestion handles POST /api/analyses/:id/ask
func (h *AnalysisHandler) AskQuestion(c *gin.Context) {
	id, ok := parseID(c, "Invalid analysis ID format")
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		respondError(c, http.StatusBadRequest, "MISSING_QUESTION", "question is required")
		return
	}

	answer, err := h.contracts.AskAboutAnalysis(c.Request.Context(), id, req.Question)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// Negotiate handles POST /api/analyses/:id/negotiate
func (h *AnalysisHandler) Negotiate(c *gin.Context) {
	id, ok := parseID(c, "Invalid analysis ID format")
	if !ok {
		return
	}

	advice, err := h.contracts.NegotiateAnalysis(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

// LegalExpertise handles POST /api/analyses/:id/legal
func (h *AnalysisHandler) LegalExpertise(c *gin.Context) {
	id, ok := parseID(c, "Invalid analysis ID format")
	if !ok {
		return
	}

	expertise, err := h.contracts.LegalAnalysis(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expertise": expertise})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *AnalysisHandler) GetJobStatus(c *gin.Context) {
	id, ok := parseID(c, "Invalid job ID format")
	if !ok {
		return
	}

	job, err := h.contracts.GetJobStatus(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	respondData(c, http.StatusOK, job)
}

func (h *AnalysisHandler) respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnalysisNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Analysis not found")
	case errors.Is(err, service.ErrJobNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Analysis job not found")
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
	}
}

// parseID reads the :id path parameter, answering 400 when it is not a UUID
func parseID(c *gin.Context, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", message)
		return uuid.Nil, false
	}
	return id, true
}
