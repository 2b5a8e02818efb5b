package service

import (
	"context"
	"errors"
	"strings"

	"contract-backend/llm"
	"contract-backend/logger"
	"contract-backend/models"
	"contract-backend/scoring"

	"github.com/sirupsen/logrus"
)

// AnalysisService runs one generation round trip per call: contract
// analysis, questions and advice. It keeps no state between calls.
type AnalysisService struct {
	generator       llm.Generator
	verifyCitations bool
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// WithGenerator sets the text generation backend
func WithGenerator(g llm.Generator) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.generator = g
	}
}

// WithCitationCheck enables logging of citations not found in the contract
func WithCitationCheck(enabled bool) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.verifyCitations = enabled
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeContract asks the model for red flags and standard clauses, then
// scores them. Expected failures come back as a result with Success false;
// the returned error is only set for empty input (ErrEmptyInput) or when ctx
// ends before the model answered.
func (s *AnalysisService) AnalyzeContract(ctx context.Context, contractText string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(contractText) == "" {
		return nil, ErrEmptyInput
	}
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	log := logger.Log.WithField("contract_length", len(contractText))
	log.Info("Analyzing contract")

	content, err := s.generator.Generate(ctx, analyzeSystemPrompt, analyzeUserPrompt(contractText), analyzeMaxTokens)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.WithError(err).Error("Generation backend call failed")
		return models.FailedResult(upstreamMessage(err)), nil
	}

	parsed, err := parseAnalysis(content)
	if err != nil {
		log.WithError(err).WithField("response_length", len(content)).Error("Failed to parse analysis response")
		return models.FailedResult(MsgMalformedResponse), nil
	}

	score, err := scoring.Score(parsed.RedFlags)
	if err != nil {
		// validateAnalysis already rejected unknown severities
		log.WithError(err).Error("Failed to score analysis")
		return models.FailedResult(MsgMalformedResponse), nil
	}

	if s.verifyCitations {
		s.checkCitations(log, contractText, parsed.RedFlags)
	}

	log.WithFields(logrus.Fields{
		"risk_score":       score,
		"red_flags":        len(parsed.RedFlags),
		"standard_clauses": len(parsed.StandardClauses),
	}).Info("Contract analyzed")

	return &models.AnalysisResult{
		Success:         true,
		RiskScore:       score,
		RedFlags:        parsed.RedFlags,
		StandardClauses: parsed.StandardClauses,
		Summary:         parsed.Resume,
	}, nil
}

func (s *AnalysisService) checkCitations(log *logrus.Entry, contractText string, flags []models.RedFlag) {
	for _, i := range unverifiedCitations(contractText, flags) {
		log.WithFields(logrus.Fields{
			"red_flag": flags[i].Title,
			"article":  flags[i].Article,
		}).Warn("Citation not found verbatim in contract text")
	}
}

// AskQuestion answers a question from the contract text alone. It always
// returns something displayable.
func (s *AnalysisService) AskQuestion(ctx context.Context, question, contractContext string) string {
	return s.complete(ctx, "ask", askSystemPrompt, askUserPrompt(question, contractContext), askMaxTokens)
}

// Negotiate returns negotiation advice for the given red flags
func (s *AnalysisService) Negotiate(ctx context.Context, contractText string, flags []models.RedFlag) string {
	return s.complete(ctx, "negotiate", negotiateSystemPrompt, negotiateUserPrompt(contractText, flags), negotiateMaxTokens)
}

// LegalExpertise returns a French contract law consultation for the contract
func (s *AnalysisService) LegalExpertise(ctx context.Context, contractText string, flags []models.RedFlag) string {
	return s.complete(ctx, "legal", legalSystemPrompt, legalUserPrompt(contractText, flags), legalMaxTokens)
}

// complete runs a free-text request, replacing any failure with MsgFallback
func (s *AnalysisService) complete(ctx context.Context, action, systemPrompt, userPrompt string, maxTokens int) string {
	log := logger.Log.WithField("action", action)
	if s.generator == nil {
		log.Error("Generator not set")
		return MsgFallback
	}

	answer, err := s.generator.Generate(ctx, systemPrompt, userPrompt, maxTokens)
	if err != nil {
		log.WithError(err).Error("Generation backend call failed")
		return MsgFallback
	}
	if strings.TrimSpace(answer) == "" {
		log.Warn("Generation backend returned an empty answer")
		return MsgFallback
	}
	return answer
}

// upstreamMessage picks the user-facing message for a generation failure
func upstreamMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, llm.ErrPaymentRequired):
		return MsgPaymentRequired
	default:
		return MsgUpstream
	}
}
