package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contract-backend/logger"
	"contract-backend/models"
	"contract-backend/repository"
	"contract-backend/scoring"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultRecentLimit  = 5
	maxRecentLimit      = 50
	failureWriteTimeout = 5 * time.Second
)

// AnalysisStore persists contract analyses
type AnalysisStore interface {
	Create(ctx context.Context, a *models.ContractAnalysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContractAnalysis, error)
	UpdateResult(ctx context.Context, id uuid.UUID, outcome models.AnalysisOutcome) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
	ListRecent(ctx context.Context, limit int) ([]*models.ContractAnalysis, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// JobStore persists analysis job progress
type JobStore interface {
	Create(ctx context.Context, job *models.AnalysisJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.JobSteps) error
	Complete(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// ContractService handles the persisted analysis workflow
type ContractService struct {
	analyses AnalysisStore
	jobs     JobStore
	files    *FileService
	analyzer *AnalysisService
	now      func() time.Time
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// WithAnalysisStore sets the analysis store
func WithAnalysisStore(store AnalysisStore) ContractServiceOption {
	return func(s *ContractService) {
		s.analyses = store
	}
}

// WithJobStore sets the job store
func WithJobStore(store JobStore) ContractServiceOption {
	return func(s *ContractService) {
		s.jobs = store
	}
}

// WithFileService enables analyses of uploaded plain-text documents
func WithFileService(files *FileService) ContractServiceOption {
	return func(s *ContractService) {
		s.files = files
	}
}

// WithAnalyzer sets the analysis service used by background jobs
func WithAnalyzer(analyzer *AnalysisService) ContractServiceOption {
	return func(s *ContractService) {
		s.analyzer = analyzer
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	s := &ContractService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ContractService) ready() error {
	switch {
	case s.analyses == nil:
		return errors.New("analysis store not set")
	case s.jobs == nil:
		return errors.New("job store not set")
	case s.analyzer == nil:
		return errors.New("analyzer not set")
	}
	return nil
}

// CreateAnalysisRequest represents a request to analyze a contract.
// Either ContractText or FileID must be set.
type CreateAnalysisRequest struct {
	Name         string
	FileName     string
	ContractText string
	FileID       *uuid.UUID
}

// CreateAnalysisResult represents the result of creating an analysis
type CreateAnalysisResult struct {
	Analysis *models.ContractAnalysis
	Job      *models.AnalysisJob
}

// CreateAnalysis stores a pending analysis with its job and returns
// immediately; ProcessAnalysis does the work.
func (s *ContractService) CreateAnalysis(ctx context.Context, req CreateAnalysisRequest) (*CreateAnalysisResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	text := req.ContractText
	fileName := req.FileName
	if strings.TrimSpace(text) == "" && req.FileID != nil {
		if s.files == nil {
			return nil, errors.New("file service not set")
		}
		file, content, err := s.files.ReadText(ctx, *req.FileID)
		if err != nil {
			return nil, err
		}
		text = content
		if fileName == "" {
			fileName = file.Filename
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	contractType := DetectContractType(text, fileName)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = ExtractContractName(fileName, contractType, s.now())
	}

	analysis := &models.ContractAnalysis{
		Name:            name,
		ContractType:    contractType,
		ContractText:    text,
		FileID:          req.FileID,
		RedFlags:        models.RedFlags{},
		StandardClauses: models.StandardClauses{},
		Status:          models.AnalysisStatusPending,
	}
	if err := s.analyses.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	job := &models.AnalysisJob{
		AnalysisID: analysis.ID,
		Status:     models.JobStatusPending,
		Steps:      models.NewJobSteps(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create analysis job: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"analysis_id":   analysis.ID,
		"job_id":        job.ID,
		"contract_type": contractType,
	}).Info("Analysis queued")

	return &CreateAnalysisResult{Analysis: analysis, Job: job}, nil
}

// ProcessAnalysis runs the analysis pipeline for a job. It is meant to run
// in its own goroutine; every failure is recorded on the job and the analysis.
func (s *ContractService) ProcessAnalysis(ctx context.Context, jobID uuid.UUID) error {
	if err := s.ready(); err != nil {
		return err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load analysis job: %w", err)
	}
	log := logger.Log.WithFields(logrus.Fields{"job_id": jobID, "analysis_id": job.AnalysisID})

	analysis, err := s.analyses.GetByID(ctx, job.AnalysisID)
	if err != nil {
		s.fail(ctx, log, job, "failed to load analysis: "+err.Error())
		return err
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	steps := job.Steps
	if len(steps) == 0 {
		steps = models.NewJobSteps()
	}

	// 1. Ask the model
	if err := s.setStep(ctx, jobID, steps, models.StepAnalyzeClauses, models.JobStatusInProgress); err != nil {
		s.fail(ctx, log, job, "failed to update step: "+err.Error())
		return err
	}
	result, err := s.analyzer.AnalyzeContract(ctx, analysis.ContractText)
	if err != nil {
		message := MsgUpstream
		if errors.Is(err, ErrEmptyInput) {
			message = MsgEmptyInput
		}
		s.fail(ctx, log.WithError(err), job, message)
		return err
	}
	if !result.Success {
		s.fail(ctx, log, job, result.Error)
		return errors.New(result.Error)
	}
	if err := s.setStep(ctx, jobID, steps, models.StepAnalyzeClauses, models.JobStatusCompleted); err != nil {
		s.fail(ctx, log, job, "failed to update step: "+err.Error())
		return err
	}

	// 2. Score and verdict
	if err := s.setStep(ctx, jobID, steps, models.StepComputeScore, models.JobStatusInProgress); err != nil {
		s.fail(ctx, log, job, "failed to update step: "+err.Error())
		return err
	}
	verdict, err := scoring.Classify(result.RiskScore)
	if err != nil {
		s.fail(ctx, log, job, MsgMalformedResponse)
		return err
	}
	if err := s.setStep(ctx, jobID, steps, models.StepComputeScore, models.JobStatusCompleted); err != nil {
		s.fail(ctx, log, job, "failed to update step: "+err.Error())
		return err
	}

	// 3. Store the result
	if err := s.setStep(ctx, jobID, steps, models.StepSaveResult, models.JobStatusInProgress); err != nil {
		s.fail(ctx, log, job, "failed to update step: "+err.Error())
		return err
	}
	outcome := models.AnalysisOutcome{
		RiskScore:       result.RiskScore,
		Verdict:         verdict,
		RedFlags:        result.RedFlags,
		StandardClauses: result.StandardClauses,
		Resume:          result.Summary,
	}
	if err := s.analyses.UpdateResult(ctx, analysis.ID, outcome); err != nil {
		s.fail(ctx, log, job, "failed to store analysis: "+err.Error())
		return err
	}
	if err := s.setStep(ctx, jobID, steps, models.StepSaveResult, models.JobStatusCompleted); err != nil {
		log.WithError(err).Warn("Failed to update final step")
	}

	if err := s.jobs.Complete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.WithFields(logrus.Fields{"risk_score": outcome.RiskScore, "verdict": outcome.Verdict}).Info("Analysis completed")
	return nil
}

// setStep updates one step in place and persists the list
func (s *ContractService) setStep(ctx context.Context, jobID uuid.UUID, steps models.JobSteps, name string, status models.JobStatus) error {
	for i := range steps {
		if steps[i].Name == name {
			steps[i].Status = status
			break
		}
	}
	return s.jobs.UpdateProgress(ctx, jobID, name, steps)
}

// fail marks both the job and its analysis as failed. The writes get their
// own deadline so that an expired processing context still leaves a final state.
func (s *ContractService) fail(ctx context.Context, log *logrus.Entry, job *models.AnalysisJob, message string) {
	log.WithField("reason", message).Error("Analysis failed")
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()
	if err := s.jobs.Fail(ctx, job.ID, message); err != nil {
		log.WithError(err).Error("Failed to mark job as failed")
	}
	if err := s.analyses.MarkFailed(ctx, job.AnalysisID, message); err != nil {
		log.WithError(err).Error("Failed to mark analysis as failed")
	}
}

// GetAnalysis retrieves an analysis by ID
func (s *ContractService) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.ContractAnalysis, error) {
	if s.analyses == nil {
		return nil, errors.New("analysis store not set")
	}
	analysis, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return analysis, nil
}

// ListAnalyses returns the most recent analyses, newest first.
// A non-positive limit means the default of 5.
func (s *ContractService) ListAnalyses(ctx context.Context, limit int) ([]*models.ContractAnalysis, error) {
	if s.analyses == nil {
		return nil, errors.New("analysis store not set")
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.analyses.ListRecent(ctx, limit)
}

// DeleteAnalysis removes an analysis and its jobs
func (s *ContractService) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	if s.analyses == nil {
		return errors.New("analysis store not set")
	}
	if err := s.analyses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}
	return nil
}

// GetJobStatus retrieves an analysis job with its progress
func (s *ContractService) GetJobStatus(ctx context.Context, jobID uuid.UUID) (*models.AnalysisJob, error) {
	if s.jobs == nil {
		return nil, errors.New("job store not set")
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	job.Progress = job.Steps.Progress()
	return job, nil
}

// AskAboutAnalysis answers a question about a stored contract
func (s *ContractService) AskAboutAnalysis(ctx context.Context, id uuid.UUID, question string) (string, error) {
	if s.analyzer == nil {
		return "", errors.New("analyzer not set")
	}
	analysis, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return "", err
	}
	return s.analyzer.AskQuestion(ctx, question, analysis.ContractText), nil
}

// NegotiateAnalysis returns negotiation advice for a stored contract
func (s *ContractService) NegotiateAnalysis(ctx context.Context, id uuid.UUID) (string, error) {
	if s.analyzer == nil {
		return "", errors.New("analyzer not set")
	}
	analysis, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return "", err
	}
	return s.analyzer.Negotiate(ctx, analysis.ContractText, analysis.RedFlags), nil
}

// LegalAnalysis returns a legal consultation for a stored contract
func (s *ContractService) LegalAnalysis(ctx context.Context, id uuid.UUID) (string, error) {
	if s.analyzer == nil {
		return "", errors.New("analyzer not set")
	}
	analysis, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return "", err
	}
	return s.analyzer.LegalExpertise(ctx, analysis.ContractText, analysis.RedFlags), nil
}
