package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of an analysis job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Step names, in pipeline order
const (
	StepAnalyzeClauses = "Analyse des clauses"
	StepComputeScore   = "Calcul du score"
	StepSaveResult     = "Enregistrement"
)

// JobStep represents a step of the analysis pipeline
type JobStep struct {
	Name   string    `json:"name"`
	Status JobStatus `json:"status"`
}

// JobSteps represents the ordered list of steps
type JobSteps []JobStep

// NewJobSteps returns the pipeline steps, all pending
func NewJobSteps() JobSteps {
	return JobSteps{
		{Name: StepAnalyzeClauses, Status: JobStatusPending},
		{Name: StepComputeScore, Status: JobStatusPending},
		{Name: StepSaveResult, Status: JobStatusPending},
	}
}

// Progress returns the share of completed steps as a percentage
func (s JobSteps) Progress() int {
	if len(s) == 0 {
		return 0
	}
	done := 0
	for _, step := range s {
		if step.Status == JobStatusCompleted {
			done++
		}
	}
	return done * 100 / len(s)
}

// Value implements driver.Valuer for JSONB
func (s JobSteps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *JobSteps) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok {
		*s = make(JobSteps, 0)
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// AnalysisJob tracks the progress of one background analysis
type AnalysisJob struct {
	ID           uuid.UUID  `json:"id"`
	AnalysisID   uuid.UUID  `json:"analysis_id"`
	Status       JobStatus  `json:"status"`
	CurrentStep  *string    `json:"current_step,omitempty"`
	Steps        JobSteps   `json:"steps"`
	Progress     int        `json:"progress"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
