package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus represents the lifecycle of a persisted analysis
type AnalysisStatus string

const (
	AnalysisStatusPending  AnalysisStatus = "pending"
	AnalysisStatusAnalyzed AnalysisStatus = "analyzed"
	AnalysisStatusFailed   AnalysisStatus = "failed"
)

// RedFlags is the JSONB column holding the detected red flags
type RedFlags []RedFlag

// Value implements driver.Valuer for JSONB
func (f RedFlags) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *RedFlags) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok {
		*f = make(RedFlags, 0)
		return nil
	}
	return json.Unmarshal(bytes, f)
}

// StandardClauses is the JSONB column holding the conforming clauses
type StandardClauses []StandardClause

// Value implements driver.Valuer for JSONB
func (c StandardClauses) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *StandardClauses) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok {
		*c = make(StandardClauses, 0)
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// jsonbBytes handles the different types pgx might return for JSONB.
// ok is false for NULL and empty values.
func jsonbBytes(value interface{}) ([]byte, bool) {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil, false
	}
	if len(bytes) == 0 {
		return nil, false
	}
	return bytes, true
}

// ContractAnalysis is a persisted contract analysis
type ContractAnalysis struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	ContractType    string          `json:"contract_type"`
	ContractText    string          `json:"contract_text"`
	FileID          *uuid.UUID      `json:"file_id,omitempty"`
	RiskScore       *int            `json:"risk_score"`
	Verdict         *Verdict        `json:"verdict"`
	RedFlags        RedFlags        `json:"red_flags"`
	StandardClauses StandardClauses `json:"standard_clauses"`
	Resume          *string         `json:"resume"`
	Status          AnalysisStatus  `json:"status"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AnalysisOutcome is what gets written back once an analysis succeeded
type AnalysisOutcome struct {
	RiskScore       int
	Verdict         Verdict
	RedFlags        RedFlags
	StandardClauses StandardClauses
	Resume          string
}
