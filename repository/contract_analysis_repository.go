package repository

import (
	"context"

	"contract-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContractAnalysisRepository handles database operations for contract analyses
type ContractAnalysisRepository struct {
	db *pgxpool.Pool
}

// NewContractAnalysisRepository creates a new contract analysis repository
func NewContractAnalysisRepository(db *pgxpool.Pool) *ContractAnalysisRepository {
	return &ContractAnalysisRepository{db: db}
}

const analysisColumns = `
	id, name, contract_type, contract_text, file_id, risk_score, verdict,
	red_flags, standard_clauses, resume, status, error_message,
	created_at, updated_at`

func scanAnalysis(row pgx.Row) (*models.ContractAnalysis, error) {
	a := &models.ContractAnalysis{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.ContractType,
		&a.ContractText,
		&a.FileID,
		&a.RiskScore,
		&a.Verdict,
		&a.RedFlags,
		&a.StandardClauses,
		&a.Resume,
		&a.Status,
		&a.ErrorMessage,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.RedFlags == nil {
		a.RedFlags = make(models.RedFlags, 0)
	}
	if a.StandardClauses == nil {
		a.StandardClauses = make(models.StandardClauses, 0)
	}
	return a, nil
}

// Create inserts a pending analysis
func (r *ContractAnalysisRepository) Create(ctx context.Context, a *models.ContractAnalysis) error {
	query := `
		INSERT INTO contract_analyses (
			name, contract_type, contract_text, file_id, status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		a.Name,
		a.ContractType,
		a.ContractText,
		a.FileID,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an analysis by ID
func (r *ContractAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContractAnalysis, error) {
	query := `SELECT` + analysisColumns + `
		FROM contract_analyses
		WHERE id = $1`

	a, err := scanAnalysis(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return a, nil
}

// UpdateResult stores a successful analysis and marks it analyzed
func (r *ContractAnalysisRepository) UpdateResult(ctx context.Context, id uuid.UUID, outcome models.AnalysisOutcome) error {
	query := `
		UPDATE contract_analyses SET
			risk_score = $2,
			verdict = $3,
			red_flags = $4,
			standard_clauses = $5,
			resume = $6,
			status = $7,
			error_message = NULL,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(
		ctx, query, id,
		outcome.RiskScore,
		outcome.Verdict,
		outcome.RedFlags,
		outcome.StandardClauses,
		outcome.Resume,
		models.AnalysisStatusAnalyzed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed records why an analysis could not be completed
func (r *ContractAnalysisRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE contract_analyses SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, models.AnalysisStatusFailed, errorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the newest analyses first
func (r *ContractAnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*models.ContractAnalysis, error) {
	query := `SELECT` + analysisColumns + `
		FROM contract_analyses
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := make([]*models.ContractAnalysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

// Delete removes an analysis; its jobs go with it through ON DELETE CASCADE
func (r *ContractAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contract_analyses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
