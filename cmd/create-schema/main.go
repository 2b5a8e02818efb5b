package main

import (
	"context"

	"contract-backend/config"
	"contract-backend/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

var statements = []struct {
	name string
	sql  string
}{
	{"pgcrypto extension", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	{"contract_files table", `
CREATE TABLE IF NOT EXISTS contract_files (
    id UUID PRIMARY KEY,
    filename TEXT NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    size BIGINT NOT NULL CHECK (size >= 0),
    storage_path TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"contract_analyses table", `
CREATE TABLE IF NOT EXISTS contract_analyses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name TEXT NOT NULL,
    contract_type VARCHAR(50) NOT NULL DEFAULT 'Contrat',
    contract_text TEXT NOT NULL,
    file_id UUID REFERENCES contract_files(id) ON DELETE SET NULL,
    risk_score INTEGER CHECK (risk_score BETWEEN 0 AND 100),
    verdict VARCHAR(20) CHECK (verdict IN ('SIGNER', 'NÉGOCIER', 'REFUSER')),
    red_flags JSONB NOT NULL DEFAULT '[]'::jsonb,
    standard_clauses JSONB NOT NULL DEFAULT '[]'::jsonb,
    resume TEXT,
    status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'analyzed', 'failed')),
    error_message TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"contract_analyses index", `CREATE INDEX IF NOT EXISTS idx_contract_analyses_created_at ON contract_analyses (created_at DESC)`},
	{"analysis_jobs table", `
CREATE TABLE IF NOT EXISTS analysis_jobs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    analysis_id UUID NOT NULL REFERENCES contract_analyses(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed', 'failed')),
    current_step TEXT,
    steps JSONB NOT NULL DEFAULT '[]'::jsonb,
    error_message TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMPTZ
)`},
	{"analysis_jobs index", `CREATE INDEX IF NOT EXISTS idx_analysis_jobs_analysis_id ON analysis_jobs (analysis_id)`},
}

func main() {
	log := logger.Log

	connString, err := config.DatabaseURL()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			log.Fatalf("Failed to create %s: %v", stmt.name, err)
		}
		log.Infof("✓ %s ready", stmt.name)
	}

	log.Info("✓ Schema created successfully")
}
