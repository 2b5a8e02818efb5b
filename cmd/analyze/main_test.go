package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"contract-backend/llm"
	"contract-backend/logger"
	"contract-backend/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedService(answer string) *service.AnalysisService {
	gen := llm.GeneratorFunc(func(ctx context.Context, _, _ string, _ int) (string, error) {
		return answer, nil
	})
	return service.NewAnalysisService(service.WithGenerator(gen))
}

func TestRunAnalyze(t *testing.T) {
	logger.Log.SetOutput(io.Discard)

	svc := fixedService(`{"redFlags":[],"standardClauses":[],"resume":"RAS"}`)
	var out bytes.Buffer
	code := run(context.Background(), svc, "analyze", "", "Article 1 - Objet", &out)
	assert.Equal(t, 0, code)
	assert.JSONEq(t, `{"success":true,"riskScore":0,"redFlags":[],"standardClauses":[],"resume":"RAS"}`, out.String())
}

func TestRunExitCodes(t *testing.T) {
	logger.Log.SetOutput(io.Discard)
	svc := fixedService("pas du JSON")

	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), svc, "analyze", "", "Article 1", &out))
	var failed map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &failed))
	assert.Equal(t, false, failed["success"])

	assert.Equal(t, 2, run(context.Background(), svc, "analyze", "", " ", &out))
	assert.Equal(t, 2, run(context.Background(), svc, "ask", "", "Article 1", &out))
	assert.Equal(t, 2, run(context.Background(), svc, "resume", "", "Article 1", &out))
}

func TestRunAsk(t *testing.T) {
	logger.Log.SetOutput(io.Discard)

	var out bytes.Buffer
	code := run(context.Background(), fixedService("Trois mois."), "ask", "Préavis ?", "Article 1", &out)
	assert.Equal(t, 0, code)
	assert.JSONEq(t, `{"answer":"Trois mois."}`, out.String())
}
