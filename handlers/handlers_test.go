package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"contract-backend/llm"
	"contract-backend/logger"
	"contract-backend/models"
	"contract-backend/repository"
	"contract-backend/service"
	"contract-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const analysisJSON = `{"redFlags":[{"type":"Pénalités disproportionnées","titre":"Pénalités de 30 %","description":"Sans plafond.","citation":"pénalité de 30 %","gravite":"élevée","article":"Article 4"}],"standardClauses":[{"titre":"Durée","description":"Un an."}],"resume":"Pénalités excessives."}`

const contractText = "Article 4 - En cas de retard, une pénalité de 30 % du montant total est due."

// scriptedGenerator answers analysis prompts with analysis and everything else with chat
type scriptedGenerator struct {
	mu       sync.Mutex
	analysis string
	chat     string
	err      error
	prompts  []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, userPrompt)
	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(systemPrompt, `"redFlags"`) {
		return g.analysis, nil
	}
	return g.chat, nil
}

func (g *scriptedGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompts[len(g.prompts)-1]
}

type analysisStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.ContractAnalysis
}

func (s *analysisStore) Create(ctx context.Context, a *models.ContractAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	copied := *a
	s.items[a.ID] = &copied
	return nil
}

func (s *analysisStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ContractAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *analysisStore) UpdateResult(ctx context.Context, id uuid.UUID, o models.AnalysisOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.items[id]
	a.RiskScore, a.Verdict, a.Resume = &o.RiskScore, &o.Verdict, &o.Resume
	a.RedFlags, a.StandardClauses = o.RedFlags, o.StandardClauses
	a.Status = models.AnalysisStatusAnalyzed
	return nil
}

func (s *analysisStore) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id].Status = models.AnalysisStatusFailed
	s.items[id].ErrorMessage = &msg
	return nil
}

func (s *analysisStore) ListRecent(ctx context.Context, limit int) ([]*models.ContractAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.ContractAnalysis, 0, len(s.items))
	for _, a := range s.items {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *analysisStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type jobStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.AnalysisJob
}

func (s *jobStore) Create(ctx context.Context, job *models.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.ID = uuid.New()
	copied := *job
	copied.Steps = append(models.JobSteps(nil), job.Steps...)
	s.items[job.ID] = &copied
	return nil
}

func (s *jobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *job
	copied.Steps = append(models.JobSteps(nil), job.Steps...)
	return &copied, nil
}

func (s *jobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id].Status = status
	return nil
}

func (s *jobStore) UpdateProgress(ctx context.Context, id uuid.UUID, step string, steps models.JobSteps) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id].CurrentStep = &step
	s.items[id].Steps = append(models.JobSteps(nil), steps...)
	return nil
}

func (s *jobStore) Complete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id].Status = models.JobStatusCompleted
	return nil
}

func (s *jobStore) Fail(ctx context.Context, id uuid.UUID, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id].Status = models.JobStatusFailed
	s.items[id].ErrorMessage = &msg
	return nil
}

type fileStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.File
}

func (s *fileStore) Create(ctx context.Context, f *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *f
	s.items[f.ID] = &copied
	return nil
}

func (s *fileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (s *fileStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func newTestRouter(t *testing.T, gen llm.Generator) *gin.Engine {
	t.Helper()

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	analysis := service.NewAnalysisService(service.WithGenerator(gen))
	files := service.NewFileService(
		service.WithFileStore(&fileStore{items: map[uuid.UUID]*models.File{}}),
		service.WithStorage(local),
		service.WithMaxFileSize(1024),
	)
	contracts := service.NewContractService(
		service.WithAnalysisStore(&analysisStore{items: map[uuid.UUID]*models.ContractAnalysis{}}),
		service.WithJobStore(&jobStore{items: map[uuid.UUID]*models.AnalysisJob{}}),
		service.WithFileService(files),
		service.WithAnalyzer(analysis),
	)

	return NewRouter(
		NewAnalyzeHandler(analysis),
		NewAnalysisHandler(contracts, time.Minute),
		NewFileHandler(files),
	)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope decodes {"success": true, "data": ...}
func envelope(t *testing.T, w *httptest.ResponseRecorder, data any) {
	t.Helper()
	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(body.Data, data))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{})
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
