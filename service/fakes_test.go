package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"contract-backend/llm"
	"contract-backend/models"
	"contract-backend/repository"

	"github.com/google/uuid"
)

// recordingGenerator returns a canned answer and remembers its calls
type recordingGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  []generateCall
}

type generateCall struct {
	systemPrompt string
	userPrompt   string
	maxTokens    int
}

func (g *recordingGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, generateCall{systemPrompt, userPrompt, maxTokens})
	return g.answer, g.err
}

func (g *recordingGenerator) lastCall() generateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

var _ llm.Generator = (*recordingGenerator)(nil)

type memoryAnalysisStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.ContractAnalysis
	clock time.Time
}

func newMemoryAnalysisStore() *memoryAnalysisStore {
	return &memoryAnalysisStore{
		items: make(map[uuid.UUID]*models.ContractAnalysis),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryAnalysisStore) Create(ctx context.Context, a *models.ContractAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	a.ID = uuid.New()
	a.CreatedAt = m.clock
	a.UpdatedAt = m.clock
	stored := *a
	m.items[a.ID] = &stored
	return nil
}

func (m *memoryAnalysisStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ContractAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memoryAnalysisStore) UpdateResult(ctx context.Context, id uuid.UUID, outcome models.AnalysisOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	score, verdict, resume := outcome.RiskScore, outcome.Verdict, outcome.Resume
	a.RiskScore = &score
	a.Verdict = &verdict
	a.RedFlags = outcome.RedFlags
	a.StandardClauses = outcome.StandardClauses
	a.Resume = &resume
	a.Status = models.AnalysisStatusAnalyzed
	a.ErrorMessage = nil
	return nil
}

func (m *memoryAnalysisStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = models.AnalysisStatusFailed
	a.ErrorMessage = &errorMessage
	return nil
}

func (m *memoryAnalysisStore) ListRecent(ctx context.Context, limit int) ([]*models.ContractAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ContractAnalysis, 0, len(m.items))
	for _, a := range m.items {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAnalysisStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memoryJobStore struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*models.AnalysisJob
	history []string
}

func newMemoryJobStore() *memoryJobStore {
	return &memoryJobStore{items: make(map[uuid.UUID]*models.AnalysisJob)}
}

func (m *memoryJobStore) Create(ctx context.Context, job *models.AnalysisJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = uuid.New()
	stored := *job
	stored.Steps = append(models.JobSteps(nil), job.Steps...)
	m.items[job.ID] = &stored
	return nil
}

func (m *memoryJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *job
	copied.Steps = append(models.JobSteps(nil), job.Steps...)
	return &copied, nil
}

func (m *memoryJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Status = status
	return nil
}

func (m *memoryJobStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.JobSteps) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.items[id]
	job.CurrentStep = &currentStep
	job.Steps = append(models.JobSteps(nil), steps...)
	for _, st := range steps {
		if st.Name == currentStep {
			m.history = append(m.history, currentStep+":"+string(st.Status))
		}
	}
	return nil
}

func (m *memoryJobStore) Complete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.items[id].Status = models.JobStatusCompleted
	m.items[id].CompletedAt = &now
	return nil
}

func (m *memoryJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Status = models.JobStatusFailed
	m.items[id].ErrorMessage = &errorMessage
	return nil
}

type memoryFileStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.File
	err   error
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{items: make(map[uuid.UUID]*models.File)}
}

func (m *memoryFileStore) Create(ctx context.Context, file *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	file.CreatedAt = time.Now()
	stored := *file
	m.items[file.ID] = &stored
	return nil
}

func (m *memoryFileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *memoryFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

var errRateLimitedUpstream = llm.NewUpstreamError(429, "quota per minute")
