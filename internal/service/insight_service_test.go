package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"insight-profile/internal/domain"
	"insight-profile/internal/identity"
	"insight-profile/internal/llm"
	"insight-profile/internal/profiling"
	"insight-profile/internal/upstream"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

const janeKey = "linkedin.com/in/janedoe"

// memStore simula profiles + profile_analyses con borrado en cascada.
type memStore struct {
	mu        sync.Mutex
	profiles  map[string]domain.ProfileRecord
	analyses  []domain.AnalysisRecord
	getErr    error
	upsertErr error
	createErr error

	upserts    int
	overwrites int
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[string]domain.ProfileRecord)}
}

func (m *memStore) GetByKey(ctx context.Context, key string) (domain.ProfileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.ProfileRecord{}, m.getErr
	}
	p, ok := m.profiles[key]
	if !ok {
		return domain.ProfileRecord{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *memStore) Upsert(ctx context.Context, profile domain.ProfileRecord) (domain.ProfileRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return domain.ProfileRecord{}, false, m.upsertErr
	}
	if existing, ok := m.profiles[profile.NormalizedKey]; ok {
		return existing, false, nil
	}
	m.profiles[profile.NormalizedKey] = profile
	return profile, true, nil
}

func (m *memStore) Overwrite(ctx context.Context, profile domain.ProfileRecord) (domain.ProfileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overwrites++
	existing, ok := m.profiles[profile.NormalizedKey]
	if !ok {
		return domain.ProfileRecord{}, pgx.ErrNoRows
	}
	profile.ID = existing.ID
	m.profiles[profile.NormalizedKey] = profile
	return profile, nil
}

func (m *memStore) DeleteByKey(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[key]
	if !ok {
		return false, nil
	}
	delete(m.profiles, key)
	kept := m.analyses[:0]
	for _, a := range m.analyses {
		if a.ProfileID != p.ID {
			kept = append(kept, a)
		}
	}
	m.analyses = kept
	return true, nil
}

func (m *memStore) Stats(ctx context.Context, since time.Time) (domain.CacheStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := domain.CacheStats{TotalProfiles: int64(len(m.profiles)), TotalAnalyses: int64(len(m.analyses))}
	for _, p := range m.profiles {
		if !p.CreatedAt.Before(since) {
			stats.RecentProfiles++
		}
	}
	return stats, nil
}

func (m *memStore) ListKeys(ctx context.Context) ([]domain.ProfileKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]domain.ProfileKey, 0, len(m.profiles))
	for k, p := range m.profiles {
		keys = append(keys, domain.ProfileKey{ID: p.ID, NormalizedKey: k})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })
	return keys, nil
}

func (m *memStore) UpdateKey(ctx context.Context, id, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, p := range m.profiles {
		if p.ID == id {
			delete(m.profiles, k)
			p.NormalizedKey = key
			m.profiles[key] = p
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memStore) Create(ctx context.Context, analysis domain.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.analyses = append(m.analyses, analysis)
	return nil
}

func (m *memStore) LatestByProfileID(ctx context.Context, profileID string) (domain.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.analyses) - 1; i >= 0; i-- {
		if m.analyses[i].ProfileID == profileID {
			return m.analyses[i], nil
		}
	}
	return domain.AnalysisRecord{}, pgx.ErrNoRows
}

func (m *memStore) analysisCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.analyses)
}

func (m *memStore) seedProfile(createdAt time.Time) domain.ProfileRecord {
	scores := domain.NeutralBigFive()
	p := domain.ProfileRecord{
		ID:             "p-1",
		NormalizedKey:  janeKey,
		ExternalUserID: "ext-old",
		RawProfile:     domain.Payload{"display_name": "Jane Doe"},
		DerivedScores:  &scores,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	m.profiles[janeKey] = p
	return p
}

func (m *memStore) seedAnalysis(profileID string) {
	m.analyses = append(m.analyses, domain.AnalysisRecord{
		ID:          "a-1",
		ProfileID:   profileID,
		SummaryText: "Stored summary",
		Strengths:   []string{"Stored strength"},
		RawAnalysis: []byte(`{"executive_summary": "Stored summary"}`),
		CreatedAt:   fixedNow,
	})
}

type serviceFixture struct {
	store    *memStore
	provider *profiling.MockProvider
	llm      *llm.MockClient
	svc      *InsightService
	slept    []time.Duration
}

func newServiceFixture(opts ...InsightOption) *serviceFixture {
	f := &serviceFixture{
		store: newMemStore(),
		provider: &profiling.MockProvider{
			UserID: "ext-123",
			Profile: domain.Payload{
				"display_name": "Jane Doe",
				"personality_analysis": map[string]any{
					"big_five": map[string]any{"openness": 0.8, "conscientiousness": 85.0},
				},
			},
		},
		llm: &llm.MockClient{Response: completeAnalysisJSON},
	}
	base := []InsightOption{
		WithClock(func() time.Time { return fixedNow }),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			f.slept = append(f.slept, d)
			return nil
		}),
	}
	f.svc = NewInsightService(
		f.store,
		f.store,
		f.provider,
		NewAnalysisService(f.llm, zap.NewNop()),
		InsightConfig{CacheExpiry: 30 * 24 * time.Hour, ProcessingDelay: 35 * time.Second, Model: "test-model"},
		zap.NewNop(),
		append(base, opts...)...,
	)
	return f
}

func TestClassify(t *testing.T) {
	expiry := 30 * 24 * time.Hour
	fresh := &domain.ProfileRecord{CreatedAt: fixedNow.Add(-time.Hour)}
	old := &domain.ProfileRecord{CreatedAt: fixedNow.Add(-31 * 24 * time.Hour)}
	edge := &domain.ProfileRecord{CreatedAt: fixedNow.Add(-expiry)}
	analysis := &domain.AnalysisRecord{}

	tests := []struct {
		name     string
		profile  *domain.ProfileRecord
		analysis *domain.AnalysisRecord
		force    bool
		want     domain.CacheState
	}{
		{"miss", nil, nil, false, domain.CacheMiss},
		{"fresh hit", fresh, analysis, false, domain.CacheFreshHit},
		{"expiry boundary is still fresh", edge, analysis, false, domain.CacheFreshHit},
		{"stale", old, analysis, false, domain.CacheStale},
		{"partial", fresh, nil, false, domain.CachePartial},
		{"forced over fresh hit", fresh, analysis, true, domain.CacheForced},
		{"forced over miss", nil, nil, true, domain.CacheForced},
	}
	for _, tt := range tests {
		if got := Classify(tt.profile, tt.analysis, tt.force, expiry, fixedNow); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAnalyzeFreshHitSkipsProviders(t *testing.T) {
	f := newServiceFixture()
	p := f.store.seedProfile(fixedNow)
	f.store.seedAnalysis(p.ID)

	report, err := f.svc.Analyze(context.Background(), "https://www.linkedin.com/in/janedoe/", false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !report.Metadata.Cached || report.Metadata.CacheState != domain.CacheFreshHit {
		t.Fatalf("expected cached fresh hit, got %+v", report.Metadata)
	}
	if report.Analysis.ExecutiveSummary != "Stored summary" {
		t.Fatalf("expected stored analysis, got %q", report.Analysis.ExecutiveSummary)
	}
	creates, fetches := f.provider.Calls()
	if creates != 0 || fetches != 0 || f.llm.Calls() != 0 {
		t.Fatalf("no provider may be called on a fresh hit")
	}
	if len(f.slept) != 0 {
		t.Fatalf("no delay expected on a fresh hit")
	}
}

func TestAnalyzeExpiredRunsFullPipelineAndOverwrites(t *testing.T) {
	f := newServiceFixture()
	p := f.store.seedProfile(fixedNow.Add(-31 * 24 * time.Hour))
	f.store.seedAnalysis(p.ID)

	report, err := f.svc.Analyze(context.Background(), "linkedin.com/in/janedoe", false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	creates, fetches := f.provider.Calls()
	if creates != 1 || fetches != 1 || f.llm.Calls() != 1 {
		t.Fatalf("expected both providers invoked, got creates=%d fetches=%d llm=%d", creates, fetches, f.llm.Calls())
	}
	if len(f.slept) != 1 || f.slept[0] != 35*time.Second {
		t.Fatalf("expected the processing delay once, got %v", f.slept)
	}
	if report.Metadata.Cached || report.Metadata.CacheState != domain.CacheStale {
		t.Fatalf("unexpected metadata %+v", report.Metadata)
	}

	stored := f.store.profiles[janeKey]
	if stored.ID != "p-1" || stored.ExternalUserID != "ext-123" || !stored.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected in place overwrite, got %+v", stored)
	}
	if f.store.overwrites != 1 || f.store.upserts != 0 {
		t.Fatalf("expected overwrite path, got overwrites=%d upserts=%d", f.store.overwrites, f.store.upserts)
	}
	if stored.DerivedScores.Openness != 80 || stored.DerivedScores.Conscientiousness != 85 {
		t.Fatalf("unexpected derived scores %+v", stored.DerivedScores)
	}
	if f.store.analysisCount() != 2 {
		t.Fatalf("analysis history must be kept, got %d", f.store.analysisCount())
	}
}

func TestAnalyzePartialOnlyRunsSummarizer(t *testing.T) {
	f := newServiceFixture()
	f.store.seedProfile(fixedNow.Add(-2 * 24 * time.Hour))

	report, err := f.svc.Analyze(context.Background(), "linkedin.com/in/janedoe", false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	creates, fetches := f.provider.Calls()
	if creates != 0 || fetches != 0 {
		t.Fatalf("profiling provider must not be invoked on a partial hit")
	}
	if f.llm.Calls() != 1 || f.store.analysisCount() != 1 {
		t.Fatalf("expected one summarizer call and one stored analysis")
	}
	if report.Metadata.CacheState != domain.CachePartial || report.Metadata.ProfileAgeDays != 2 {
		t.Fatalf("unexpected metadata %+v", report.Metadata)
	}
}

func TestAnalyzeMissPersistsProfileAndAnalysis(t *testing.T) {
	f := newServiceFixture()

	report, err := f.svc.Analyze(context.Background(), "LINKEDIN.COM/in/janedoe?x=1", false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(f.provider.CreateCalls) != 1 || f.provider.CreateCalls[0] != janeKey {
		t.Fatalf("create subject must receive the canonical key, got %v", f.provider.CreateCalls)
	}
	if len(f.provider.FetchCalls) != 1 || f.provider.FetchCalls[0] != "ext-123" {
		t.Fatalf("fetch subject must receive the provider id, got %v", f.provider.FetchCalls)
	}
	stored, ok := f.store.profiles[janeKey]
	if !ok || stored.ID == "" || f.store.upserts != 1 {
		t.Fatalf("expected profile to be inserted")
	}
	latest, err := f.store.LatestByProfileID(context.Background(), stored.ID)
	if err != nil || latest.SummaryText != "Jane is a decisive technical leader." {
		t.Fatalf("expected stored analysis, got %+v (%v)", latest, err)
	}
	if report.Metadata.Cached || report.RawScores.Openness != 80 {
		t.Fatalf("unexpected report %+v", report.Metadata)
	}

	// La segunda consulta ya es un hit.
	again, err := f.svc.Analyze(context.Background(), "https://linkedin.com/in/janedoe/", false)
	if err != nil || again.Metadata.CacheState != domain.CacheFreshHit {
		t.Fatalf("expected fresh hit on second request, got %+v (%v)", again.Metadata, err)
	}
}

func TestAnalyzeMissDatesReportAtFetchTime(t *testing.T) {
	clock := fixedNow
	f := newServiceFixture(
		WithClock(func() time.Time { return clock }),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			clock = clock.Add(31 * 24 * time.Hour)
			return nil
		}),
	)
	f.provider.Profile = sampleRawProfile()
	fetchedAt := fixedNow.Add(31 * 24 * time.Hour)

	report, err := f.svc.Analyze(context.Background(), "linkedin.com/in/janedoe", false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if stored := f.store.profiles[janeKey]; !stored.CreatedAt.Equal(fetchedAt) {
		t.Fatalf("expected snapshot dated at fetch time, got %v", stored.CreatedAt)
	}
	if !report.Metadata.GeneratedAt.Equal(fetchedAt) {
		t.Fatalf("report must share the snapshot time, got %v", report.Metadata.GeneratedAt)
	}
	role := report.ProfessionalProfile.CurrentRole
	if role == nil || role.TenureMonths == nil || *role.TenureMonths != 30 {
		t.Fatalf("tenure must be measured at fetch time, got %+v", role)
	}
}

func TestAnalyzeForcedRefetchesFreshEntry(t *testing.T) {
	f := newServiceFixture()
	p := f.store.seedProfile(fixedNow)
	f.store.seedAnalysis(p.ID)

	report, err := f.svc.Analyze(context.Background(), janeKey, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Metadata.CacheState != domain.CacheForced {
		t.Fatalf("expected forced state, got %q", report.Metadata.CacheState)
	}
	creates, fetches := f.provider.Calls()
	if creates != 1 || fetches != 1 || f.store.overwrites != 1 {
		t.Fatalf("forced refresh must refetch and overwrite")
	}
}

func TestAnalyzeForcedThrottledFallsBackToCache(t *testing.T) {
	f := newServiceFixture(WithRefreshLimiter(NewRefreshLimiter(time.Hour, 1)))
	p := f.store.seedProfile(fixedNow)
	f.store.seedAnalysis(p.ID)

	if _, err := f.svc.Analyze(context.Background(), janeKey, true); err != nil {
		t.Fatalf("first forced refresh: %v", err)
	}
	report, err := f.svc.Analyze(context.Background(), janeKey, true)
	if err != nil {
		t.Fatalf("throttled refresh must not fail: %v", err)
	}
	if report.Metadata.CacheState != domain.CacheFreshHit {
		t.Fatalf("throttled refresh must evaluate the cache normally, got %q", report.Metadata.CacheState)
	}
	if creates, _ := f.provider.Calls(); creates != 1 {
		t.Fatalf("expected one provider run, got %d", creates)
	}
}

func TestAnalyzeInvalidIdentity(t *testing.T) {
	f := newServiceFixture()
	for _, raw := range []string{"", "linkedin.com/", "notlinkedin.com/in/janedoe"} {
		if _, err := f.svc.Analyze(context.Background(), raw, false); !errors.Is(err, identity.ErrInvalidIdentity) {
			t.Fatalf("%q: expected invalid identity, got %v", raw, err)
		}
	}
	if creates, _ := f.provider.Calls(); creates != 0 {
		t.Fatalf("providers must not be called for invalid input")
	}
}

func TestAnalyzeUpstreamFailureAbortsWithoutPersisting(t *testing.T) {
	t.Run("create rejected", func(t *testing.T) {
		f := newServiceFixture()
		f.provider.CreateErr = upstream.Rejected(profiling.ProviderName, 401, "invalid api key")

		_, err := f.svc.Analyze(context.Background(), janeKey, false)
		if !errors.Is(err, upstream.ErrRejected) {
			t.Fatalf("expected rejected, got %v", err)
		}
		if ue, ok := upstream.As(err); !ok || ue.Message != "invalid api key" {
			t.Fatalf("provider message must be preserved, got %v", err)
		}
		if len(f.slept) != 0 || len(f.store.profiles) != 0 {
			t.Fatalf("nothing may run or persist after a failed create")
		}
	})

	t.Run("fetch timeout", func(t *testing.T) {
		f := newServiceFixture()
		f.provider.FetchErr = upstream.FromTransport(profiling.ProviderName, context.DeadlineExceeded)

		_, err := f.svc.Analyze(context.Background(), janeKey, false)
		if !errors.Is(err, upstream.ErrTimeout) || !errors.Is(err, upstream.ErrUnavailable) {
			t.Fatalf("expected timeout, got %v", err)
		}
		if len(f.store.profiles) != 0 || f.llm.Calls() != 0 {
			t.Fatalf("nothing may persist after a failed fetch")
		}
	})
}

func TestAnalyzePersistenceFailureIsNonFatal(t *testing.T) {
	f := newServiceFixture()
	f.store.upsertErr = errors.New("db down")

	report, err := f.svc.Analyze(context.Background(), janeKey, false)
	if err != nil {
		t.Fatalf("persistence failure must not fail the request: %v", err)
	}
	if report.Analysis.ExecutiveSummary == "" || f.store.analysisCount() != 0 {
		t.Fatalf("expected a returned report and nothing cached")
	}

	f = newServiceFixture()
	f.store.createErr = errors.New("db down")
	if _, err := f.svc.Analyze(context.Background(), janeKey, false); err != nil {
		t.Fatalf("analysis insert failure must not fail the request: %v", err)
	}
}

func TestAnalyzeLookupErrorTreatedAsMiss(t *testing.T) {
	f := newServiceFixture()
	f.store.getErr = errors.New("db down")
	report, err := f.svc.Analyze(context.Background(), janeKey, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Metadata.CacheState != domain.CacheMiss {
		t.Fatalf("expected miss, got %q", report.Metadata.CacheState)
	}
}

func TestAnalyzeUnparseableSummaryReturnsDefaults(t *testing.T) {
	f := newServiceFixture()
	f.llm.Response = "sorry, no JSON today"

	report, err := f.svc.Analyze(context.Background(), janeKey, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Analysis.ExecutiveSummary != FallbackProfileAnalysis().ExecutiveSummary {
		t.Fatalf("expected fallback analysis, got %q", report.Analysis.ExecutiveSummary)
	}
	if f.store.analysisCount() != 1 {
		t.Fatalf("fallback analysis must be persisted")
	}
}

func TestAnalyzeSharesInflightPipeline(t *testing.T) {
	f := newServiceFixture()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	f.svc.sleep = func(ctx context.Context, d time.Duration) error {
		entered <- struct{}{}
		<-release
		return nil
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[0] = f.svc.Analyze(context.Background(), janeKey, false)
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[1] = f.svc.Analyze(context.Background(), "https://www.linkedin.com/in/janedoe", false)
	}()
	// Damos tiempo al segundo request para unirse al vuelo en curso.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range results {
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if creates, fetches := f.provider.Calls(); creates != 1 || fetches != 1 {
		t.Fatalf("expected one shared pipeline, got creates=%d fetches=%d", creates, fetches)
	}
}

func TestExistsAndInvalidateCascade(t *testing.T) {
	f := newServiceFixture()
	p := f.store.seedProfile(fixedNow)
	f.store.seedAnalysis(p.ID)

	status, err := f.svc.Exists(context.Background(), "https://linkedin.com/in/janedoe/")
	if err != nil || !status.Exists || status.Profile.ID != "p-1" || status.NormalizedKey != janeKey {
		t.Fatalf("expected cached profile, got %+v (%v)", status, err)
	}

	key, deleted, err := f.svc.Invalidate(context.Background(), "www.linkedin.com/in/janedoe")
	if err != nil || !deleted || key != janeKey {
		t.Fatalf("expected deletion, got key=%q deleted=%v err=%v", key, deleted, err)
	}
	if f.store.analysisCount() != 0 {
		t.Fatalf("analyses must be deleted with their profile")
	}
	status, err = f.svc.Exists(context.Background(), janeKey)
	if err != nil || status.Exists {
		t.Fatalf("expected no cached profile after deletion, got %+v (%v)", status, err)
	}

	_, deleted, err = f.svc.Invalidate(context.Background(), janeKey)
	if err != nil || deleted {
		t.Fatalf("second deletion must report not found")
	}
	if _, _, err := f.svc.Invalidate(context.Background(), "example.com/in/x"); !errors.Is(err, identity.ErrInvalidIdentity) {
		t.Fatalf("expected invalid identity, got %v", err)
	}
}

func TestStatsUsesSevenDayWindow(t *testing.T) {
	f := newServiceFixture()
	f.store.seedProfile(fixedNow.Add(-8 * 24 * time.Hour))

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalProfiles != 1 || stats.RecentProfiles != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
