package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"insight-profile/internal/domain"
	"insight-profile/internal/identity"
	"insight-profile/internal/metrics"
	"insight-profile/internal/profiling"
	"insight-profile/internal/repository"
)

const (
	defaultCacheExpiry = 30 * 24 * time.Hour
	recentStatsWindow  = 7 * 24 * time.Hour
)

// InsightConfig agrupa los parametros del pipeline.
type InsightConfig struct {
	CacheExpiry     time.Duration
	ProcessingDelay time.Duration
	Model           string
}

// Sleeper bloquea durante d. Se inyecta para no esperar en tests.
type Sleeper func(ctx context.Context, d time.Duration) error

// InsightService decide, por clave canonica, si se responde desde el cache o se ejecuta
// el pipeline contra los proveedores.
type InsightService struct {
	profiles repository.ProfileRepository
	analyses repository.AnalysisRepository
	provider profiling.Provider
	analyzer *AnalysisService
	limiter  RefreshLimiter
	logger   *zap.Logger
	cfg      InsightConfig
	now      func() time.Time
	sleep    Sleeper
	inflight singleflight.Group
}

// InsightOption ajusta dependencias opcionales.
type InsightOption func(*InsightService)

// WithRefreshLimiter activa el presupuesto de refrescos forzados.
func WithRefreshLimiter(l RefreshLimiter) InsightOption {
	return func(s *InsightService) { s.limiter = l }
}

func WithClock(now func() time.Time) InsightOption {
	return func(s *InsightService) { s.now = now }
}

func WithSleeper(sleep Sleeper) InsightOption {
	return func(s *InsightService) { s.sleep = sleep }
}

func NewInsightService(
	profiles repository.ProfileRepository,
	analyses repository.AnalysisRepository,
	provider profiling.Provider,
	analyzer *AnalysisService,
	cfg InsightConfig,
	logger *zap.Logger,
	opts ...InsightOption,
) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheExpiry <= 0 {
		cfg.CacheExpiry = defaultCacheExpiry
	}
	s := &InsightService{
		profiles: profiles,
		analyses: analyses,
		provider: provider,
		analyzer: analyzer,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify evalua el estado del cache. profile y analysis son nil cuando no existen.
func Classify(profile *domain.ProfileRecord, analysis *domain.AnalysisRecord, force bool, expiry time.Duration, now time.Time) domain.CacheState {
	switch {
	case force:
		return domain.CacheForced
	case profile == nil:
		return domain.CacheMiss
	case now.Sub(profile.CreatedAt) > expiry:
		return domain.CacheStale
	case analysis == nil:
		return domain.CachePartial
	}
	return domain.CacheFreshHit
}

// Analyze normaliza la identidad y devuelve el reporte, desde el cache o ejecutando el pipeline.
// Requests concurrentes para la misma clave comparten una sola ejecucion, que no se cancela
// aunque el llamador abandone.
func (s *InsightService) Analyze(ctx context.Context, rawURL string, force bool) (domain.InsightReport, error) {
	key, err := identity.Normalize(rawURL)
	if err != nil {
		return domain.InsightReport{}, err
	}

	if force && s.limiter != nil && !s.limiter.Allow(key) {
		s.logger.Warn("force refresh throttled, evaluating cache normally", zap.String("canonical_key", key))
		metrics.ForceRefreshThrottled.Inc()
		force = false
	}

	detached := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(key+"|force="+strconv.FormatBool(force), func() (any, error) {
		return s.run(detached, key, force)
	})
	if shared {
		metrics.SharedRequests.Inc()
	}
	if err != nil {
		return domain.InsightReport{}, err
	}
	return v.(domain.InsightReport), nil
}

func (s *InsightService) run(ctx context.Context, key string, force bool) (domain.InsightReport, error) {
	now := s.now()
	log := s.logger.With(zap.String("canonical_key", key))

	profile := s.lookupProfile(ctx, log, key)
	var analysis *domain.AnalysisRecord
	if profile != nil && !force && now.Sub(profile.CreatedAt) <= s.cfg.CacheExpiry {
		analysis = s.lookupAnalysis(ctx, log, profile.ID)
	}

	state := Classify(profile, analysis, force, s.cfg.CacheExpiry, now)
	log = log.With(zap.String("cache_state", string(state)))
	log.Info("cache evaluated")
	metrics.CacheLookups.WithLabelValues(string(state)).Inc()
	defer func() {
		metrics.PipelineDuration.WithLabelValues(string(state)).Observe(s.now().Sub(now).Seconds())
	}()

	switch state {
	case domain.CacheFreshHit:
		return s.fromCache(log, *profile, *analysis, now), nil
	case domain.CachePartial:
		return s.analyzeStored(ctx, log, *profile, now), nil
	}
	return s.refresh(ctx, log, key, profile, state)
}

func (s *InsightService) lookupProfile(ctx context.Context, log *zap.Logger, key string) *domain.ProfileRecord {
	profile, err := s.profiles.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn("profile lookup failed, treating as miss", zap.Error(err))
		}
		return nil
	}
	return &profile
}

func (s *InsightService) lookupAnalysis(ctx context.Context, log *zap.Logger, profileID string) *domain.AnalysisRecord {
	analysis, err := s.analyses.LatestByProfileID(ctx, profileID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn("analysis lookup failed, treating as profile-only", zap.Error(err))
		}
		return nil
	}
	return &analysis
}

func (s *InsightService) fromCache(log *zap.Logger, profile domain.ProfileRecord, rec domain.AnalysisRecord, now time.Time) domain.InsightReport {
	return Compose(ReportInput{
		Analysis:   AnalysisFromRecord(rec),
		Insights:   ExtractInsights(profile.RawProfile, now),
		Scores:     s.storedScores(log, profile),
		Cached:     true,
		CachedAt:   profile.CreatedAt,
		CacheState: domain.CacheFreshHit,
		Model:      s.cfg.Model,
		Now:        now,
	})
}

// analyzeStored reutiliza el perfil guardado y solo genera el analisis.
func (s *InsightService) analyzeStored(ctx context.Context, log *zap.Logger, profile domain.ProfileRecord, now time.Time) domain.InsightReport {
	tree := ExtractInsights(profile.RawProfile, now)
	outcome := s.analyzer.Analyze(ctx, tree)
	s.saveAnalysis(ctx, log, profile.ID, outcome.Analysis, now)

	return Compose(ReportInput{
		Analysis:   outcome.Analysis,
		Insights:   tree,
		Scores:     s.storedScores(log, profile),
		Cached:     true,
		CachedAt:   profile.CreatedAt,
		CacheState: domain.CachePartial,
		Model:      s.cfg.Model,
		Now:        now,
	})
}

// refresh ejecuta el pipeline completo. Solo los pasos contra el proveedor de perfiles
// pueden fallar el request.
func (s *InsightService) refresh(ctx context.Context, log *zap.Logger, key string, existing *domain.ProfileRecord, state domain.CacheState) (domain.InsightReport, error) {
	userID, err := s.provider.CreateSubject(ctx, key)
	if err != nil {
		log.Warn("create subject failed", zap.Error(err))
		return domain.InsightReport{}, fmt.Errorf("create subject: %w", err)
	}

	log.Info("waiting for provider processing", zap.Duration("delay", s.cfg.ProcessingDelay))
	if err := s.sleep(ctx, s.cfg.ProcessingDelay); err != nil {
		return domain.InsightReport{}, err
	}

	raw, err := s.provider.FetchSubject(ctx, userID)
	if err != nil {
		log.Warn("fetch subject failed", zap.Error(err), zap.String("external_user_id", userID))
		return domain.InsightReport{}, fmt.Errorf("fetch subject: %w", err)
	}
	if raw == nil {
		raw = domain.Payload{}
	}

	scores, degraded := ExtractBigFive(raw)
	if len(degraded) > 0 {
		log.Warn("score extraction degraded, using neutral values", zap.Strings("traits", degraded))
	}

	fetchedAt := s.now()
	saved := s.saveProfile(ctx, log, domain.ProfileRecord{
		NormalizedKey:  key,
		ExternalUserID: userID,
		RawProfile:     raw,
		DerivedScores:  &scores,
		CreatedAt:      fetchedAt,
		UpdatedAt:      fetchedAt,
	}, existing)

	tree := ExtractInsights(raw, fetchedAt)
	outcome := s.analyzer.Analyze(ctx, tree)
	if saved != nil {
		s.saveAnalysis(ctx, log, saved.ID, outcome.Analysis, fetchedAt)
	}

	return Compose(ReportInput{
		Analysis:   outcome.Analysis,
		Insights:   tree,
		Scores:     scores,
		CacheState: state,
		Model:      s.cfg.Model,
		Now:        fetchedAt,
	}), nil
}

// saveProfile sobrescribe la fila existente o crea una nueva. Devuelve nil si no se pudo guardar.
func (s *InsightService) saveProfile(ctx context.Context, log *zap.Logger, rec domain.ProfileRecord, existing *domain.ProfileRecord) *domain.ProfileRecord {
	if existing != nil {
		rec.ID = existing.ID
		saved, err := s.profiles.Overwrite(ctx, rec)
		if err == nil {
			return &saved
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn("profile overwrite failed, response will not be cached", zap.Error(err))
			metrics.PersistenceFailures.WithLabelValues("overwrite_profile").Inc()
			return nil
		}
		log.Info("profile vanished before overwrite, inserting")
	}

	rec.ID = uuid.NewString()
	saved, created, err := s.profiles.Upsert(ctx, rec)
	if err != nil {
		log.Warn("profile upsert failed, response will not be cached", zap.Error(err))
		metrics.PersistenceFailures.WithLabelValues("upsert_profile").Inc()
		return nil
	}
	if !created {
		log.Info("profile already stored by a concurrent request", zap.String("profile_id", saved.ID))
	}
	return &saved
}

func (s *InsightService) saveAnalysis(ctx context.Context, log *zap.Logger, profileID string, a domain.ProfileAnalysis, at time.Time) {
	raw, err := json.Marshal(a)
	if err != nil {
		log.Warn("encode analysis failed", zap.Error(err))
		metrics.PersistenceFailures.WithLabelValues("insert_analysis").Inc()
		return
	}
	err = s.analyses.Create(ctx, domain.AnalysisRecord{
		ID:          uuid.NewString(),
		ProfileID:   profileID,
		SummaryText: a.Summary,
		Strengths:   a.Strengths,
		Weaknesses:  a.Weaknesses,
		RawAnalysis: raw,
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	if err != nil {
		log.Warn("analysis insert failed, response will not be cached", zap.Error(err), zap.String("profile_id", profileID))
		metrics.PersistenceFailures.WithLabelValues("insert_analysis").Inc()
	}
}

// storedScores devuelve los puntajes guardados o los recalcula desde el perfil crudo.
func (s *InsightService) storedScores(log *zap.Logger, profile domain.ProfileRecord) domain.BigFiveScores {
	if profile.DerivedScores != nil {
		return *profile.DerivedScores
	}
	scores, degraded := ExtractBigFive(profile.RawProfile)
	if len(degraded) > 0 {
		log.Warn("stored profile without derived scores, using neutral values", zap.Strings("traits", degraded))
	}
	return scores
}

// Exists informa si la clave esta en cache sin disparar el pipeline.
func (s *InsightService) Exists(ctx context.Context, rawURL string) (domain.ProfileStatus, error) {
	key, err := identity.Normalize(rawURL)
	if err != nil {
		return domain.ProfileStatus{}, err
	}
	profile, err := s.profiles.GetByKey(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ProfileStatus{NormalizedKey: key}, nil
	}
	if err != nil {
		return domain.ProfileStatus{}, err
	}
	return domain.ProfileStatus{Exists: true, NormalizedKey: key, Profile: &profile}, nil
}

// Invalidate borra la clave y, en cascada, sus analisis.
func (s *InsightService) Invalidate(ctx context.Context, rawURL string) (string, bool, error) {
	key, err := identity.Normalize(rawURL)
	if err != nil {
		return "", false, err
	}
	deleted, err := s.profiles.DeleteByKey(ctx, key)
	if err != nil {
		return key, false, err
	}
	if deleted {
		s.logger.Info("cache entry invalidated", zap.String("canonical_key", key))
	}
	return key, deleted, nil
}

// Stats resume el contenido del cache.
func (s *InsightService) Stats(ctx context.Context) (domain.CacheStats, error) {
	return s.profiles.Stats(ctx, s.now().Add(-recentStatsWindow))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
