package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"insight-profile/internal/domain"
	"insight-profile/internal/llm"
	"insight-profile/internal/metrics"
)

// Motivos por los que un analisis se reemplaza por el documento por defecto.
const (
	FallbackLLMError   = "llm_error"
	FallbackParseError = "parse_error"
)

var errEmptyAnalysis = errors.New("empty analysis response")

// AnalysisService usa el LLM para interpretar el arbol de insights de un perfil.
type AnalysisService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewAnalysisService(llmClient llm.LLMClient, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		llmClient: llmClient,
		logger:    logger,
	}
}

// AnalysisOutcome es el analisis producido y, si hubo degradacion, su motivo.
type AnalysisOutcome struct {
	Analysis       domain.ProfileAnalysis
	FallbackReason string
}

// Analyze nunca devuelve error: sin respuesta utilizable del LLM se usa el analisis por defecto.
// No reintenta.
func (s *AnalysisService) Analyze(ctx context.Context, tree domain.InsightTree) AnalysisOutcome {
	prompt := BuildAnalysisPrompt(tree)

	rawResp, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("analysis fallback: llm generate failed", zap.Error(err))
		metrics.AnalysisFallbacks.WithLabelValues(FallbackLLMError).Inc()
		return AnalysisOutcome{Analysis: FallbackProfileAnalysis(), FallbackReason: FallbackLLMError}
	}

	parsed, err := ParseProfileAnalysis(rawResp)
	if err != nil {
		s.logger.Warn("analysis fallback: unparseable llm response",
			zap.Error(err),
			zap.String("response_preview", truncateWithEllipsis(rawResp, 500)),
		)
		metrics.AnalysisFallbacks.WithLabelValues(FallbackParseError).Inc()
		return AnalysisOutcome{Analysis: FallbackProfileAnalysis(), FallbackReason: FallbackParseError}
	}
	return AnalysisOutcome{Analysis: parsed}
}

// ParseProfileAnalysis limpia fences, aisla el objeto JSON y completa los campos ausentes.
func ParseProfileAnalysis(raw string) (domain.ProfileAnalysis, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return domain.ProfileAnalysis{}, errEmptyAnalysis
	}
	if !json.Valid([]byte(cleaned)) {
		if obj := firstJSONObject(cleaned); obj != "" {
			cleaned = obj
		}
	}

	var parsed domain.ProfileAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return domain.ProfileAnalysis{}, fmt.Errorf("parse llm response: %w", err)
	}
	applyAnalysisDefaults(&parsed)
	return parsed, nil
}

// AnalysisFromRecord reconstruye el analisis guardado. Si el documento crudo falta o esta
// corrupto se arma desde los campos resumidos del registro.
func AnalysisFromRecord(rec domain.AnalysisRecord) domain.ProfileAnalysis {
	var a domain.ProfileAnalysis
	if len(rec.RawAnalysis) > 0 && json.Unmarshal(rec.RawAnalysis, &a) == nil {
		applyAnalysisDefaults(&a)
		return a
	}
	a = domain.ProfileAnalysis{
		ExecutiveSummary:      rec.SummaryText,
		ProfessionalStrengths: rec.Strengths,
		PotentialBlindSpots:   rec.Weaknesses,
	}
	applyAnalysisDefaults(&a)
	return a
}
