package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"insight-profile/internal/domain"
)

// AnalysisRepository guarda las salidas del resumidor; solo la ultima se lee.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis domain.AnalysisRecord) error
	LatestByProfileID(ctx context.Context, profileID string) (domain.AnalysisRecord, error)
}

type PgAnalysisRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnalysisRepository(pool *pgxpool.Pool) *PgAnalysisRepository {
	return &PgAnalysisRepository{pool: pool}
}

func (r *PgAnalysisRepository) Create(ctx context.Context, analysis domain.AnalysisRecord) error {
	strengths, err := json.Marshal(nonNil(analysis.Strengths))
	if err != nil {
		return fmt.Errorf("encode strengths: %w", err)
	}
	weaknesses, err := json.Marshal(nonNil(analysis.Weaknesses))
	if err != nil {
		return fmt.Errorf("encode weaknesses: %w", err)
	}
	var raw []byte
	if len(analysis.RawAnalysis) > 0 {
		raw = analysis.RawAnalysis
	}

	const query = `
		INSERT INTO profile_analyses (id, profile_id, summary_text, strengths, weaknesses, raw_analysis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		analysis.ID,
		analysis.ProfileID,
		analysis.SummaryText,
		strengths,
		weaknesses,
		raw,
		analysis.CreatedAt,
		analysis.UpdatedAt,
	)
	return err
}

func (r *PgAnalysisRepository) LatestByProfileID(ctx context.Context, profileID string) (domain.AnalysisRecord, error) {
	const query = `
		SELECT id, profile_id, summary_text, strengths, weaknesses, raw_analysis, created_at, updated_at
		FROM profile_analyses
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		analysis   domain.AnalysisRecord
		strengths  []byte
		weaknesses []byte
		raw        []byte
	)
	err := r.pool.QueryRow(ctx, query, profileID).Scan(
		&analysis.ID,
		&analysis.ProfileID,
		&analysis.SummaryText,
		&strengths,
		&weaknesses,
		&raw,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	)
	if err != nil {
		return domain.AnalysisRecord{}, err
	}
	_ = json.Unmarshal(strengths, &analysis.Strengths)
	_ = json.Unmarshal(weaknesses, &analysis.Weaknesses)
	if len(raw) > 0 {
		analysis.RawAnalysis = json.RawMessage(raw)
	}
	return analysis, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
