package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"insight-profile/internal/domain"
)

// ProfileRepository persiste perfiles cacheados por clave canonica.
type ProfileRepository interface {
	GetByKey(ctx context.Context, key string) (domain.ProfileRecord, error)
	// Upsert crea el perfil o, si la clave ya existe, devuelve el existente con created=false.
	Upsert(ctx context.Context, profile domain.ProfileRecord) (domain.ProfileRecord, bool, error)
	// Overwrite reemplaza el snapshot en sitio conservando el id. pgx.ErrNoRows si la fila no existe.
	Overwrite(ctx context.Context, profile domain.ProfileRecord) (domain.ProfileRecord, error)
	DeleteByKey(ctx context.Context, key string) (bool, error)
	Stats(ctx context.Context, since time.Time) (domain.CacheStats, error)
	ListKeys(ctx context.Context) ([]domain.ProfileKey, error)
	UpdateKey(ctx context.Context, id, key string) error
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

const profileColumns = `id, normalized_key, external_user_id, raw_profile, derived_scores, created_at, updated_at`

func (r *PgProfileRepository) GetByKey(ctx context.Context, key string) (domain.ProfileRecord, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE normalized_key = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, key))
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.ProfileRecord) (domain.ProfileRecord, bool, error) {
	raw, scores, err := encodeProfile(profile)
	if err != nil {
		return domain.ProfileRecord{}, false, err
	}

	query := `
		INSERT INTO profiles (id, normalized_key, external_user_id, raw_profile, derived_scores, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (normalized_key) DO NOTHING
		RETURNING ` + profileColumns
	created, err := scanProfile(r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.NormalizedKey,
		profile.ExternalUserID,
		raw,
		scores,
		profile.CreatedAt,
		profile.UpdatedAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ProfileRecord{}, false, err
	}

	// Conflicto de clave: otro request gano la carrera, se devuelve su fila.
	existing, err := r.GetByKey(ctx, profile.NormalizedKey)
	if err != nil {
		return domain.ProfileRecord{}, false, fmt.Errorf("read back conflicting profile: %w", err)
	}
	return existing, false, nil
}

func (r *PgProfileRepository) Overwrite(ctx context.Context, profile domain.ProfileRecord) (domain.ProfileRecord, error) {
	raw, scores, err := encodeProfile(profile)
	if err != nil {
		return domain.ProfileRecord{}, err
	}

	query := `
		UPDATE profiles
		SET external_user_id = $1, raw_profile = $2, derived_scores = $3, created_at = $4, updated_at = $5
		WHERE normalized_key = $6
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, query,
		profile.ExternalUserID,
		raw,
		scores,
		profile.CreatedAt,
		profile.UpdatedAt,
		profile.NormalizedKey,
	))
}

func (r *PgProfileRepository) DeleteByKey(ctx context.Context, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE normalized_key = $1`, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgProfileRepository) Stats(ctx context.Context, since time.Time) (domain.CacheStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM profile_analyses),
			(SELECT COUNT(*) FROM profiles WHERE created_at >= $1)
	`
	var stats domain.CacheStats
	err := r.pool.QueryRow(ctx, query, since).Scan(&stats.TotalProfiles, &stats.TotalAnalyses, &stats.RecentProfiles)
	return stats, err
}

func (r *PgProfileRepository) ListKeys(ctx context.Context) ([]domain.ProfileKey, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, normalized_key FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.ProfileKey
	for rows.Next() {
		var k domain.ProfileKey
		if err := rows.Scan(&k.ID, &k.NormalizedKey); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *PgProfileRepository) UpdateKey(ctx context.Context, id, key string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET normalized_key = $1, updated_at = NOW() WHERE id = $2`, key, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func encodeProfile(profile domain.ProfileRecord) ([]byte, []byte, error) {
	if profile.RawProfile == nil {
		return nil, nil, errors.New("profile without raw payload")
	}
	raw, err := json.Marshal(profile.RawProfile)
	if err != nil {
		return nil, nil, fmt.Errorf("encode raw profile: %w", err)
	}
	var scores []byte
	if profile.DerivedScores != nil {
		if scores, err = json.Marshal(profile.DerivedScores); err != nil {
			return nil, nil, fmt.Errorf("encode derived scores: %w", err)
		}
	}
	return raw, scores, nil
}

func scanProfile(row pgx.Row) (domain.ProfileRecord, error) {
	var (
		profile domain.ProfileRecord
		raw     []byte
		scores  []byte
	)
	err := row.Scan(
		&profile.ID,
		&profile.NormalizedKey,
		&profile.ExternalUserID,
		&raw,
		&scores,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return domain.ProfileRecord{}, err
	}
	profile.RawProfile = domain.DecodePayload(raw)
	if len(scores) > 0 {
		var s domain.BigFiveScores
		if err := json.Unmarshal(scores, &s); err == nil {
			profile.DerivedScores = &s
		}
	}
	return profile, nil
}
