package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"insight-profile/internal/identity"
	"insight-profile/internal/repository"
)

// KeyChange es una clave que se reescribio (o se reescribiria en dry-run).
type KeyChange struct {
	ProfileID string `json:"profile_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// KeySkip es una clave que no se pudo recanonicalizar.
type KeySkip struct {
	ProfileID string `json:"profile_id"`
	Key       string `json:"key"`
	Reason    string `json:"reason"`
}

type RenormalizeReport struct {
	Scanned   int         `json:"scanned"`
	Unchanged int         `json:"unchanged"`
	Changed   []KeyChange `json:"changed"`
	Skipped   []KeySkip   `json:"skipped"`
	DryRun    bool        `json:"dry_run"`
}

// KeyRenormalizer recanonicaliza las claves guardadas con las reglas actuales del normalizador.
type KeyRenormalizer struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func NewKeyRenormalizer(profiles repository.ProfileRepository, logger *zap.Logger) *KeyRenormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyRenormalizer{profiles: profiles, logger: logger}
}

// Run recorre todas las claves. Las que no parsean o chocarian con otra fila se informan y se omiten.
func (r *KeyRenormalizer) Run(ctx context.Context, dryRun bool) (RenormalizeReport, error) {
	keys, err := r.profiles.ListKeys(ctx)
	if err != nil {
		return RenormalizeReport{}, fmt.Errorf("list keys: %w", err)
	}

	owners := make(map[string]string, len(keys))
	for _, k := range keys {
		owners[k.NormalizedKey] = k.ID
	}

	report := RenormalizeReport{Scanned: len(keys), DryRun: dryRun}
	for _, k := range keys {
		canonical, err := identity.Normalize(k.NormalizedKey)
		if err != nil {
			report.Skipped = append(report.Skipped, KeySkip{ProfileID: k.ID, Key: k.NormalizedKey, Reason: identity.Reason(err)})
			r.logger.Warn("skipping unparseable key", zap.String("profile_id", k.ID), zap.String("key", k.NormalizedKey), zap.Error(err))
			continue
		}
		if canonical == k.NormalizedKey {
			report.Unchanged++
			continue
		}
		if owner, taken := owners[canonical]; taken && owner != k.ID {
			report.Skipped = append(report.Skipped, KeySkip{
				ProfileID: k.ID,
				Key:       k.NormalizedKey,
				Reason:    fmt.Sprintf("canonical key %s already used by profile %s", canonical, owner),
			})
			r.logger.Warn("skipping colliding key", zap.String("profile_id", k.ID), zap.String("canonical_key", canonical))
			continue
		}

		if !dryRun {
			if err := r.profiles.UpdateKey(ctx, k.ID, canonical); err != nil {
				return report, fmt.Errorf("update key for profile %s: %w", k.ID, err)
			}
		}
		delete(owners, k.NormalizedKey)
		owners[canonical] = k.ID
		report.Changed = append(report.Changed, KeyChange{ProfileID: k.ID, From: k.NormalizedKey, To: canonical})
		r.logger.Info("key renormalized", zap.String("profile_id", k.ID), zap.String("from", k.NormalizedKey), zap.String("to", canonical), zap.Bool("dry_run", dryRun))
	}
	return report, nil
}
