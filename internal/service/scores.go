package service

import (
	"strings"

	"insight-profile/internal/domain"
)

// ExtractBigFive obtiene los cinco rasgos derivados desde personality_analysis.big_five.
// Nunca falla: los rasgos sin dato utilizable quedan en el punto medio y se listan en degraded.
func ExtractBigFive(raw domain.Payload) (scores domain.BigFiveScores, degraded []string) {
	scores = domain.NeutralBigFive()
	bigFive := raw.Map("personality_analysis", "big_five")

	for _, trait := range domain.BigFiveTraits {
		v, ok := traitValue(bigFive, trait)
		if !ok {
			degraded = append(degraded, trait)
			continue
		}
		scores.Set(trait, NormalizeScore(v))
	}
	return scores, degraded
}

// traitValue acepta el rasgo en minuscula o capitalizado, como numero o como objeto
// con score, value o rating.
func traitValue(bigFive domain.Payload, trait string) (float64, bool) {
	v := bigFive.Get(trait)
	if v == nil {
		v = bigFive.Get(strings.ToUpper(trait[:1]) + trait[1:])
	}
	if v == nil {
		return 0, false
	}
	if f, ok := domain.AsFloat(v); ok {
		return f, true
	}
	obj := domain.AsPayload(v)
	for _, field := range []string{"score", "value", "rating"} {
		if f, ok := obj.Float(field); ok {
			return f, true
		}
	}
	return 0, false
}
