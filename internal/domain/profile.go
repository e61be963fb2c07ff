package domain

import (
	"encoding/json"
	"time"
)

// ProfileRecord es el perfil cacheado de un sujeto, uno por clave canonica.
type ProfileRecord struct {
	ID             string         `json:"id"`
	NormalizedKey  string         `json:"normalized_key"`
	ExternalUserID string         `json:"external_user_id"`
	RawProfile     Payload        `json:"raw_profile"`
	DerivedScores  *BigFiveScores `json:"derived_scores,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AnalysisRecord guarda una salida del resumidor. La mas reciente es la vigente.
type AnalysisRecord struct {
	ID          string          `json:"id"`
	ProfileID   string          `json:"profile_id"`
	SummaryText string          `json:"summary_text"`
	Strengths   []string        `json:"strengths"`
	Weaknesses  []string        `json:"weaknesses"`
	RawAnalysis json.RawMessage `json:"raw_analysis,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BigFiveScores son los cinco rasgos derivados, cada uno en [0,100].
type BigFiveScores struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// NeutralScore es el valor por defecto de un rasgo sin dato.
const NeutralScore = 50.0

// NeutralBigFive devuelve los cinco rasgos en el punto medio.
func NeutralBigFive() BigFiveScores {
	return BigFiveScores{
		Openness:          NeutralScore,
		Conscientiousness: NeutralScore,
		Extraversion:      NeutralScore,
		Agreeableness:     NeutralScore,
		Neuroticism:       NeutralScore,
	}
}

// BigFiveTraits lista los rasgos en orden estable.
var BigFiveTraits = []string{"openness", "conscientiousness", "extraversion", "agreeableness", "neuroticism"}

// Set asigna un rasgo por nombre; devuelve false si el nombre no existe.
func (s *BigFiveScores) Set(trait string, v float64) bool {
	switch trait {
	case "openness":
		s.Openness = v
	case "conscientiousness":
		s.Conscientiousness = v
	case "extraversion":
		s.Extraversion = v
	case "agreeableness":
		s.Agreeableness = v
	case "neuroticism":
		s.Neuroticism = v
	default:
		return false
	}
	return true
}

// CacheStats resume el contenido del cache.
type CacheStats struct {
	TotalProfiles  int64 `json:"total_profiles"`
	TotalAnalyses  int64 `json:"total_analyses"`
	RecentProfiles int64 `json:"recent_profiles_7d"`
}

// ProfileKey es el par minimo usado al renormalizar claves.
type ProfileKey struct {
	ID            string
	NormalizedKey string
}
