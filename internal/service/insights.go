package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"insight-profile/internal/domain"
)

var oceanInterpretations = map[string]string{
	"openness":            "Receptive to new ideas and innovation, particularly in technical domains",
	"conscientiousness":   "Organized, disciplined, and reliable in execution",
	"extraversion":        "Energized by interaction, comfortable in leadership visibility",
	"agreeableness":       "Can collaborate but maintains high standards, not conflict-averse",
	"emotional_stability": "Resilient under pressure with measured emotional responses",
}

var discInterpretations = map[string]string{
	"dominance":       "Assertive, results-focused, comfortable with authority and challenge",
	"influence":       "Not relationship-focused, prefers substance over social persuasion",
	"steadiness":      "Balanced between consistency and adaptability",
	"calculativeness": "Highly analytical, data-driven, precision-oriented",
}

var archetypeDescriptions = map[string]string{
	"Sharpshooter": "Combines analytical rigor with decisive action. Perfectionists with bias for action. Hard taskmasters with little tolerance for mistakes.",
}

const (
	// defaultTraitScore se usa cuando el rasgo existe pero no trae puntaje.
	defaultTraitScore = 5.0
	maxWorkHistory    = 3
	maxRecentPosts    = 3
)

// ExtractInsights construye el arbol de insights a partir del perfil crudo.
// Nunca falla: cualquier campo ausente o mal formado queda con su valor por defecto.
func ExtractInsights(raw domain.Payload, now time.Time) domain.InsightTree {
	var tree domain.InsightTree

	tree.Identity = domain.Identity{
		Name:         raw.String("display_name"),
		FirstName:    raw.String("first_name"),
		LastName:     raw.String("last_name"),
		Location:     raw.String("location"),
		Timezone:     raw.String("timezone"),
		LinkedIn:     raw.String("user_name"),
		Headline:     raw.String("user_description"),
		ProfileImage: raw.String("user_profile_image"),
	}

	pa := raw.Map("personality_analysis")
	tree.Personality = domain.Personality{
		Ocean:     traitGroup(pa.Map("ocean_assessment"), domain.OceanTraits, oceanInterpretations),
		Disc:      traitGroup(pa.Map("disc_assessment"), domain.DiscFactors, discInterpretations),
		Archetype: extractArchetype(pa.Map("summary", "disc")),
	}

	tree.Professional = extractProfessional(raw, now)

	persona := raw.Map("persona")
	tree.CommunicationIntel = domain.CommunicationIntel{
		Email:   persona.Map("true", "email_personalization"),
		Calling: persona.Map("true", "cold_calling_advice"),
		General: persona.Map("true", "communication_advice"),
	}

	tree.SocialIntelligence = domain.SocialIntelligence{
		RecentPosts:     firstN(raw.Objects("social_activity", "linkedin"), maxRecentPosts),
		TopicsCareAbout: raw.Objects("external_signals", "topics_they_care_about"),
		Overview:        raw.String("external_signals", "overview"),
	}

	followers, _ := raw.Float("followers")
	tree.Demographics = domain.Demographics{
		AgeRange:  raw.Map("demographics", "age_range"),
		Followers: int64(followers),
	}

	if persona.Has("sales") {
		sales := persona.Map("sales")
		tree.Personas.Sales = &domain.SalesPersona{
			CommunicationAdvice:  sales.Map("communication_advice"),
			EmailPersonalization: sales.Map("email_personalization"),
			ColdCallingAdvice:    sales.Map("cold_calling_advice"),
			ProfileURL:           sales.String("profile_url"),
		}
	}
	if persona.Has("hiring") {
		hiring := persona.Map("hiring")
		tree.Personas.Hiring = &domain.HiringPersona{
			BehavioralFactors:    hiring.Map("behavioral_factors"),
			CommunicationAdvice:  hiring.Map("communication_advice"),
			EmailPersonalization: hiring.Map("email_personalization"),
			ProfileURL:           hiring.String("profile_url"),
		}
	}

	return tree
}

// traitGroup normaliza un grupo de rasgos. Los rasgos ausentes no se incluyen.
func traitGroup(src domain.Payload, names []string, interpretations map[string]string) map[string]domain.TraitInsight {
	out := make(map[string]domain.TraitInsight, len(names))
	for _, name := range names {
		data := src.Map(name)
		if len(data) == 0 {
			continue
		}
		score, ok := data.Float("score")
		if !ok {
			score = defaultTraitScore
		}
		out[name] = domain.TraitInsight{
			Score:          score,
			Level:          data.String("level"),
			Percentile:     Percentile(score),
			Interpretation: interpretations[name],
		}
	}
	return out
}

func extractArchetype(disc domain.Payload) domain.Archetype {
	name := disc.String("archetype")
	return domain.Archetype{
		Name:          name,
		Group:         disc.String("group"),
		Color:         disc.String("color"),
		PrimaryTraits: disc.Strings("description"),
		Labels:        disc.Strings("label"),
		Description:   archetypeDescriptions[name],
	}
}

func extractProfessional(raw domain.Payload, now time.Time) domain.Professional {
	history := raw.Objects("work_history")
	total := TotalExperienceYears(history, now)

	prof := domain.Professional{
		WorkHistory:          firstN(history, maxWorkHistory),
		Education:            raw.Objects("education"),
		Skills:               raw.Strings("skills"),
		TotalExperienceYears: total,
	}
	if len(history) > 0 {
		prof.CurrentRole = history[0]
	}

	pg := raw.Map("prographics")
	prof.Prographics = domain.Prographics{
		JobLevel:             pg.String("job_level"),
		EducationLevel:       pg.String("education_level"),
		SocialActivityStatus: pg.String("social_activity_status"),
		ExperienceInYears:    total,
	}
	if v, ok := pg.Float("experience_in_years"); ok && v != 0 {
		prof.Prographics.ExperienceInYears = &v
	}
	return prof
}

// NormalizeScore lleva un puntaje a [0,100]. Valores <= 1 se interpretan como fraccion.
func NormalizeScore(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v <= 1:
		return v * 100
	case v > 100:
		return 100
	}
	return v
}

// Percentile convierte un puntaje 0-1 o 0-10 en percentil, redondeado a un decimal.
func Percentile(score float64) float64 {
	var p float64
	switch {
	case score < 0:
		p = 0
	case score <= 1:
		p = score * 100
	case score <= 10:
		p = score * 10
	default:
		p = math.Min(score, 100)
	}
	return round1(p)
}

type yearMonth struct {
	year, month int
}

func (ym yearMonth) before(o yearMonth) bool {
	return ym.year < o.year || (ym.year == o.year && ym.month < o.month)
}

// ParseYearMonth interpreta "M-YYYY" o "YYYY-M" (tambien con "/"). Prueba mes-año primero.
func ParseYearMonth(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	if validYearMonth(b, a) {
		return b, a, true
	}
	if validYearMonth(a, b) {
		return a, b, true
	}
	return 0, 0, false
}

func validYearMonth(year, month int) bool {
	return month >= 1 && month <= 12 && year >= 1900 && year <= 2100
}

// TotalExperienceYears calcula los años entre el inicio mas temprano y el fin mas tardio.
// Un fin vacio es el mes actual. Devuelve nil si ninguna entrada tiene fechas validas.
func TotalExperienceYears(history []domain.Payload, now time.Time) *float64 {
	var (
		earliest, latest yearMonth
		found            bool
	)
	current := yearMonth{year: now.Year(), month: int(now.Month())}

	for _, entry := range history {
		sy, sm, ok := ParseYearMonth(entry.String("start_date"))
		if !ok {
			continue
		}
		end := current
		if raw := entry.String("end_date"); raw != "" {
			ey, em, ok := ParseYearMonth(raw)
			if !ok {
				continue
			}
			end = yearMonth{year: ey, month: em}
		}
		start := yearMonth{year: sy, month: sm}
		if !found || start.before(earliest) {
			earliest = start
		}
		if !found || latest.before(end) {
			latest = end
		}
		found = true
	}
	if !found {
		return nil
	}

	months := (latest.year-earliest.year)*12 + (latest.month - earliest.month)
	years := round1(float64(months) / 12)
	return &years
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
