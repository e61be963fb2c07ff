package domain

// InsightTree es la vista estructurada de un perfil crudo. Siempre esta completa:
// los campos ausentes en el origen quedan con su valor cero.
type InsightTree struct {
	Identity           Identity           `json:"identity"`
	Personality        Personality        `json:"personality"`
	Professional       Professional       `json:"professional"`
	CommunicationIntel CommunicationIntel `json:"communication_intel"`
	SocialIntelligence SocialIntelligence `json:"social_intelligence"`
	Demographics       Demographics       `json:"demographics"`
	Personas           Personas           `json:"personas"`
}

type Identity struct {
	Name         string `json:"name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Location     string `json:"location"`
	Timezone     string `json:"timezone"`
	LinkedIn     string `json:"linkedin"`
	Headline     string `json:"headline"`
	ProfileImage string `json:"profile_image"`
}

// TraitInsight normaliza un rasgo OCEAN o un factor DISC.
type TraitInsight struct {
	Score          float64 `json:"score"`
	Level          string  `json:"level"`
	Percentile     float64 `json:"percentile"`
	Interpretation string  `json:"interpretation"`
}

type Personality struct {
	Ocean     map[string]TraitInsight `json:"ocean"`
	Disc      map[string]TraitInsight `json:"disc"`
	Archetype Archetype               `json:"archetype"`
}

type Archetype struct {
	Name          string   `json:"name"`
	Group         string   `json:"group"`
	Color         string   `json:"color"`
	PrimaryTraits []string `json:"primary_traits"`
	Labels        []string `json:"labels"`
	Description   string   `json:"description"`
}

// OceanTraits y DiscFactors fijan el orden de presentacion.
var (
	OceanTraits = []string{"openness", "conscientiousness", "extraversion", "agreeableness", "emotional_stability"}
	DiscFactors = []string{"dominance", "influence", "steadiness", "calculativeness"}
)

type Professional struct {
	WorkHistory          []Payload   `json:"work_history"`
	Education            []Payload   `json:"education"`
	Skills               []string    `json:"skills"`
	CurrentRole          Payload     `json:"current_role,omitempty"`
	Prographics          Prographics `json:"prographics"`
	TotalExperienceYears *float64    `json:"total_experience_years"`
}

type Prographics struct {
	JobLevel             string   `json:"job_level,omitempty"`
	EducationLevel       string   `json:"education_level,omitempty"`
	ExperienceInYears    *float64 `json:"experience_in_years"`
	SocialActivityStatus string   `json:"social_activity_status,omitempty"`
}

// CommunicationIntel agrupa los consejos del proveedor por canal.
type CommunicationIntel struct {
	Email   Payload `json:"email"`
	Calling Payload `json:"calling"`
	General Payload `json:"general"`
}

type SocialIntelligence struct {
	RecentPosts     []Payload `json:"recent_posts"`
	TopicsCareAbout []Payload `json:"topics_care_about"`
	Overview        string    `json:"overview"`
}

type Demographics struct {
	AgeRange  Payload `json:"age_range"`
	Followers int64   `json:"followers"`
}

// Personas solo se completan cuando el origen las trae.
type Personas struct {
	Sales  *SalesPersona  `json:"sales,omitempty"`
	Hiring *HiringPersona `json:"hiring,omitempty"`
}

type SalesPersona struct {
	CommunicationAdvice  Payload `json:"communication_advice"`
	EmailPersonalization Payload `json:"email_personalization"`
	ColdCallingAdvice    Payload `json:"cold_calling_advice"`
	ProfileURL           string  `json:"profile_url"`
}

type HiringPersona struct {
	BehavioralFactors    Payload `json:"behavioral_factors"`
	CommunicationAdvice  Payload `json:"communication_advice"`
	EmailPersonalization Payload `json:"email_personalization"`
	ProfileURL           string  `json:"profile_url"`
}
