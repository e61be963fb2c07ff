package domain

import "time"

// InsightReport es el documento final devuelto al cliente.
type InsightReport struct {
	Analysis                ReportAnalysis          `json:"analysis"`
	CommunicationPlaybook   CommunicationPlaybook   `json:"communication_playbook"`
	PersonalityScores       Personality             `json:"personality_scores"`
	ProfessionalProfile     ProfessionalProfile     `json:"professional_profile"`
	ContextSpecificInsights ContextSpecificInsights `json:"context_specific_insights"`
	ExternalResources       ExternalResources       `json:"external_resources"`
	Metadata                ReportMetadata          `json:"metadata"`
	RawScores               BigFiveScores           `json:"raw_scores"`
}

type ReportAnalysis struct {
	ExecutiveSummary          string                      `json:"executive_summary"`
	PersonalityInterpretation PersonalityInterpretation   `json:"personality_interpretation"`
	ProfessionalStrengths     []string                    `json:"professional_strengths"`
	PotentialBlindSpots       []string                    `json:"potential_blind_spots"`
	CommunicationBlueprint    CommunicationBlueprint      `json:"communication_blueprint"`
	ProfessionalInsights      ProfessionalContextInsights `json:"professional_insights"`
	Recommendations           []string                    `json:"recommendations"`
}

type CommunicationPlaybook struct {
	Email           EmailPlaybook   `json:"email"`
	ColdCalling     ColdCalling     `json:"cold_calling"`
	MeetingStrategy MeetingStrategy `json:"meeting_strategy"`
}

type EmailPlaybook struct {
	Advice          Payload        `json:"advice"`
	ExampleTemplate *EmailTemplate `json:"example_template,omitempty"`
}

type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ColdCalling struct {
	Insights       Payload `json:"insights"`
	ScriptTemplate Payload `json:"script_template"`
}

type MeetingStrategy struct {
	WhatToSay              []string `json:"what_to_say"`
	WhatToAvoid            []string `json:"what_to_avoid"`
	PersonalityDescriptors []string `json:"personality_descriptors"`
}

type ProfessionalProfile struct {
	Identity             Identity       `json:"identity"`
	CurrentRole          *CurrentRole   `json:"current_role,omitempty"`
	WorkHistory          []Payload      `json:"work_history"`
	Education            []Payload      `json:"education"`
	Skills               []string       `json:"skills"`
	TotalExperienceYears *float64       `json:"total_experience_years"`
	SocialInsights       SocialInsights `json:"social_insights"`
	Demographics         Demographics   `json:"demographics"`
}

type CurrentRole struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Duration     string `json:"duration"`
	TenureMonths *int   `json:"tenure_months"`
}

type SocialInsights struct {
	TopicsCareAbout       []Payload          `json:"topics_care_about"`
	RecentThemesFromPosts []string           `json:"recent_themes_from_posts"`
	Overview              string             `json:"overview"`
	EngagementMetrics     *EngagementMetrics `json:"engagement_metrics,omitempty"`
}

type EngagementMetrics struct {
	LinkedInFollowers    int64  `json:"linkedin_followers"`
	SocialActivityStatus string `json:"social_activity_status"`
}

type ContextSpecificInsights struct {
	ForSales  *SalesInsights  `json:"for_sales,omitempty"`
	ForHiring *HiringInsights `json:"for_hiring,omitempty"`
}

type SalesInsights struct {
	DecisionDrivers   DecisionDrivers `json:"decision_drivers"`
	RiskAppetite      string          `json:"risk_appetite"`
	AbilityToSayNo    string          `json:"ability_to_say_no"`
	DecisionSpeed     string          `json:"decision_speed"`
	KeyTraits         []string        `json:"key_traits"`
	EngagementTactics []string        `json:"engagement_tactics"`
	ApproachesToAvoid []string        `json:"approaches_to_avoid"`
	ProfileURL        string          `json:"profile_url"`
}

type DecisionDrivers struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type HiringInsights struct {
	BehavioralFactors  map[string]BehavioralFactor `json:"behavioral_factors"`
	Motivators         []string                    `json:"motivators"`
	ManagementStyle    string                      `json:"management_style"`
	IdealPitchElements []string                    `json:"ideal_pitch_elements"`
	ApproachesToAvoid  []string                    `json:"approaches_to_avoid"`
	ProfileURL         string                      `json:"profile_url"`
}

type BehavioralFactor struct {
	Score    any `json:"score"`
	Level    any `json:"level"`
	Priority any `json:"priority"`
}

type ExternalResources struct {
	LinkedInProfile       string `json:"linkedin_profile"`
	HumanticSalesProfile  string `json:"humantic_sales_profile,omitempty"`
	HumanticHiringProfile string `json:"humantic_hiring_profile,omitempty"`
}

type ReportMetadata struct {
	AnalysisVersion     string     `json:"analysis_version"`
	Model               string     `json:"model"`
	ProfilingAPIVersion string     `json:"profiling_api_version"`
	DataPointsAnalyzed  int        `json:"data_points_analyzed"`
	Cached              bool       `json:"cached"`
	CacheState          CacheState `json:"cache_state"`
	GeneratedAt         time.Time  `json:"generated_at"`
	ProfileAgeDays      int        `json:"profile_age_days"`
	ConfidenceScore     float64    `json:"confidence_score"`
}
