package domain

// ProfileAnalysis es la salida estructurada del resumidor, con los campos v1 derivados.
type ProfileAnalysis struct {
	ExecutiveSummary            string                      `json:"executive_summary"`
	PersonalityInterpretation   PersonalityInterpretation   `json:"personality_interpretation"`
	ProfessionalStrengths       []string                    `json:"professional_strengths"`
	PotentialBlindSpots         []string                    `json:"potential_blind_spots"`
	CommunicationBlueprint      CommunicationBlueprint      `json:"communication_blueprint"`
	ProfessionalContextInsights ProfessionalContextInsights `json:"professional_context_insights"`
	EngagementRecommendations   []string                    `json:"engagement_recommendations"`

	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

type PersonalityInterpretation struct {
	DiscArchetypeMeaning  string   `json:"disc_archetype_meaning"`
	OceanProfileNarrative string   `json:"ocean_profile_narrative"`
	BehavioralSignature   []string `json:"behavioral_signature"`
}

type CommunicationBlueprint struct {
	PreferredCommunicationStyle string   `json:"preferred_communication_style"`
	EffectiveApproaches         []string `json:"effective_approaches"`
	ApproachesToAvoid           []string `json:"approaches_to_avoid"`
}

type ProfessionalContextInsights struct {
	CareerTrajectoryAnalysis string   `json:"career_trajectory_analysis"`
	CurrentFocusAreas        []string `json:"current_focus_areas"`
	ExpertiseDomains         []string `json:"expertise_domains"`
}
