package service

import "insight-profile/internal/domain"

const maxHighlights = 3

// applyAnalysisDefaults completa cada campo vacio con su valor estructural por defecto
// y recalcula los campos v1.
func applyAnalysisDefaults(a *domain.ProfileAnalysis) {
	setString(&a.ExecutiveSummary, "Comprehensive personality analysis completed.")

	pi := &a.PersonalityInterpretation
	setString(&pi.DiscArchetypeMeaning, "Analysis based on available data.")
	setString(&pi.OceanProfileNarrative, "Personality profile shows balanced traits.")
	setList(&pi.BehavioralSignature, "Analytical", "Professional", "Goal-oriented")

	setList(&a.ProfessionalStrengths,
		"Strong professional background",
		"Demonstrated expertise in their field",
		"Effective communication skills",
		"Strategic thinking ability",
		"Team collaboration",
	)
	setList(&a.PotentialBlindSpots,
		"Analysis requires more data",
		"Context-dependent areas for development",
	)

	cb := &a.CommunicationBlueprint
	setString(&cb.PreferredCommunicationStyle, "Professional and contextual.")
	setList(&cb.EffectiveApproaches, "Be clear and direct", "Provide context", "Be professional")
	setList(&cb.ApproachesToAvoid, "Unclear communication", "Lack of context")

	pc := &a.ProfessionalContextInsights
	setString(&pc.CareerTrajectoryAnalysis, "Progressive career development evident from background.")
	setList(&pc.CurrentFocusAreas, "Professional development")
	setList(&pc.ExpertiseDomains, "Domain expertise")

	setList(&a.EngagementRecommendations,
		"Communicate clearly and professionally",
		"Respect their time and expertise",
		"Provide relevant context",
	)

	// Campos v1: se derivan solo si el documento no los trae.
	setString(&a.Summary, a.ExecutiveSummary)
	if len(a.Strengths) == 0 {
		a.Strengths = append([]string(nil), firstN(a.ProfessionalStrengths, maxHighlights)...)
	}
	if len(a.Weaknesses) == 0 {
		a.Weaknesses = append([]string(nil), firstN(a.PotentialBlindSpots, maxHighlights)...)
	}
}

// FallbackProfileAnalysis es el documento completo que reemplaza una salida inutilizable del resumidor.
func FallbackProfileAnalysis() domain.ProfileAnalysis {
	return domain.ProfileAnalysis{
		ExecutiveSummary: "Personality analysis completed based on available data.",
		PersonalityInterpretation: domain.PersonalityInterpretation{
			DiscArchetypeMeaning:  "Analysis based on behavioral patterns.",
			OceanProfileNarrative: "Balanced personality profile with varied traits.",
			BehavioralSignature:   []string{"Analytical", "Professional", "Adaptable"},
		},
		ProfessionalStrengths: []string{
			"Strong analytical capabilities",
			"Professional communication skills",
			"Adaptability in various contexts",
		},
		PotentialBlindSpots: []string{"Areas for development vary by context"},
		CommunicationBlueprint: domain.CommunicationBlueprint{
			PreferredCommunicationStyle: "Professional and clear communication.",
			EffectiveApproaches:         []string{"Be direct", "Provide data", "Be respectful"},
			ApproachesToAvoid:           []string{"Vague requests", "Lack of structure"},
		},
		ProfessionalContextInsights: domain.ProfessionalContextInsights{
			CareerTrajectoryAnalysis: "Professional growth evident from background.",
			CurrentFocusAreas:        []string{"Professional development"},
			ExpertiseDomains:         []string{"Core competencies"},
		},
		EngagementRecommendations: []string{
			"Communicate with clarity and purpose",
			"Respect professional boundaries",
			"Provide relevant context",
		},
		Summary:    "Personality analysis completed based on available data.",
		Strengths:  []string{"Analytical capabilities", "Communication skills", "Adaptability"},
		Weaknesses: []string{"Context-dependent development areas"},
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setList(dst *[]string, def ...string) {
	kept := (*dst)[:0:0]
	for _, s := range *dst {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		kept = def
	}
	*dst = kept
}
