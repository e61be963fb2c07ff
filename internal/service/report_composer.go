package service

import (
	"strings"
	"time"

	"insight-profile/internal/domain"
)

const (
	analysisVersion     = "v2.0"
	profilingAPIVersion = "v1"
	confidenceScore     = 0.92
	maxThemeChars       = 200
	defaultSalutation   = "there"
)

// Valores documentados para la persona de ventas cuando el proveedor no los trae.
const (
	defaultPrimaryDriver   = "Conviction around the impact"
	defaultSecondaryDriver = "Sense of achievement and ROI"
	defaultRiskAppetite    = "The risks don't matter much to them"
	defaultAbilityToSayNo  = "If they are not convinced, they will say no without any hesitation"
	defaultDecisionSpeed   = "They can take decisions very fast if you manage to convince them"
	defaultManagementStyle = "Perfectionist with little tolerance for mistakes."
)

var hiringMotivators = []string{
	"Autonomy and decision-making authority",
	"Challenge and growth opportunities",
	"Measurable impact and achievement",
	"Working with data-driven methodical teams",
}

// ReportInput reune todo lo que necesita el composer.
type ReportInput struct {
	Analysis   domain.ProfileAnalysis
	Insights   domain.InsightTree
	Scores     domain.BigFiveScores
	Cached     bool
	CachedAt   time.Time
	CacheState domain.CacheState
	Model      string
	Now        time.Time
}

// Compose arma el reporte final. Es puro y nunca falla por datos opcionales ausentes.
func Compose(in ReportInput) domain.InsightReport {
	tree := in.Insights
	a := in.Analysis

	report := domain.InsightReport{
		Analysis: domain.ReportAnalysis{
			ExecutiveSummary:          a.ExecutiveSummary,
			PersonalityInterpretation: a.PersonalityInterpretation,
			ProfessionalStrengths:     nonNilStrings(a.ProfessionalStrengths),
			PotentialBlindSpots:       nonNilStrings(a.PotentialBlindSpots),
			CommunicationBlueprint:    a.CommunicationBlueprint,
			ProfessionalInsights:      a.ProfessionalContextInsights,
			Recommendations:           nonNilStrings(a.EngagementRecommendations),
		},
		CommunicationPlaybook: composePlaybook(tree),
		PersonalityScores: domain.Personality{
			Ocean:     nonNilTraits(tree.Personality.Ocean),
			Disc:      nonNilTraits(tree.Personality.Disc),
			Archetype: tree.Personality.Archetype,
		},
		ProfessionalProfile: composeProfessional(tree, in.Now),
		ExternalResources: domain.ExternalResources{
			LinkedInProfile: tree.Identity.LinkedIn,
		},
		Metadata:  composeMetadata(in),
		RawScores: in.Scores,
	}

	if sales := tree.Personas.Sales; sales != nil {
		report.ContextSpecificInsights.ForSales = composeSales(sales)
		report.ExternalResources.HumanticSalesProfile = sales.ProfileURL
	}
	if hiring := tree.Personas.Hiring; hiring != nil {
		report.ContextSpecificInsights.ForHiring = composeHiring(hiring)
		report.ExternalResources.HumanticHiringProfile = hiring.ProfileURL
	}
	return report
}

func composePlaybook(tree domain.InsightTree) domain.CommunicationPlaybook {
	intel := tree.CommunicationIntel
	email := intel.Email
	examples := email.Map("examples")

	pb := domain.CommunicationPlaybook{
		Email: domain.EmailPlaybook{Advice: email.Map("advice")},
		ColdCalling: domain.ColdCalling{
			Insights:       intel.Calling.Map("insights"),
			ScriptTemplate: intel.Calling.Map("examples"),
		},
		MeetingStrategy: domain.MeetingStrategy{
			WhatToSay:              intel.General.Strings("what_to_say"),
			WhatToAvoid:            intel.General.Strings("what_to_avoid"),
			PersonalityDescriptors: intel.General.Strings("adjectives"),
		},
	}
	if len(examples) > 0 {
		pb.Email.ExampleTemplate = &domain.EmailTemplate{
			Subject: examples.String("Subject"),
			Body:    FormatEmailExample(examples, tree.Identity.FirstName),
		}
	}
	return pb
}

// FormatEmailExample arma el cuerpo de ejemplo con la linea KPI de plantilla.
func FormatEmailExample(examples domain.Payload, firstName string) string {
	if firstName == "" {
		firstName = defaultSalutation
	}
	salutation := examples.StringOr(firstName, "Salutation")
	greeting := examples.String("Greeting")
	closingLine := examples.String("Closing_Line")
	complimentaryClose := examples.StringOr("Regards", "Complimentary_Close")

	lines := []string{salutation}
	if greeting != "" {
		lines = append(lines, "", greeting)
	}
	lines = append(lines, "", "[Your Company] moved [KPI1] by X% and [KPI2] by Y% using [specific approach].", "")
	if closingLine != "" {
		lines = append(lines, closingLine)
	}
	lines = append(lines, "", complimentaryClose)
	return strings.Join(lines, "\n")
}

func composeProfessional(tree domain.InsightTree, now time.Time) domain.ProfessionalProfile {
	prof := tree.Professional
	social := tree.SocialIntelligence

	themes := make([]string, 0, len(social.RecentPosts))
	for _, post := range firstN(social.RecentPosts, maxRecentPosts) {
		themes = append(themes, truncateWithEllipsis(post.String("post_text"), maxThemeChars))
	}

	var engagement *domain.EngagementMetrics
	if tree.Demographics.Followers > 0 {
		status := prof.Prographics.SocialActivityStatus
		if status == "" {
			status = "unknown"
		}
		engagement = &domain.EngagementMetrics{
			LinkedInFollowers:    tree.Demographics.Followers,
			SocialActivityStatus: status,
		}
	}

	demographics := tree.Demographics
	if demographics.AgeRange == nil {
		demographics.AgeRange = domain.Payload{}
	}

	return domain.ProfessionalProfile{
		Identity:             tree.Identity,
		CurrentRole:          FormatCurrentRole(prof.CurrentRole, now),
		WorkHistory:          nonNilPayloads(prof.WorkHistory),
		Education:            nonNilPayloads(prof.Education),
		Skills:               nonNilStrings(prof.Skills),
		TotalExperienceYears: prof.TotalExperienceYears,
		SocialInsights: domain.SocialInsights{
			TopicsCareAbout:       nonNilPayloads(social.TopicsCareAbout),
			RecentThemesFromPosts: themes,
			Overview:              social.Overview,
			EngagementMetrics:     engagement,
		},
		Demographics: demographics,
	}
}

// FormatCurrentRole agrega duracion y antiguedad en meses al rol actual.
func FormatCurrentRole(role domain.Payload, now time.Time) *domain.CurrentRole {
	if len(role) == 0 {
		return nil
	}
	start := role.String("start_date")
	end := role.String("end_date")

	out := &domain.CurrentRole{
		Title:        role.String("title"),
		Organization: role.String("organization"),
	}
	switch {
	case start != "" && end != "":
		out.Duration = start + " - " + end
	case start != "":
		out.Duration = start + " - Present"
	}

	if sy, sm, ok := ParseYearMonth(start); ok {
		ey, em := now.Year(), int(now.Month())
		endOK := true
		if end != "" {
			ey, em, endOK = ParseYearMonth(end)
		}
		if endOK {
			months := (ey-sy)*12 + (em - sm)
			out.TenureMonths = &months
		}
	}
	return out
}

func composeSales(sales *domain.SalesPersona) *domain.SalesInsights {
	comm := sales.CommunicationAdvice
	traits := comm.Map("key_traits")
	primary, secondary := ParseDecisionDrivers(traits.String("Decision Drivers"))

	return &domain.SalesInsights{
		DecisionDrivers:   domain.DecisionDrivers{Primary: primary, Secondary: secondary},
		RiskAppetite:      traits.StringOr(defaultRiskAppetite, "Risk Appetite"),
		AbilityToSayNo:    traits.StringOr(defaultAbilityToSayNo, "Ability To Say No"),
		DecisionSpeed:     traits.StringOr(defaultDecisionSpeed, "Speed"),
		KeyTraits:         comm.Strings("adjectives"),
		EngagementTactics: comm.Strings("what_to_say"),
		ApproachesToAvoid: comm.Strings("what_to_avoid"),
		ProfileURL:        sales.ProfileURL,
	}
}

// ParseDecisionDrivers interpreta frases como "X matters the most to them, followed by Y.".
func ParseDecisionDrivers(text string) (primary, secondary string) {
	primary, secondary = defaultPrimaryDriver, defaultSecondaryDriver
	if text == "" {
		return primary, secondary
	}
	if head, _, found := strings.Cut(text, "matters the most"); found {
		if head = strings.TrimSpace(head); head != "" {
			primary = head
		}
	}
	if _, tail, found := strings.Cut(text, "followed by"); found {
		if tail = strings.TrimSpace(strings.ReplaceAll(tail, ".", "")); tail != "" {
			secondary = tail
		}
	}
	return primary, secondary
}

func composeHiring(hiring *domain.HiringPersona) *domain.HiringInsights {
	comm := hiring.CommunicationAdvice

	factors := make(map[string]domain.BehavioralFactor, len(hiring.BehavioralFactors))
	for name, raw := range hiring.BehavioralFactors {
		data := domain.AsPayload(raw)
		if data == nil {
			continue
		}
		factors[name] = domain.BehavioralFactor{
			Score:    data.Get("score"),
			Level:    data.Get("level"),
			Priority: data.Get("order"),
		}
	}

	style := defaultManagementStyle
	if desc := comm.Strings("description"); len(desc) > 0 {
		style = desc[0]
	}

	return &domain.HiringInsights{
		BehavioralFactors:  factors,
		Motivators:         append([]string(nil), hiringMotivators...),
		ManagementStyle:    style,
		IdealPitchElements: comm.Strings("what_to_say"),
		ApproachesToAvoid:  comm.Strings("what_to_avoid"),
		ProfileURL:         hiring.ProfileURL,
	}
}

func composeMetadata(in ReportInput) domain.ReportMetadata {
	tree := in.Insights
	points := len(tree.Personality.Ocean) +
		len(tree.Personality.Disc) +
		len(tree.Professional.WorkHistory) +
		len(tree.Professional.Education) +
		len(tree.SocialIntelligence.TopicsCareAbout)

	meta := domain.ReportMetadata{
		AnalysisVersion:     analysisVersion,
		Model:               in.Model,
		ProfilingAPIVersion: profilingAPIVersion,
		DataPointsAnalyzed:  points,
		Cached:              in.Cached,
		CacheState:          in.CacheState,
		GeneratedAt:         in.Now.UTC(),
		ConfidenceScore:     confidenceScore,
	}
	if in.Cached && !in.CachedAt.IsZero() {
		meta.GeneratedAt = in.CachedAt.UTC()
		if age := in.Now.Sub(in.CachedAt); age > 0 {
			meta.ProfileAgeDays = int(age / (24 * time.Hour))
		}
	}
	return meta
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilPayloads(s []domain.Payload) []domain.Payload {
	if s == nil {
		return []domain.Payload{}
	}
	return s
}

func nonNilTraits(m map[string]domain.TraitInsight) map[string]domain.TraitInsight {
	if m == nil {
		return map[string]domain.TraitInsight{}
	}
	return m
}
