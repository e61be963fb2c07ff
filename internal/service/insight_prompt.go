package service

import (
	"fmt"
	"strconv"
	"strings"

	"insight-profile/internal/domain"
)

const (
	maxPromptItems     = 3
	maxPromptPosts     = 2
	maxPromptPostChars = 300
)

// AnalysisSystemPrompt es el rol que se le asigna al resumidor.
const AnalysisSystemPrompt = `You are an expert Executive Coach and Behavioral Psychologist with 20+ years of experience in professional profiling. You specialize in translating personality assessments (OCEAN, DISC) into actionable communication strategies and professional insights.

Your analysis should be:
- Data-driven and specific (reference actual scores/levels from the data)
- Professionally nuanced (avoid generic descriptions)
- Actionable (provide concrete do's and don'ts)
- Context-aware (consider professional background and career trajectory)
- Insightful (connect personality traits to work patterns and communication preferences)`

const analysisOutputSchema = `## OUTPUT REQUIRED:

Provide a comprehensive JSON analysis with the following exact structure:

{
  "executive_summary": "3-4 sentences that integrate personality archetype with professional context and current focus areas. Make it specific to this person.",
  "personality_interpretation": {
    "disc_archetype_meaning": "Explain what their DISC archetype means in practical, actionable terms (2-3 sentences)",
    "ocean_profile_narrative": "Provide a cohesive interpretation of their Big Five scores and how they work together (2-3 sentences)",
    "behavioral_signature": ["4-5 defining traits based on actual data, not generic"]
  },
  "professional_strengths": ["5 specific strengths backed by personality scores + work history. Each should be a complete sentence explaining the strength and its foundation."],
  "potential_blind_spots": ["3-4 areas for development based on personality profile. Be tactful but specific."],
  "communication_blueprint": {
    "preferred_communication_style": "Describe their preferred style based on DISC/OCEAN (2-3 sentences)",
    "effective_approaches": ["4-5 specific tactics that work well with this personality"],
    "approaches_to_avoid": ["4-5 specific anti-patterns to avoid"]
  },
  "professional_context_insights": {
    "career_trajectory_analysis": "Identify patterns in their career progression (2-3 sentences)",
    "current_focus_areas": ["3-4 areas based on recent posts/interests if available"],
    "expertise_domains": ["3-5 domains from work history and skills"]
  },
  "engagement_recommendations": ["5-6 actionable recommendations for interacting with this person. Each should reference specific personality traits or context. Be concrete and practical."]
}

IMPORTANT:
- Respond with ONLY valid JSON, no markdown formatting
- Make every insight specific to THIS person's data
- Reference actual scores, job titles, and background details
- Avoid generic personality descriptions`

// BuildAnalysisPrompt arma el prompt del resumidor a partir del arbol de insights.
func BuildAnalysisPrompt(tree domain.InsightTree) string {
	return "Analyze this professional's behavioral profile and provide comprehensive insights.\n\n" +
		FormatInsights(tree) + "\n\n" + analysisOutputSchema
}

// FormatInsights renderiza el arbol como texto por secciones.
func FormatInsights(tree domain.InsightTree) string {
	var b strings.Builder

	id := tree.Identity
	b.WriteString("## IDENTITY\n")
	fmt.Fprintf(&b, "Name: %s\n", orNA(id.Name))
	fmt.Fprintf(&b, "Location: %s\n", orNA(id.Location))
	fmt.Fprintf(&b, "Headline: %s\n\n", orNA(id.Headline))

	p := tree.Personality
	b.WriteString("## PERSONALITY ASSESSMENT\n")
	writeTraits(&b, "OCEAN Profile", p.Ocean, domain.OceanTraits)
	writeTraits(&b, "DISC Assessment", p.Disc, domain.DiscFactors)
	if p.Archetype.Name != "" {
		fmt.Fprintf(&b, "\n### Archetype: %s\n", p.Archetype.Name)
		fmt.Fprintf(&b, "Group: %s\n", orNA(p.Archetype.Group))
		if len(p.Archetype.PrimaryTraits) > 0 {
			fmt.Fprintf(&b, "Traits: %s\n", strings.Join(p.Archetype.PrimaryTraits, ", "))
		}
	}
	b.WriteString("\n")

	prof := tree.Professional
	b.WriteString("## PROFESSIONAL BACKGROUND\n")
	if len(prof.CurrentRole) > 0 {
		fmt.Fprintf(&b, "\nCurrent: %s at %s\n", prof.CurrentRole.StringOr("N/A", "title"), prof.CurrentRole.StringOr("N/A", "organization"))
	}
	if len(prof.WorkHistory) > 0 {
		b.WriteString("\nRecent Experience:\n")
		for _, job := range firstN(prof.WorkHistory, maxPromptItems) {
			fmt.Fprintf(&b, "- %s at %s (%s to %s)\n",
				job.StringOr("N/A", "title"),
				job.StringOr("N/A", "organization"),
				job.StringOr("N/A", "start_date"),
				job.StringOr("Present", "end_date"),
			)
		}
	}
	if len(prof.Education) > 0 {
		b.WriteString("\nEducation:\n")
		for _, edu := range firstN(prof.Education, maxPromptItems) {
			fmt.Fprintf(&b, "- %s from %s\n", edu.StringOr("N/A", "degree"), edu.StringOr("N/A", "school"))
		}
	}
	if prof.TotalExperienceYears != nil {
		fmt.Fprintf(&b, "\nTotal Experience: %s years\n", formatNumber(*prof.TotalExperienceYears))
	}
	if len(prof.Skills) > 0 {
		fmt.Fprintf(&b, "\nKey Skills: %s\n", strings.Join(prof.Skills, ", "))
	}
	b.WriteString("\n")

	social := tree.SocialIntelligence
	if topics := labeledTopics(social.TopicsCareAbout); len(topics) > 0 {
		b.WriteString("## CURRENT INTERESTS & FOCUS AREAS\n")
		for _, line := range topics {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}
	if len(social.RecentPosts) > 0 {
		b.WriteString("## RECENT SOCIAL ACTIVITY\n")
		for i, post := range firstN(social.RecentPosts, maxPromptPosts) {
			if text := post.String("post_text"); text != "" {
				fmt.Fprintf(&b, "\nPost %d Theme: %s\n", i+1, truncateWithEllipsis(text, maxPromptPostChars))
			}
		}
		b.WriteString("\n")
	}

	general := tree.CommunicationIntel.General
	adjectives := general.Strings("adjectives")
	say := general.Strings("what_to_say")
	avoid := general.Strings("what_to_avoid")
	if len(adjectives) > 0 || len(say) > 0 || len(avoid) > 0 {
		b.WriteString("## COMMUNICATION STYLE INDICATORS\n")
		if len(adjectives) > 0 {
			fmt.Fprintf(&b, "Descriptors: %s\n", strings.Join(adjectives, ", "))
		}
		writeList(&b, "Effective Approaches", firstN(say, maxPromptItems))
		writeList(&b, "Approaches to Avoid", firstN(avoid, maxPromptItems))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeTraits(b *strings.Builder, title string, traits map[string]domain.TraitInsight, order []string) {
	if len(traits) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s:\n", title)
	for _, name := range order {
		t, ok := traits[name]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "- %s: %s (%s)\n", capitalize(name), formatNumber(t.Score), orNA(t.Level))
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func labeledTopics(topics []domain.Payload) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if label := t.String("label"); label != "" {
			out = append(out, label+": "+t.String("description"))
		}
	}
	return out
}

func truncateWithEllipsis(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
