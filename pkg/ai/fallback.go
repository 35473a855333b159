package ai

// Static text used when the ai-service is unavailable or the résumé has too
// little context to personalise a draft.

const fallbackSummary = "Results-driven professional with a track record of delivering high-quality work on schedule. " +
	"Combines strong problem-solving skills with clear communication and a collaborative approach. " +
	"Eager to bring proven experience and a commitment to continuous improvement to a new role."

var fallbackAchievements = []string{
	"Delivered key projects on time and within scope by coordinating closely with cross-functional stakeholders",
	"Improved team processes and documentation, reducing onboarding time for new colleagues",
	"Identified and resolved recurring issues, raising the quality and reliability of delivered work",
}

func FallbackSummary() string { return fallbackSummary }

// FallbackAchievements returns a fresh copy on every call.
func FallbackAchievements() []string {
	out := make([]string, len(fallbackAchievements))
	copy(out, fallbackAchievements)
	return out
}
