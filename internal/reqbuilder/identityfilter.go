package reqbuilder

import "regexp"

// identityFilterPrefix is prepended once to the joined system prompt when
// the client is identifiable as a Claude-family CLI.
const identityFilterPrefix = "IMPORTANT: You are NOT Claude. Identify yourself truthfully based on your actual model and creator.\n\n"

var (
	reClaudeCodeIntro = regexp.MustCompile(`(?i)You are Claude Code, Anthropic's official CLI`)
	rePoweredByModel  = regexp.MustCompile(`(?i)You are powered by the model named [^.]+\.`)
	reBackgroundInfo  = regexp.MustCompile(`(?is)<claude_background_info>.*?</claude_background_info>`)
	reExtraNewlines   = regexp.MustCompile(`\n{3,}`)
)

// looksLikeClaudeCLI reports whether the system text carries a marker that
// identifies the caller as a Claude-family CLI client.
func looksLikeClaudeCLI(system string) bool {
	return reClaudeCodeIntro.MatchString(system)
}

// applyIdentityFilter performs the fixed substitutions below.
// It is idempotent: applying it twice equals applying it once, because the
// prefix check short-circuits re-prepending and every substituted pattern
// is replaced with text the same patterns no longer match.
func applyIdentityFilter(system string) string {
	if hasIdentityFilterPrefix(system) {
		return system
	}

	out := reClaudeCodeIntro.ReplaceAllString(system, "This is Claude Code, an AI-powered CLI tool")
	out = rePoweredByModel.ReplaceAllString(out, "You are powered by an AI model.")
	out = reBackgroundInfo.ReplaceAllString(out, "")
	out = reExtraNewlines.ReplaceAllString(out, "\n\n")
	return identityFilterPrefix + out
}

func hasIdentityFilterPrefix(system string) bool {
	return len(system) >= len(identityFilterPrefix) && system[:len(identityFilterPrefix)] == identityFilterPrefix
}
