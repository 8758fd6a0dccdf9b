package doctor

import "strings"

// SecretKeyPatterns contains substrings that indicate a key likely
// contains sensitive data. Keys are matched case-insensitively.
var SecretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// TokenPrefixes contains known API token prefixes that indicate
// sensitive values regardless of key name.
var TokenPrefixes = []string{
	"ghp_",  // GitHub personal access token
	"gho_",  // GitHub OAuth token
	"ghs_",  // GitHub server-to-server token
	"sk-",   // OpenAI/Anthropic keys
	"AKIA",  // AWS access key prefix
	"xoxb-", // Slack bot token
	"xoxp-", // Slack user token
	"swt_",  // SignalWire API token
}

// ShouldMask returns true if the key name suggests it contains
// sensitive data. Matching is case-insensitive.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix returns true if the value starts with a known
// token prefix. This catches values that are clearly tokens even when
// the key name does not indicate sensitivity.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskValue masks a potentially sensitive string value. Values with 4
// or fewer characters are fully masked; longer values show the last 4
// characters.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}
