package parser

import "strings"

// maxSentences is how many sentence fragments a description keeps.
const maxSentences = 2

// ShortenDescription collapses whitespace in text and keeps its first two
// sentence fragments, each ending in '.', '!' or '?'. When fewer than two
// terminators exist the trailing remainder is kept as well, so text without
// any terminator comes back whole.
func ShortenDescription(text string) string {
	cleaned := collapseWhitespace(text)
	if cleaned == "" {
		return ""
	}

	var sentences []string
	var buf strings.Builder
	for _, r := range cleaned {
		buf.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		if len(sentences) == maxSentences {
			break
		}
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" && len(sentences) < maxSentences {
		sentences = append(sentences, rest)
	}
	return strings.Join(sentences, " ")
}
