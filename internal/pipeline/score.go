package pipeline

import (
	"regexp"
	"strings"
)

// Heuristic signals for the deterministic quality score. The markers reward
// emails that cite something concrete about the lead; the denylist penalizes
// filler openers that tank reply rates.
var (
	personalizationMarkers = regexp.MustCompile(`(?i)\b(noticed|saw|read|following|recent|post|article|announcement)\b`)
	ctaCues                = regexp.MustCompile(`(?i)\b(call|chat|discuss|explore|demo|meeting|calendly|available|interested)\b`)

	overusedPhrases = []string{
		"hope this finds you well",
		"wanted to reach out",
		"i came across",
		"pick your brain",
		"circle back",
		"touch base",
	}
)

// Score rates an email body 0-100. Pure function: no I/O, no randomness, the
// same body and research flag always produce the same score.
//
// Base 50, then:
//   - word count in [50,100] +15, else [40,120] +10, else <30 or >150 -10
//   - personalization marker present +15
//   - each overused phrase found -10 (cumulative)
//   - call-to-action cue present +10
//   - any research signal gathered +10
//
// The result is clamped to [0,100].
func Score(body string, researchPresent bool) int {
	score := 50

	wordCount := len(strings.Fields(body))
	switch {
	case wordCount >= 50 && wordCount <= 100:
		score += 15
	case wordCount >= 40 && wordCount <= 120:
		score += 10
	case wordCount < 30 || wordCount > 150:
		score -= 10
	}

	if personalizationMarkers.MatchString(body) {
		score += 15
	}

	lower := strings.ToLower(body)
	for _, phrase := range overusedPhrases {
		if strings.Contains(lower, phrase) {
			score -= 10
		}
	}

	if ctaCues.MatchString(body) {
		score += 10
	}

	if researchPresent {
		score += 10
	}

	return clamp(score, 0, 100)
}
