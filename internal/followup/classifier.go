package followup

import "strings"

// Classify infers intent and objection tags from free conversation text.
// Pure keyword matching, case-insensitive, no side effects. Intent markers
// are checked in priority order (first match wins); objections accumulate
// independently. This is deliberately a placeholder for a real classifier:
// callers only depend on the stable tag vocabulary.
func Classify(text string) Classification {
	lower := strings.ToLower(text)

	intent := IntentUnknown
	switch {
	case strings.Contains(lower, "ready"),
		strings.Contains(lower, "let's switch"),
		strings.Contains(lower, "let’s switch"):
		intent = IntentReadyToSwitch
	case strings.Contains(lower, "next month"), strings.Contains(lower, "maybe"):
		intent = IntentConsidering
	case strings.Contains(lower, "just browsing"):
		intent = IntentJustBrowsing
	}

	objections := []string{}
	if strings.Contains(lower, "price") || strings.Contains(lower, "too expensive") {
		objections = append(objections, ObjectionPrice)
	}
	if strings.Contains(lower, "claim") {
		objections = append(objections, ObjectionClaims)
	}

	return Classification{Intent: intent, Objections: objections}
}
