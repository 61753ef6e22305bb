package followup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"ready keyword", "We are ready to move forward", IntentReadyToSwitch},
		{"switch phrase", "Let's switch providers next week", IntentReadyToSwitch},
		{"curly apostrophe", "Let’s switch, send the paperwork", IntentReadyToSwitch},
		{"next month", "Call me back next month", IntentConsidering},
		{"maybe", "Maybe, need to think about it", IntentConsidering},
		{"browsing", "Honestly just browsing for now", IntentJustBrowsing},
		{"no signal", "Thanks for the info", IntentUnknown},
		{"case insensitive", "READY when you are", IntentReadyToSwitch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text).Intent)
		})
	}
}

func TestClassifyIntentPriority(t *testing.T) {
	// ready wins over considering when both markers appear
	got := Classify("maybe we are ready to switch")
	assert.Equal(t, IntentReadyToSwitch, got.Intent)
}

func TestClassifyObjections(t *testing.T) {
	got := Classify("The price is high and the claim process worries me")
	assert.Equal(t, []string{ObjectionPrice, ObjectionClaims}, got.Objections)

	got = Classify("too expensive for us")
	assert.Equal(t, []string{ObjectionPrice}, got.Objections)

	got = Classify("all good")
	assert.Empty(t, got.Objections)
	assert.NotNil(t, got.Objections)
}

func TestClassifyScenario(t *testing.T) {
	got := Classify("Client said next month maybe, but worried about price")
	assert.Equal(t, IntentConsidering, got.Intent)
	assert.Contains(t, got.Objections, ObjectionPrice)
}
