package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name     string
		fields   []string
		excluded bool
	}{
		{"Cancelled in title", []string{"Nutcracker — CANCELLED"}, true},
		{"American spelling", []string{"Show", "Canceled"}, true},
		{"Postponed status", []string{"Jazz Night", "postponed until spring"}, true},
		{"Sold out", []string{"Hamilton", "SOLD OUT"}, true},
		{"Clean", []string{"The Nutcracker", "on sale"}, false},
		{"No fields", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excluded, reason := c.Classify(tt.fields...)
			assert.Equal(t, tt.excluded, excluded)
			if tt.excluded {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestNewClassifier(t *testing.T) {
	c := NewClassifier([]string{" Rescheduled ", "rescheduled", ""})
	assert.Equal(t, []string{"rescheduled"}, c.Keywords())

	excluded, _ := c.Classify("Show RESCHEDULED")
	assert.True(t, excluded)
	excluded, _ = c.Classify("Show cancelled")
	assert.False(t, excluded)

	assert.Equal(t, DefaultKeywords, NewClassifier(nil).Keywords())
}
