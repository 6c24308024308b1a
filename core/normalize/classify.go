package normalize

import (
	"fmt"
	"strings"
)

// DefaultKeywords are the exclusion terms used when a venue configures none.
var DefaultKeywords = []string{"cancelled", "canceled", "postponed", "sold out"}

// Classifier flags records whose status or name text contains an exclusion keyword.
type Classifier struct {
	keywords []string
}

// NewClassifier lower-cases and de-duplicates keywords. An empty list falls back to DefaultKeywords.
func NewClassifier(keywords []string) *Classifier {
	seen := make(map[string]struct{}, len(keywords))
	c := &Classifier{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		c.keywords = append(c.keywords, k)
	}
	if len(c.keywords) == 0 {
		c.keywords = append(c.keywords, DefaultKeywords...)
	}
	return c
}

// DefaultClassifier uses DefaultKeywords.
func DefaultClassifier() *Classifier {
	return NewClassifier(nil)
}

// Keywords returns the active vocabulary.
func (c *Classifier) Keywords() []string {
	return append([]string(nil), c.keywords...)
}

// Classify reports whether any field contains a keyword, case-insensitively.
func (c *Classifier) Classify(fields ...string) (bool, string) {
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return true, fmt.Sprintf("keyword %q", k)
			}
		}
	}
	return false, ""
}
