package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := Normalizer{Location: time.UTC}

	ev, err := n.Normalize(Input{
		Source:     Inventory,
		ExternalID: "100",
		Title:      "The <b>Nutcracker</b>!",
		Start:      "2025-12-20T19:00:00",
		VenueID:    "7",
	})
	require.NoError(t, err)
	assert.Equal(t, "the nutcracker!", ev.Title)
	assert.Equal(t, "The Nutcracker!", ev.DisplayTitle)
	assert.Equal(t, time.Date(2025, 12, 20, 19, 0, 0, 0, time.UTC), ev.StartAt)
	assert.False(t, ev.Excluded)
	assert.Equal(t, "7", ev.VenueID)
}

func TestNormalizer_Exclusion(t *testing.T) {
	n := Normalizer{Location: time.UTC, Classifier: DefaultClassifier()}

	ev, err := n.Normalize(Input{Source: Listing, ExternalID: "X2", Title: "Nutcracker — CANCELLED", Start: "2025-12-20 19:00:00"})
	require.NoError(t, err)
	assert.True(t, ev.Excluded)

	ev, err = n.Normalize(Input{Source: Listing, ExternalID: "X3", Title: "Nutcracker", Start: "2025-12-20 19:00:00", Status: []string{"Sold Out"}})
	require.NoError(t, err)
	assert.True(t, ev.Excluded)

	ev, err = n.Normalize(Input{Source: Listing, ExternalID: "X4", Title: "Nutcracker", Start: "2025-12-20 19:00:00", ExcludeReason: "access private"})
	require.NoError(t, err)
	assert.True(t, ev.Excluded)
	assert.Equal(t, "access private", ev.ExcludeReason)
}

func TestResult_Add(t *testing.T) {
	n := Normalizer{Location: time.UTC}
	var r Result
	r.Add(n, Input{Source: Listing, ExternalID: "ok", Title: "A", Start: "2025-12-20 19:00:00"})
	r.Add(n, Input{Source: Listing, ExternalID: "bad", Title: "B", Start: "TBA"})

	require.Len(t, r.Events, 1)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, ParseFailure, r.Diagnostics[0].Kind)
	assert.Equal(t, "bad", r.Diagnostics[0].ExternalID)
}
