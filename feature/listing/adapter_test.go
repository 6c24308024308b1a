package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"event-reconciler/core/fetch"
	"event-reconciler/core/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newYork, _ = time.LoadLocation("America/New_York")

func fastFetch() fetch.Config {
	return fetch.Config{MaxAttempts: 2, BaseDelay: time.Millisecond, Factor: 2, MaxDelay: 5 * time.Millisecond, Timeout: time.Second}
}

func newAdapter(t *testing.T, endpoint string, maxPages int) *Adapter {
	t.Helper()
	a, err := New(Config{Endpoint: endpoint, PageSize: 2, MaxPages: maxPages}, fastFetch(), normalize.Normalizer{Location: newYork}, nil)
	require.NoError(t, err)
	return a
}

func window() (time.Time, time.Time) {
	from := time.Date(2025, 12, 1, 9, 0, 0, 0, newYork)
	return from, time.Date(2025, 12, 31, 0, 0, 0, 0, newYork)
}

const pageOne = `{"page_count": 2, "items": [
	{"id": 10, "post_title": "The Nutcracker!", "ticket_link": "https://venue.example/book?article_id=10",
	 "has_upcoming_performances": true,
	 "upcoming_performances": [
		{"id": 901, "start_date": "2025-12-20 19:15:00", "access": "public", "availability_status": "A"},
		{"id": 902, "start_date": "2025-12-21 14:00:00", "access": "Members", "availability_status": "A"},
		{"id": 903, "start_date": "2026-02-01 19:00:00", "access": "public", "availability_status": "A"},
		"bogus"
	 ]},
	{"id": 11, "post_title": "Closed Run", "has_upcoming_performances": false,
	 "upcoming_performances": [{"id": 950, "start_date": "2025-12-05 19:00:00", "access": "public"}]}
]}`

const pageTwo = `{"page_count": 2, "items": [
	{"id": 12, "post_title": "Swan &amp; Lake", "ticket_link": "https://venue.example/book?article_id=12",
	 "upcoming_performances": [
		{"id": "960", "start_date": "2025-12-10T20:00:00-05:00", "access": "public", "availability_status": "s"},
		{"id": 961, "start_date": "2025-12-11 20:00:00", "access": "public", "availability_status": "A", "cancelled": 1},
		{"id": 962, "start_date": "whenever", "access": "public"}
	 ]}
]}`

func TestListEvents_Pagination(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(pageOne))
			return
		}
		_, _ = w.Write([]byte(pageTwo))
	}))
	defer srv.Close()

	from, to := window()
	res, err := newAdapter(t, srv.URL, 10).ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)

	byID := map[string]normalize.Event{}
	for _, ev := range res.Events {
		byID[ev.ExternalID] = ev
	}
	require.Len(t, byID, 4)

	nut := byID["901"]
	assert.Equal(t, "901", nut.InstanceID)
	assert.Equal(t, "The Nutcracker!", nut.DisplayTitle)
	assert.Equal(t, "https://venue.example/book?article_id=10", nut.BookingURL)
	assert.Equal(t, time.Date(2025, 12, 20, 19, 15, 0, 0, newYork), nut.StartAt)
	assert.False(t, nut.Excluded)

	assert.True(t, byID["902"].Excluded)
	assert.Contains(t, byID["902"].ExcludeReason, "members")
	assert.True(t, byID["960"].Excluded)
	assert.Equal(t, "Swan & Lake", byID["960"].DisplayTitle)
	assert.True(t, byID["961"].Excluded)
	assert.Equal(t, "cancelled", byID["961"].ExcludeReason)

	assert.NotContains(t, byID, "903")
	assert.NotContains(t, byID, "950")

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "10", res.Diagnostics[0].ExternalID)
	assert.Equal(t, "962", res.Diagnostics[1].ExternalID)
}

func TestListEvents_StopsOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"page_count": 9, "items": [{"id": 1, "post_title": "A",
				"upcoming_performances": [{"id": 1, "start_date": "2025-12-02 19:00:00", "access": "public"}]}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"page_count": 9, "items": []}`))
	}))
	defer srv.Close()

	from, to := window()
	res, err := newAdapter(t, srv.URL, 10).ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, res.Events, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListEvents_MissingPerformanceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page_count": 1, "items": [
			{"id": 20, "post_title": "Messiah", "upcoming_performances": [
				{"start_date": "2025-12-12 19:30:00", "access": "public"},
				{"start_date": "2025-12-13 14:00:00", "access": "public"}
			]},
			{"post_title": "Orphan", "upcoming_performances": [
				{"start_date": "2025-12-14 19:30:00", "access": "public"}
			]}
		]}`))
	}))
	defer srv.Close()

	from, to := window()
	res, err := newAdapter(t, srv.URL, 10).ListEvents(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, res.Events, 2)
	assert.Equal(t, "20@2025-12-12T19:30", res.Events[0].ExternalID)
	assert.Equal(t, "20@2025-12-12T19:30", res.Events[0].InstanceID)
	assert.Equal(t, "20@2025-12-13T14:00", res.Events[1].ExternalID)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, normalize.ParseFailure, res.Diagnostics[0].Kind)
	assert.Contains(t, res.Diagnostics[0].Detail, "no id")
}

func TestListEvents_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	from, to := window()
	res, err := newAdapter(t, srv.URL, 10).ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	assert.Empty(t, res.Events)
}

func TestListEvents_PageFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(pageOne))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	from, to := window()
	res, err := newAdapter(t, srv.URL, 10).ListEvents(context.Background(), from, to)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrExhaustedRetries)
	assert.Contains(t, err.Error(), "page 2")
	assert.Empty(t, res.Events)
}

func TestListEvents_MaxPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"page_count": 100, "items": [{"id": %s, "post_title": "A", "upcoming_performances": []}]}`,
			r.URL.Query().Get("page"))
	}))
	defer srv.Close()

	from, to := window()
	_, err := newAdapter(t, srv.URL, 3).ListEvents(context.Background(), from, to)
	assert.ErrorIs(t, err, ErrTooManyPages)
}

func TestExcludeReason(t *testing.T) {
	tests := []struct {
		name string
		perf RawPerformance
		want string
	}{
		{"public available", RawPerformance{Access: "Public", AvailabilityStatus: "A"}, ""},
		{"missing access", RawPerformance{}, `access ""`},
		{"sold out status", RawPerformance{Access: "public", AvailabilityStatus: "S"}, "availability sold out"},
		{"unavailable status", RawPerformance{Access: "public", AvailabilityStatus: "u"}, "availability unavailable"},
		{"cancelled flag", RawPerformance{Access: "public", Cancelled: true}, "cancelled"},
		{"sold out flag", RawPerformance{Access: "public", SoldOut: "yes"}, "sold out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, excludeReason(tt.perf))
		})
	}
}
