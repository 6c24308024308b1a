package dispatch

import (
	"context"
	"errors"
	"testing"

	"event-reconciler/core/metrics"
	"event-reconciler/core/reconcile"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) ListActive(ctx context.Context, venue string, limit int) ([]reconcile.WorkItem, error) {
	args := m.Called(ctx, venue, limit)
	items, _ := args.Get(0).([]reconcile.WorkItem)
	return items, args.Error(1)
}

type fakeProducer struct {
	published []string
	fail      map[string]error
}

func (p *fakeProducer) Publish(_ context.Context, item reconcile.WorkItem) (string, error) {
	if err := p.fail[item.EventUniqueID]; err != nil {
		return "", err
	}
	p.published = append(p.published, item.EventUniqueID)
	return "1-0", nil
}

func items(ids ...string) []reconcile.WorkItem {
	out := make([]reconcile.WorkItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, reconcile.WorkItem{EventUniqueID: id, Status: reconcile.StatusActive})
	}
	return out
}

func TestDispatcher_Run(t *testing.T) {
	reader := new(mockReader)
	reader.On("ListActive", mock.Anything, "Test Hall", 50).Return(items("a", "b", "c"), nil)
	producer := &fakeProducer{}
	before := testutil.ToFloat64(metrics.Dispatched)

	res, err := NewDispatcher(reader, producer, 50, nil).Run(context.Background(), "Test Hall")
	require.NoError(t, err)
	assert.Equal(t, Result{Read: 3, Published: 3}, res)
	assert.Equal(t, []string{"a", "b", "c"}, producer.published)
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.Dispatched))
	reader.AssertExpectations(t)
}

func TestDispatcher_PublishFailureContinues(t *testing.T) {
	reader := new(mockReader)
	reader.On("ListActive", mock.Anything, "", 0).Return(items("a", "b", "c"), nil)
	producer := &fakeProducer{fail: map[string]error{"b": errors.New("READONLY")}}

	res, err := NewDispatcher(reader, producer, 0, nil).Run(context.Background(), "")
	assert.ErrorContains(t, err, "READONLY")
	assert.Equal(t, Result{Read: 3, Published: 2, Failed: 1}, res)
	assert.Equal(t, []string{"a", "c"}, producer.published)
}

func TestDispatcher_ReadFailure(t *testing.T) {
	reader := new(mockReader)
	reader.On("ListActive", mock.Anything, "", 10).Return(nil, errors.New("db down"))

	res, err := NewDispatcher(reader, &fakeProducer{}, 10, nil).Run(context.Background(), "")
	assert.ErrorContains(t, err, "db down")
	assert.Zero(t, res)
}

func TestDispatcher_Empty(t *testing.T) {
	reader := new(mockReader)
	reader.On("ListActive", mock.Anything, "", 10).Return([]reconcile.WorkItem{}, nil)

	res, err := NewDispatcher(reader, &fakeProducer{}, 10, nil).Run(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, res)
}
