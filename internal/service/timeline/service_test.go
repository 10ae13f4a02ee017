package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"subsidyledger/internal/model"
)

func TestMergeTimelineOrdersByTimestamp(t *testing.T) {
	t0 := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	events := []model.Event{
		{ID: 3, TS: t0.Add(2 * time.Hour), Type: model.EventAttestationSubmitted},
		{ID: 1, TS: t0, Type: model.EventProgramCreated},
		{ID: 2, TS: t0.Add(time.Hour), Type: model.EventProjectApplied},
	}

	merged := MergeTimeline(events)

	assert.Equal(t, []string{
		model.EventProgramCreated,
		model.EventProjectApplied,
		model.EventAttestationSubmitted,
	}, []string{merged[0].Type, merged[1].Type, merged[2].Type})
}

func TestMergeTimelineTiesBreakOnInsertionID(t *testing.T) {
	ts := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	events := []model.Event{
		{ID: 9, TS: ts, Type: model.EventDisbursementQueued},
		{ID: 4, TS: ts, Type: model.EventAttestationSubmitted},
	}

	merged := MergeTimeline(events)
	assert.Equal(t, int64(4), merged[0].ID)
	assert.Equal(t, int64(9), merged[1].ID)
}

func TestMergeTimelineEmpty(t *testing.T) {
	assert.Empty(t, MergeTimeline(nil))
}
