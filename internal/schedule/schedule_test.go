package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFollowUp(t *testing.T) {
	date := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	event := BuildFollowUp("rx-1", "p1", "김철수", date)

	assert.Equal(t, "prescription-rx-1", event.ID)
	assert.Equal(t, "재처방 상담(자동생성) - 김철수", event.Title)
	assert.Equal(t, date, event.Start)
	assert.True(t, event.AllDay)
	assert.Equal(t, "#8b5cf6", event.BackgroundColor)
	assert.Equal(t, "#8b5cf6", event.BorderColor)
	assert.Equal(t, EventTypeFollowUp, event.Type)
	assert.Equal(t, "p1", event.PatientID)
}

func TestInMemoryRepositoryCreateAndListRange(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	dates := []string{"2024-03-10", "2024-03-16", "2024-04-02"}
	for i, day := range dates {
		start, err := time.Parse("2006-01-02", day)
		require.NoError(t, err)
		event := BuildFollowUp(string(rune('a'+i)), "p1", "김철수", start)
		require.NoError(t, repo.Create(ctx, &event))
	}

	events, err := repo.ListRange(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Start.Before(events[1].Start))

	all, err := repo.ListRange(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemoryRepositoryDuplicateID(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	event := BuildFollowUp("rx-1", "p1", "김철수", time.Now())
	require.NoError(t, repo.Create(ctx, &event))

	err := repo.Create(ctx, &event)
	assert.ErrorIs(t, err, ErrEventExists)
}
