package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextAfter_WeeklyInSourceTimezone(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	// Wednesday 2024-01-17 12:00 UTC
	now := time.Date(2024, time.January, 17, 12, 0, 0, 0, time.UTC)
	next, err := NextAfter(DefaultSchedule, bangkok, now)
	require.NoError(t, err)

	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, 0, next.Hour())
	// Sunday 00:00 in Bangkok is Saturday 17:00 UTC
	assert.Equal(t, time.Date(2024, time.January, 20, 17, 0, 0, 0, time.UTC), next.UTC())
}

func TestNextAfter_InvalidSpec(t *testing.T) {
	_, err := NextAfter("every sunday", time.UTC, time.Now())
	assert.Error(t, err)
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	noop := RefresherFunc(func(context.Context, string) error { return nil })
	_, err := NewScheduler(noop, "61 * * * *", time.UTC)
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	noop := RefresherFunc(func(context.Context, string) error { return nil })
	s, err := NewScheduler(noop, "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule, s.Spec())

	s.Start(context.Background())
	next := s.Next()
	assert.False(t, next.IsZero())
	assert.Equal(t, time.Sunday, next.Weekday())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_FiresRefresh(t *testing.T) {
	fired := make(chan string, 1)
	r := RefresherFunc(func(_ context.Context, trigger string) error {
		select {
		case fired <- trigger:
		default:
		}
		return nil
	})

	// robfig/cron accepts descriptors alongside standard specs
	s, err := NewScheduler(r, "@every 1s", time.UTC)
	require.NoError(t, err)
	s.Start(context.Background())
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case trigger := <-fired:
		assert.Equal(t, TriggerSchedule, trigger)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled refresh did not fire")
	}
}

func TestServiceRefresher(t *testing.T) {
	store := &memStore{}
	r := ServiceRefresher(NewService(&fakeRunner{events: someEvents()}, store, nil, nil))

	require.NoError(t, r.Refresh(context.Background(), TriggerSchedule))
	assert.Equal(t, 1, store.replaces)
}
