package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

var baseTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func assessment(kind scoring.Kind, subject string, offset int) model.Assessment {
	return model.Assessment{
		ID:         uuid.New(),
		Kind:       kind,
		SubjectID:  subject,
		Score:      float64(offset),
		RiskLevel:  scoring.LevelLow,
		Input:      []byte(`{}`),
		AssessedAt: baseTime.Add(time.Duration(offset) * time.Second),
	}
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := assessment(scoring.KindCardiac, "p1", 1)
	require.NoError(t, s.Save(ctx, a))

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("saving the same id twice is a no-op", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, a))
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestMemoryStore_RingOverwritesOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithCapacity(3))
	assert.Equal(t, 3, s.Capacity())

	var saved []model.Assessment
	for i := 0; i < 5; i++ {
		a := assessment(scoring.KindFatigue, "", i)
		saved = append(saved, a)
		require.NoError(t, s.Save(ctx, a))
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, old := range saved[:2] {
		_, err := s.Get(ctx, old.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, saved[4].ID, list[0].ID)
	assert.Equal(t, saved[3].ID, list[1].ID)
	assert.Equal(t, saved[2].ID, list[2].ID)
}

func TestMemoryStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, assessment(scoring.KindCardiac, "p1", 1)))
	require.NoError(t, s.Save(ctx, assessment(scoring.KindFatigue, "p1", 2)))
	require.NoError(t, s.Save(ctx, assessment(scoring.KindCardiac, "p2", 3)))
	require.NoError(t, s.Save(ctx, assessment(scoring.KindCardiac, "p1", 4)))

	tests := []struct {
		name   string
		filter Filter
		want   []float64 // scores, newest first
	}{
		{"all", Filter{}, []float64{4, 3, 2, 1}},
		{"by kind", Filter{Kind: scoring.KindCardiac}, []float64{4, 3, 1}},
		{"by subject", Filter{SubjectID: "p1"}, []float64{4, 2, 1}},
		{"kind and subject", Filter{Kind: scoring.KindCardiac, SubjectID: "p1"}, []float64{4, 1}},
		{"limit", Filter{Limit: 2}, []float64{4, 3}},
		{"no match", Filter{SubjectID: "nobody"}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]float64, 0, len(list))
			for _, a := range list {
				got = append(got, a.Score)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Normalize(t *testing.T) {
	f, err := Filter{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, f.Limit)

	_, err = Filter{Limit: -1}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = Filter{Limit: MaxListLimit + 1}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidLimit)

	f, err = Filter{Limit: MaxListLimit}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, f.Limit)

	_, err = Filter{Kind: "renal"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = Filter{MinLevel: "Severe"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestMemoryStore_ListMinLevel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i, level := range []scoring.Level{scoring.LevelLow, scoring.LevelCritical, scoring.LevelModerate, scoring.LevelHigh} {
		a := assessment(scoring.KindCardiac, "p1", i+1)
		a.RiskLevel = level
		require.NoError(t, s.Save(ctx, a))
	}

	tests := []struct {
		min  scoring.Level
		want []scoring.Level
	}{
		{scoring.LevelLow, []scoring.Level{scoring.LevelHigh, scoring.LevelModerate, scoring.LevelCritical, scoring.LevelLow}},
		{scoring.LevelModerate, []scoring.Level{scoring.LevelHigh, scoring.LevelModerate, scoring.LevelCritical}},
		{scoring.LevelHigh, []scoring.Level{scoring.LevelHigh, scoring.LevelCritical}},
		{scoring.LevelCritical, []scoring.Level{scoring.LevelCritical}},
	}
	for _, tt := range tests {
		t.Run(tt.min.String(), func(t *testing.T) {
			list, err := s.List(ctx, Filter{MinLevel: tt.min})
			require.NoError(t, err)
			got := make([]scoring.Level, 0, len(list))
			for _, a := range list {
				got = append(got, a.RiskLevel)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore_Close(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := assessment(scoring.KindCardiac, "", 1)
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Save(ctx, assessment(scoring.KindCardiac, "", 2)), ErrClosed)

	_, err := s.Get(ctx, a.ID)
	assert.NoError(t, err)
}

func TestMemoryStore_Ping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Ping(ctx), ErrClosed)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithCapacity(100))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = s.Save(ctx, assessment(scoring.KindCardiac, fmt.Sprintf("p%d", g), i))
				_, _ = s.List(ctx, Filter{Limit: 10})
			}
		}(g)
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}
