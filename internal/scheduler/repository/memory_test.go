package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/scheduler/predicate"
)

func newSchedule(owner string, id uint, c entity.Category) *entity.Schedule {
	return &entity.Schedule{SchedulableType: owner, SchedulableID: id, Category: c}
}

func TestMemoryScheduleRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScheduleRepository(nil)

	s := newSchedule("report", 7, entity.CategoryHourly)
	s.Minute = entity.Int(0)
	require.NoError(t, repo.Create(ctx, s))
	assert.Equal(t, uint(1), s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	found, err := repo.FindByOwner(ctx, "report", 7)
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)
	assert.Equal(t, 0, *found.Minute)

	found.Minute = entity.Int(30)
	unchanged, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *unchanged.Minute, "stored copies are isolated from callers")
	require.NoError(t, repo.Update(ctx, found))

	again, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, *again.Minute)

	_, err = repo.FindByOwner(ctx, "report", 8)
	assert.ErrorIs(t, err, entity.ErrScheduleNotFound)

	err = repo.Update(ctx, &entity.Schedule{ID: 99})
	assert.ErrorIs(t, err, entity.ErrScheduleNotFound)
}

func TestMemoryScheduleRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScheduleRepository(nil)

	s := newSchedule("report", 1, entity.CategoryMinutely)
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, repo.Delete(ctx, s.ID))

	_, err := repo.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, entity.ErrScheduleNotFound)
	_, err = repo.FindByOwner(ctx, "report", 1)
	assert.ErrorIs(t, err, entity.ErrScheduleNotFound)

	trashed, err := repo.FindByOwnerWithTrashed(ctx, "report", 1)
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	withTrashed, err := repo.QueryWithTrashed(ctx, predicate.True)
	require.NoError(t, err)
	assert.Len(t, withTrashed, 1)

	assert.ErrorIs(t, repo.Delete(ctx, s.ID), entity.ErrScheduleNotFound)
	require.NoError(t, repo.Restore(ctx, s.ID))
	assert.ErrorIs(t, repo.Restore(ctx, s.ID), entity.ErrScheduleNotFound)

	restored, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
}

func TestMemoryScheduleRepository_Query(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryScheduleRepository(nil)

	hourly := newSchedule("report", 1, entity.CategoryHourly)
	hourly.Minute = entity.Int(15)
	daily := newSchedule("report", 2, entity.CategoryDaily)
	daily.Hour, daily.Minute = entity.Int(9), entity.Int(15)
	weekly := newSchedule("report", 3, entity.CategoryWeekly)
	weekly.DayOfWeek, weekly.Hour, weekly.Minute = entity.Int(1), entity.Int(9), entity.Int(15)
	for _, s := range []*entity.Schedule{hourly, daily, weekly} {
		require.NoError(t, repo.Create(ctx, s))
	}

	// Friday
	got, err := repo.Query(ctx, predicate.DueOn(time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC), true))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, hourly.ID, got[0].ID)
	assert.Equal(t, daily.ID, got[1].ID)

	got, err = repo.Query(ctx, predicate.CategoryIs(entity.CategoryWeekly))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, weekly.ID, got[0].ID)
}

func TestMemoryScheduleRepository_SaveRun(t *testing.T) {
	ctx := context.Background()
	runs := NewMemoryScheduleRunRepository()
	repo := NewMemoryScheduleRepository(runs)

	s := newSchedule("report", 1, entity.CategoryMinutely)
	require.NoError(t, repo.Create(ctx, s))

	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ranAt := base.Add(time.Duration(i) * time.Minute)
		next := ranAt.Add(time.Minute)
		s.LastRunAt, s.NextRunAt = &ranAt, &next
		require.NoError(t, repo.SaveRun(ctx, s, &entity.ScheduleRun{ScheduleID: s.ID, RanAt: ranAt, NextRunAt: &next}))
	}

	stored, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, base.Add(2*time.Minute).Equal(*stored.LastRunAt))

	latest, err := runs.FindBySchedule(ctx, s.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].RanAt.After(latest[1].RanAt))

	all, err := runs.FindBySchedule(ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	err = repo.SaveRun(ctx, &entity.Schedule{ID: 42}, &entity.ScheduleRun{ScheduleID: 42})
	assert.ErrorIs(t, err, entity.ErrScheduleNotFound)
}
