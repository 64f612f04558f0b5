package builder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/recurrence"
	"github.com/sinclairt/schedulable/internal/scheduler/repository"
)

// Friday 15 March 2024, 10:30 UTC.
var ref = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

var owner = entity.Owner{Type: "report", ID: 7}

func newBuilder(t *testing.T, store Store) *Builder {
	t.Helper()
	b, err := New(context.Background(), store, owner, WithClock(func() time.Time { return ref }))
	require.NoError(t, err)
	return b
}

func TestNew_WithoutSchedule(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))

	assert.False(t, b.HasSchedule())
	assert.Nil(t, b.Schedule())
	assert.Equal(t, entity.CategoryMinutely, b.Category())
	assert.Equal(t, owner, b.Owner())
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name     string
		category entity.Category
		setup    func(*Builder)
		want     []string
	}{
		{"hourly", entity.CategoryHourly, func(*Builder) {}, []string{"minute"}},
		{"daily", entity.CategoryDaily, func(b *Builder) { b.SetMinute(5) }, []string{"hour"}},
		{"weekly", entity.CategoryWeekly, func(*Builder) {}, []string{"day_of_week", "hour", "minute"}},
		{"monthly", entity.CategoryMonthly, func(b *Builder) { b.SetDayOfWeek(2) }, []string{"day_of_month", "hour", "minute"}},
		{"quarterly", entity.CategoryQuarterly, func(*Builder) {}, []string{"day_of_month", "hour", "minute"}},
		{"annually", entity.CategoryAnnually, func(b *Builder) { b.SetHour(0) }, []string{"minute", "day_of_month", "month_of_year"}},
		{"adhoc", entity.CategoryAdhoc, func(*Builder) {}, []string{"minute", "hour", "day_of_month", "month_of_year", "year"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
			require.NoError(t, b.SetCategory(tt.category))
			tt.setup(b)

			_, err := b.Save(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingRequiredFields)

			var missing *MissingRequiredFieldsError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.want, missing.Fields)
			assert.Equal(t, tt.category, missing.Category)
		})
	}
}

func TestSave_ZeroIsAValue(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	saved, err := b.Hourly().SetMinute(0).Save(context.Background())
	require.NoError(t, err)

	require.NotNil(t, saved.Minute)
	assert.Equal(t, 0, *saved.Minute)
	require.NotNil(t, saved.NextRunAt)
	assert.True(t, time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC).Equal(*saved.NextRunAt))
}

func TestSave_StripsIrrelevantFields(t *testing.T) {
	store := repository.NewMemoryScheduleRepository(nil)
	b := newBuilder(t, store)

	saved, err := b.Daily().
		SetMinute(15).
		SetHour(9).
		SetDayOfWeek(3).
		SetDayOfMonth(12).
		SetYear(2030).
		SetLastDayOfMonth(true).
		Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15, *saved.Minute)
	assert.Equal(t, 9, *saved.Hour)
	assert.Nil(t, saved.DayOfWeek)
	assert.Nil(t, saved.DayOfMonth)
	assert.Nil(t, saved.Year)
	assert.False(t, saved.IsLastDayOfMonth)
	assert.Equal(t, "report", saved.SchedulableType)
	assert.Equal(t, uint(7), saved.SchedulableID)
	assert.True(t, b.HasSchedule())

	stored, err := store.FindByOwner(context.Background(), "report", 7)
	require.NoError(t, err)
	assert.Nil(t, stored.DayOfWeek)
	assert.True(t, time.Date(2024, 3, 16, 9, 15, 0, 0, time.UTC).Equal(*stored.NextRunAt))
}

func TestSave_UpdatesLoadedSchedule(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryScheduleRepository(nil)

	first, err := newBuilder(t, store).Hourly().SetMinute(5).Save(ctx)
	require.NoError(t, err)

	b := newBuilder(t, store)
	require.True(t, b.HasSchedule())
	assert.Equal(t, entity.CategoryHourly, b.Category())
	assert.Equal(t, 5, *b.Minute())

	second, err := b.Weekly().SetDayOfWeek(1).SetHour(8).Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.CategoryWeekly, all[0].Category)
	assert.True(t, time.Date(2024, 3, 18, 8, 5, 0, 0, time.UTC).Equal(*all[0].NextRunAt))
}

func TestSave_LastDayOfMonthSatisfiesDayOfMonth(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	saved, err := b.Monthly().SetLastDayOfMonth(true).SetHour(23).SetMinute(0).Save(context.Background())
	require.NoError(t, err)

	assert.Nil(t, saved.DayOfMonth)
	assert.True(t, saved.IsLastDayOfMonth)
	assert.True(t, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC).Equal(*saved.NextRunAt))
}

func TestSave_RejectsImpossibleDate(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	_, err := b.Annually().SetMonthOfYear(2).SetDayOfMonth(31).SetHour(0).SetMinute(0).Save(context.Background())
	assert.ErrorIs(t, err, recurrence.ErrInvalidExpression)

	_, err = b.Hourly().SetMinute(75).Save(context.Background())
	assert.ErrorIs(t, err, recurrence.ErrInvalidExpression)
}

func TestSave_ActivityWindow(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	starts, expires := ref.Add(time.Hour), ref

	_, err := b.SetStartsAt(&starts).SetExpiresAt(&expires).Save(context.Background())
	assert.ErrorIs(t, err, ErrInvalidActivityWindow)

	expires = ref.AddDate(0, 1, 0)
	saved, err := b.SetExpiresAt(&expires).Save(context.Background())
	require.NoError(t, err)
	assert.True(t, starts.Equal(*saved.NextRunAt), "first run waits for the window to open")
}

func TestSave_WithoutOwner(t *testing.T) {
	b, err := New(context.Background(), repository.NewMemoryScheduleRepository(nil), nil)
	require.NoError(t, err)

	_, err = b.Save(context.Background())
	assert.ErrorIs(t, err, ErrNoOwner)
	assert.ErrorIs(t, b.Load(context.Background()), ErrNoOwner)
}

func TestCategory_MutuallyExclusive(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))

	b.Weekly()
	assert.True(t, b.Is(entity.CategoryWeekly))
	b.Daily()
	assert.True(t, b.Is(entity.CategoryDaily))
	assert.False(t, b.Is(entity.CategoryWeekly))

	for _, c := range entity.Categories {
		require.NoError(t, b.SetCategory(c))
		active := 0
		for _, other := range entity.Categories {
			if b.Is(other) {
				active++
			}
		}
		assert.Equal(t, 1, active)
	}

	assert.ErrorIs(t, b.SetCategory("fortnightly"), ErrUnknownCategory)
	assert.Equal(t, entity.CategoryAdhoc, b.Category())
}

func TestGetSet(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))

	f, err := ParseField("day_of_week")
	require.NoError(t, err)
	require.NoError(t, b.Set(f, entity.Int(4)))
	v, err := b.Get(f)
	require.NoError(t, err)
	assert.Equal(t, 4, *v)
	assert.Equal(t, 4, *b.DayOfWeek())

	require.NoError(t, b.Set(f, nil))
	v, err = b.Get(f)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseField("second")
	assert.ErrorIs(t, err, ErrUnknownProperty)
	_, err = b.Get(entity.Field(42))
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.ErrorIs(t, b.Set(entity.Field(-1), entity.Int(1)), ErrUnknownProperty)
	assert.ErrorIs(t, b.Set(entity.FieldHour, entity.Int(24)), recurrence.ErrInvalidExpression)

	b.SetFrequencyN(-3)
	assert.Equal(t, 0, b.FrequencyN())
}

func TestLoadFromCron(t *testing.T) {
	tests := []struct {
		expr     string
		want     map[entity.Field]int
		category entity.Category
	}{
		{"@hourly", map[entity.Field]int{entity.FieldMinute: 0}, entity.CategoryHourly},
		{"@daily", map[entity.Field]int{entity.FieldMinute: 0, entity.FieldHour: 0}, entity.CategoryDaily},
		{"@weekly", map[entity.Field]int{entity.FieldMinute: 0, entity.FieldHour: 0, entity.FieldDayOfWeek: 0}, entity.CategoryWeekly},
		{"@monthly", map[entity.Field]int{entity.FieldMinute: 0, entity.FieldHour: 0, entity.FieldDayOfMonth: 1}, entity.CategoryMonthly},
		{"@annually", map[entity.Field]int{entity.FieldMinute: 0, entity.FieldHour: 0, entity.FieldDayOfMonth: 1, entity.FieldMonthOfYear: 1}, entity.CategoryAnnually},
		{"@yearly", map[entity.Field]int{entity.FieldMinute: 0, entity.FieldHour: 0, entity.FieldDayOfMonth: 1, entity.FieldMonthOfYear: 1}, entity.CategoryAnnually},
		{"0 0 1 1 *", map[entity.Field]int{entity.FieldMinute: 0, entity.FieldHour: 0, entity.FieldDayOfMonth: 1, entity.FieldMonthOfYear: 1}, entity.CategoryMinutely},
		{"30 14 * * 5", map[entity.Field]int{entity.FieldMinute: 30, entity.FieldHour: 14, entity.FieldDayOfWeek: 5}, entity.CategoryMinutely},
		{"* * * * *", map[entity.Field]int{}, entity.CategoryMinutely},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
			require.NoError(t, b.LoadFromCron(tt.expr))

			assert.Equal(t, tt.category, b.Category())
			for _, f := range []entity.Field{entity.FieldMinute, entity.FieldHour, entity.FieldDayOfMonth, entity.FieldMonthOfYear, entity.FieldDayOfWeek} {
				got, err := b.Get(f)
				require.NoError(t, err)
				if want, ok := tt.want[f]; ok {
					require.NotNilf(t, got, "%s", f)
					assert.Equalf(t, want, *got, "%s", f)
				} else {
					assert.Nilf(t, got, "%s", f)
				}
			}
		})
	}
}

func TestLoadFromCron_LiteralDoesNotSetCategory(t *testing.T) {
	alias := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	require.NoError(t, alias.LoadFromCron("@annually"))
	literal := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	require.NoError(t, literal.LoadFromCron("0 0 1 1 *"))

	for _, f := range entity.Fields {
		a, _ := alias.Get(f)
		l, _ := literal.Get(f)
		assert.Equal(t, a, l, f.String())
	}
	assert.True(t, alias.Is(entity.CategoryAnnually))
	assert.False(t, literal.Is(entity.CategoryAnnually))
}

func TestLoadFromCron_ClearsLastDayOfMonth(t *testing.T) {
	b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	saved, err := b.Monthly().SetLastDayOfMonth(true).SetHour(0).SetMinute(0).Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0 0 L * * *", saved.CompiledExpression())

	require.NoError(t, b.LoadFromCron("0 0 1 * *"))
	assert.False(t, b.LastDayOfMonth())

	saved, err = b.Save(context.Background())
	require.NoError(t, err)
	assert.False(t, saved.IsLastDayOfMonth)
	assert.Equal(t, "0 0 1 * * *", saved.CompiledExpression())
	assert.True(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Equal(*saved.NextRunAt))
}

func TestLoadFromCron_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"1 2 3",
		"0 0 1 1 * 2024",
		"*/5 * * * *",
		"1,2 * * * *",
		"1-5 * * * *",
		"0 0 ? * *",
		"0 0 * JAN *",
		"60 * * * *",
		"0 0 31 2 *",
		"0 0 31 4 *",
		"@every 1h",
		"@midnight",
		"@reboot",
	}
	for _, expr := range invalid {
		b := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
		b.Daily().SetHour(9).SetMinute(15)

		err := b.LoadFromCron(expr)
		assert.ErrorIsf(t, err, recurrence.ErrInvalidExpression, "%q", expr)
		assert.Equal(t, 9, *b.Hour(), "draft is untouched after a failed import")
		assert.True(t, b.Is(entity.CategoryDaily))
	}
}

func TestReset_MatchesFreshBuilder(t *testing.T) {
	starts := ref
	used := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	used.Adhoc().SetYear(2030).SetMonthOfYear(6).SetDayOfMonth(1).SetHour(3).SetMinute(4).
		SetLastDayOfMonth(true).SetFrequencyN(2).SetStartsAt(&starts)

	used.Reset()
	assert.Equal(t, entity.CategoryMinutely, used.Category())
	assert.Nil(t, used.StartsAt())
	assert.Equal(t, 0, used.FrequencyN())

	used.Weekly().SetDayOfWeek(2).SetHour(7).SetMinute(45)
	fresh := newBuilder(t, repository.NewMemoryScheduleRepository(nil))
	fresh.Weekly().SetDayOfWeek(2).SetHour(7).SetMinute(45)

	assert.Equal(t, fresh.Draft(), used.Draft())
}

func TestReset_KeepsBinding(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryScheduleRepository(nil)
	saved, err := newBuilder(t, store).Hourly().SetMinute(5).Save(ctx)
	require.NoError(t, err)

	b := newBuilder(t, store)
	b.Reset()
	assert.True(t, b.HasSchedule())
	assert.Equal(t, owner, b.Owner())

	again, err := b.Daily().SetHour(1).SetMinute(2).Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryScheduleRepository(nil)
	b := newBuilder(t, store)

	_, err := b.Hourly().SetMinute(20).Save(ctx)
	require.NoError(t, err)
	b.SetMinute(40)

	fresh, err := b.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, fresh.HasSchedule())
	assert.Equal(t, 20, *fresh.Minute())
	assert.Equal(t, 40, *b.Minute())
}

func TestLoadFromSchedule(t *testing.T) {
	s := &entity.Schedule{
		ID:              3,
		SchedulableType: "invoice",
		SchedulableID:   9,
		Category:        entity.CategoryDaily,
		Hour:            entity.Int(6),
		Minute:          entity.Int(0),
	}
	b, err := New(context.Background(), repository.NewMemoryScheduleRepository(nil), nil)
	require.NoError(t, err)

	b.LoadFromSchedule(s)
	assert.True(t, b.HasSchedule())
	assert.Equal(t, 6, *b.Hour())

	b.SetHour(7)
	assert.Equal(t, 6, *s.Hour, "the loaded schedule is copied")
}
