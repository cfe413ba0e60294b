// Package schedule computes next-execution instants for recurring task
// schedules. All arithmetic is done in UTC; cron-expression schedules may
// carry their own timezone.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	cronv3 "github.com/robfig/cron/v3"

	"bizflow/apps/orchestrator/internal/domain"
)

// Next returns the next execution instant strictly after ref, unless the
// schedule's start_at is itself in the future, in which case start_at is
// returned unchanged. Day-of-week uses Go's numbering (Sunday=0). A
// day_of_month larger than the target month is clamped to the month's last
// day. Unrecognized frequencies fall back to daily.
func Next(spec domain.ScheduleSpec, ref time.Time) (time.Time, error) {
	ref = ref.UTC()
	startAt := parseStartAt(spec.StartAt, ref)
	if startAt.After(ref) {
		return startAt, nil
	}

	switch strings.ToLower(strings.TrimSpace(spec.Frequency)) {
	case domain.FrequencyHourly:
		return ref.Truncate(time.Hour).Add(time.Hour), nil
	case domain.FrequencyWeekly:
		return nextWeekly(spec, startAt, ref), nil
	case domain.FrequencyMonthly:
		return nextMonthly(spec, startAt, ref), nil
	case domain.FrequencyCron:
		return nextCron(spec, ref)
	default:
		return nextDaily(startAt, ref), nil
	}
}

func parseStartAt(raw string, ref time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ref
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return ref
	}
	return t.UTC()
}

func nextDaily(startAt, ref time.Time) time.Time {
	d := ref.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), startAt.Hour(), startAt.Minute(), 0, 0, time.UTC)
}

func nextWeekly(spec domain.ScheduleSpec, startAt, ref time.Time) time.Time {
	target := int(startAt.Weekday())
	if spec.DayOfWeek != nil {
		target = *spec.DayOfWeek
	}
	daysAhead := target - int(ref.Weekday())
	// A zero or negative offset means the target weekday is today or already
	// past this week; the result must never be "today".
	if daysAhead <= 0 {
		daysAhead += 7
	}
	d := ref.AddDate(0, 0, daysAhead)
	return time.Date(d.Year(), d.Month(), d.Day(), startAt.Hour(), startAt.Minute(), 0, 0, time.UTC)
}

func nextMonthly(spec domain.ScheduleSpec, startAt, ref time.Time) time.Time {
	dayOfMonth := startAt.Day()
	if spec.DayOfMonth != nil {
		dayOfMonth = *spec.DayOfMonth
	}

	year, month := ref.Year(), ref.Month()
	if ref.Day() >= dayOfMonth {
		if month == time.December {
			year, month = year+1, time.January
		} else {
			month++
		}
	}
	day := dayOfMonth
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, startAt.Hour(), startAt.Minute(), 0, 0, time.UTC)
}

func nextCron(spec domain.ScheduleSpec, ref time.Time) (time.Time, error) {
	expr := strings.TrimSpace(spec.Expr)
	if expr == "" {
		return time.Time{}, errors.New("schedule expr is required for frequency=cron")
	}
	loc := time.UTC
	if tz := strings.TrimSpace(spec.Timezone); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid schedule timezone=%q", spec.Timezone)
		}
		loc = parsed
	}
	parser := cronv3.NewParser(cronv3.SecondOptional | cronv3.Minute | cronv3.Hour | cronv3.Dom | cronv3.Month | cronv3.Dow | cronv3.Descriptor)
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	return sched.Next(ref.In(loc)).UTC(), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
