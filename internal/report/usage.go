package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/seatutor/internal/store"
)

// UsageLevel grades today's usage against the global limit.
type UsageLevel string

const (
	UsageHealthy  UsageLevel = "healthy"
	UsageHigh     UsageLevel = "high"     // above 70 %
	UsageCritical UsageLevel = "critical" // above 90 %
)

const (
	trendDays      = 30
	topTodayCount  = 10
	overagePer1000 = 0.01
)

// Window is usage over a period against its allowance.
type Window struct {
	Used    int
	Limit   int
	Percent float64
}

func newWindow(used, limit int) Window {
	return Window{Used: used, Limit: limit, Percent: percent(used, limit)}
}

// StudentCount is a student's question count.
type StudentCount struct {
	StudentID string
	Name      string
	Count     int
}

// Usage is the system usage view. The week starts on Monday; week and
// month allowances are 7 and 30 times the daily limit.
type Usage struct {
	Today Window
	Week  Window
	Month Window
	Level UsageLevel

	// OverageCost estimates the spend on questions beyond the monthly
	// allowance, in dollars.
	OverageCost float64

	Trend    []DayCount // last 30 days with activity, oldest first
	TopToday []StudentCount
}

// Usage builds the usage view from the daily aggregate.
func (b *Builder) Usage(ctx context.Context) (*Usage, error) {
	now := b.now()
	today := b.startOfDay(now)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, b.opts.Location)
	trendStart := today.AddDate(0, 0, -(trendDays - 1))

	from := monthStart
	if trendStart.Before(from) {
		from = trendStart
	}
	if weekStart.Before(from) {
		from = weekStart
	}

	rows, err := b.src.GlobalUsageSince(ctx, store.DayKey(from))
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}

	todayKey := store.DayKey(today)
	weekKey := store.DayKey(weekStart)
	monthKey := store.DayKey(monthStart)
	trendKey := store.DayKey(trendStart)

	var usedToday, usedWeek, usedMonth int
	days := make(map[string]int)
	for _, r := range rows {
		if r.Day == todayKey {
			usedToday += r.Turns
		}
		if r.Day >= weekKey && r.Day <= todayKey {
			usedWeek += r.Turns
		}
		if r.Day >= monthKey && r.Day <= todayKey {
			usedMonth += r.Turns
		}
		if r.Day >= trendKey && r.Day <= todayKey {
			days[r.Day] += r.Turns
		}
	}

	limit := b.opts.GlobalLimit
	u := &Usage{
		Today: newWindow(usedToday, limit),
		Week:  newWindow(usedWeek, limit*7),
		Month: newWindow(usedMonth, limit*30),
		Level: usageLevel(usedToday, limit),
		Trend: sortedDays(days),
	}
	if excess := usedMonth - limit*30; excess > 0 {
		u.OverageCost = float64(excess) / 1000 * overagePer1000
	}

	u.TopToday, err = b.topToday(ctx, today)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func usageLevel(used, limit int) UsageLevel {
	switch {
	case float64(used) > float64(limit)*0.9:
		return UsageCritical
	case float64(used) > float64(limit)*0.7:
		return UsageHigh
	default:
		return UsageHealthy
	}
}

// topToday ranks today's most active students from the activity ledger.
func (b *Builder) topToday(ctx context.Context, today time.Time) ([]StudentCount, error) {
	activity, err := b.src.QueryActivity(ctx, store.ActivityFilter{From: today, To: today.AddDate(0, 0, 1)})
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	counts := make(map[string]*StudentCount)
	for _, a := range activity {
		c, ok := counts[a.StudentID]
		if !ok {
			c = &StudentCount{StudentID: a.StudentID, Name: a.StudentName}
			counts[a.StudentID] = c
		}
		c.Count++
	}

	out := make([]StudentCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topTodayCount {
		out = out[:topTodayCount]
	}
	return out, nil
}
