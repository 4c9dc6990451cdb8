package domain

import (
	"slices"
	"time"
)

// DayPlan is one calendar day of the itinerary with the activities filed on it.
// It is a read projection; it is never stored.
type DayPlan struct {
	Date       time.Time
	Activities []Activity
}

// Itinerary groups the trip's activities by calendar day. Every registered day
// is returned, including days whose activities have all been removed.
// Days are ordered by date; activities within a day by start time, ties kept
// in the order they were added.
func (t Trip) Itinerary() []DayPlan {
	plans := make([]DayPlan, 0, len(t.Days))
	index := make(map[string]int, len(t.Days))
	for _, d := range t.Days {
		key := DayKey(d)
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(plans)
		plans = append(plans, DayPlan{Date: truncateDay(d), Activities: []Activity{}})
	}
	for _, a := range t.Activities {
		key := DayKey(a.Date)
		i, ok := index[key]
		if !ok {
			// Documents written before days were tracked: register on read.
			i = len(plans)
			index[key] = i
			plans = append(plans, DayPlan{Date: truncateDay(a.Date), Activities: []Activity{}})
		}
		plans[i].Activities = append(plans[i].Activities, a)
	}

	slices.SortStableFunc(plans, func(x, y DayPlan) int { return x.Date.Compare(y.Date) })
	for i := range plans {
		slices.SortStableFunc(plans[i].Activities, func(x, y Activity) int {
			switch {
			case x.StartTime < y.StartTime:
				return -1
			case x.StartTime > y.StartTime:
				return 1
			}
			return 0
		})
	}
	return plans
}

// Day returns the plan for the calendar day of date, if that day is registered.
func (t Trip) Day(date time.Time) (DayPlan, bool) {
	key := DayKey(date)
	for _, p := range t.Itinerary() {
		if DayKey(p.Date) == key {
			return p, true
		}
	}
	return DayPlan{}, false
}

// registerDay records the calendar day of date if it is not yet known.
func (t *Trip) registerDay(date time.Time) {
	key := DayKey(date)
	for _, d := range t.Days {
		if DayKey(d) == key {
			return
		}
	}
	t.Days = append(t.Days, truncateDay(date))
}
