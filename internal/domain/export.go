package domain

// ExportRow is a single row in the itinerary export.
// It is a flat, denormalized view: one row per activity, with trip fields
// repeated on every row. A trip with no activities yields one row whose
// activity fields are all empty.
type ExportRow struct {
	// Trip fields, repeated for every activity on the trip.
	TripID        string
	TripTitle     string
	TripStartDate string // "2006-01-02"
	TripEndDate   string // "2006-01-02"

	// Activity fields, empty when the trip has no activities.
	Day       string // "2006-01-02"
	StartTime string
	Title     string
	Type      string
	Location  string
	Cost      float64
	Status    string
}

// ExportRows flattens the itinerary into export rows, in itinerary order.
// Registered days without activities are skipped.
func (t Trip) ExportRows() []ExportRow {
	base := ExportRow{
		TripID:        t.ID.String(),
		TripTitle:     t.Title,
		TripStartDate: DayKey(t.StartDate),
		TripEndDate:   DayKey(t.EndDate),
	}
	var rows []ExportRow
	for _, day := range t.Itinerary() {
		for _, a := range day.Activities {
			r := base
			r.Day = DayKey(day.Date)
			r.StartTime = a.StartTime
			r.Title = a.Title
			r.Type = string(a.Type)
			r.Location = a.Location
			r.Cost = a.Cost
			r.Status = string(a.Status)
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		rows = append(rows, base)
	}
	return rows
}
