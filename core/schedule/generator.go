package schedule

import "time"

// Generate expands a RecurrenceSpec into an ordered list of candidate
// Sessions, one per calendar date in [DateRangeStart, DateRangeEnd] whose
// weekday is in DaysOfWeek. It is a pure function of the spec: running it
// twice yields identical output. Candidates carry no ID; IDs are assigned
// when the caller commits accepted candidates to the repository.
//
// Generate does not check conflicts; callers run candidates through
// FilterBulk (or FindConflicts) before committing.
func Generate(spec RecurrenceSpec) ([]Session, error) {
	if _, err := DurationMinutes(spec.StartTime, spec.EndTime); err != nil {
		return nil, err
	}

	days := make(map[time.Weekday]bool, len(spec.DaysOfWeek))
	for _, d := range spec.DaysOfWeek {
		days[d] = true
	}

	start := DateOnly(spec.DateRangeStart)
	end := DateOnly(spec.DateRangeEnd)

	// an inverted range yields no candidates, not an error
	sessions := make([]Session, 0)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !days[date.Weekday()] {
			continue
		}
		sessions = append(sessions, Session{
			TemplateID:   spec.Template.ID,
			TeacherID:    spec.Template.TeacherID,
			TeacherName:  spec.Template.TeacherName,
			LocationID:   spec.Template.LocationID,
			ClassName:    spec.Template.ClassName,
			Subject:      spec.Template.Subject,
			Capacity:     spec.Template.Capacity,
			StudentCount: spec.Template.Enrolled,
			Date:         date,
			StartTime:    spec.StartTime,
			EndTime:      spec.EndTime,
			Status:       StatusScheduled,
			CreatedBy:    spec.CreatedBy,
		})
	}
	return sessions, nil
}
