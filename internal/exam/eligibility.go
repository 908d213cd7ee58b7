package exam

import (
	"fmt"
	"time"
)

// Window composes the schedule's date and start/end times in loc. The stored
// values are naive; attaching the location is what makes the comparison
// meaningful, so a nil location is invalid input and the check fails closed.
func (s Schedule) Window(loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: no time zone", ErrValidation)
	}
	const layout = "2006-01-02 15:04"
	start, err = time.ParseInLocation(layout, s.ScheduledDate+" "+s.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad start time: %v", ErrValidation, err)
	}
	end, err = time.ParseInLocation(layout, s.ScheduledDate+" "+s.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad end time: %v", ErrValidation, err)
	}
	return start, end, nil
}

// Live reports whether now falls inside the exam window. Errors (including a
// nil location) read as not live.
func (s Schedule) Live(now time.Time, loc *time.Location) bool {
	start, end, err := s.Window(loc)
	if err != nil {
		return false
	}
	return !now.Before(start) && !now.After(end)
}

// CheckEligibility is the access predicate for a student sitting a schedule.
// It is side-effect free and evaluated fresh on every request: the window is
// time-sensitive and must not be cached.
func CheckEligibility(s Schedule, studentID string, now time.Time, loc *time.Location) error {
	assigned := false
	for _, id := range s.StudentIDs {
		if id == studentID {
			assigned = true
			break
		}
	}
	if !assigned {
		return fmt.Errorf("%w: you are not assigned to this exam", ErrNotEligible)
	}
	if !s.Live(now, loc) {
		return fmt.Errorf("%w: exam is not available at this time", ErrNotEligible)
	}
	return nil
}
