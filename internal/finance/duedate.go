package finance

import (
	"fmt"
	"time"
)

// Urgency is the badge severity for a due date.
type Urgency string

const (
	UrgencyError   Urgency = "error"
	UrgencyWarning Urgency = "warning"
	UrgencyInfo    Urgency = "info"
	UrgencyDefault Urgency = "default"
)

// DefaultDueSoonWindow is the horizon, in days, for "due soon".
const DefaultDueSoonWindow = 7

// parseDate accepts RFC3339 or plain YYYY-MM-DD and strips the time of day.
func parseDate(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		t, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return time.Time{}, false
		}
	}
	return midnight(t), true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntilDue returns the signed day difference between the due date and
// today (negative = overdue). ok is false for an empty or unparseable date.
func DaysUntilDue(dateStr string) (days int, ok bool) {
	return DaysUntilDueAt(dateStr, time.Now())
}

// DaysUntilDueAt is DaysUntilDue against an explicit "today".
func DaysUntilDueAt(dateStr string, now time.Time) (int, bool) {
	due, ok := parseDate(dateStr)
	if !ok {
		return 0, false
	}
	return int(due.Sub(midnight(now)).Hours() / 24), true
}

// IsOverdue reports whether the date is strictly in the past.
func IsOverdue(dateStr string) bool { return IsOverdueAt(dateStr, time.Now()) }

// IsOverdueAt is IsOverdue against an explicit "today".
func IsOverdueAt(dateStr string, now time.Time) bool {
	days, ok := DaysUntilDueAt(dateStr, now)
	return ok && days < 0
}

// IsDueToday reports whether the date is today.
func IsDueToday(dateStr string) bool { return IsDueTodayAt(dateStr, time.Now()) }

// IsDueTodayAt is IsDueToday against an explicit "today".
func IsDueTodayAt(dateStr string, now time.Time) bool {
	days, ok := DaysUntilDueAt(dateStr, now)
	return ok && days == 0
}

// IsDueSoon reports whether the date falls within the next withinDays days.
// Today itself is excluded — it is its own category.
func IsDueSoon(dateStr string, withinDays int) bool {
	return IsDueSoonAt(dateStr, withinDays, time.Now())
}

// IsDueSoonAt is IsDueSoon against an explicit "today".
func IsDueSoonAt(dateStr string, withinDays int, now time.Time) bool {
	days, ok := DaysUntilDueAt(dateStr, now)
	return ok && days > 0 && days <= withinDays
}

// ClassifyUrgency maps a due date to a badge severity: overdue or due today →
// error, within 3 days → warning, within 7 → info, else (or no date) default.
func ClassifyUrgency(dateStr string) Urgency { return ClassifyUrgencyAt(dateStr, time.Now()) }

// ClassifyUrgencyAt is ClassifyUrgency against an explicit "today".
func ClassifyUrgencyAt(dateStr string, now time.Time) Urgency {
	days, ok := DaysUntilDueAt(dateStr, now)
	switch {
	case !ok:
		return UrgencyDefault
	case days <= 0:
		return UrgencyError
	case days <= 3:
		return UrgencyWarning
	case days <= DefaultDueSoonWindow:
		return UrgencyInfo
	default:
		return UrgencyDefault
	}
}

// FormatDueDate renders a due date as a human sentence.
func FormatDueDate(dateStr string) string { return FormatDueDateAt(dateStr, time.Now()) }

// FormatDueDateAt is FormatDueDate against an explicit "today".
func FormatDueDateAt(dateStr string, now time.Time) string {
	days, ok := DaysUntilDueAt(dateStr, now)
	if !ok {
		return "No upcoming payment"
	}

	switch {
	case days < 0:
		if days == -1 {
			return "Overdue by 1 day"
		}
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == 0:
		return "Due TODAY"
	case days == 1:
		return "Due tomorrow"
	case days <= DefaultDueSoonWindow:
		return fmt.Sprintf("Due in %d days", days)
	default:
		due, _ := parseDate(dateStr)
		return due.Format("Jan 2, 2006")
	}
}
