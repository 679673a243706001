package budget

import "time"

// MonthWindow returns the first instant of now's month and of the month
// after it, in now's location.
func MonthWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// FilterPeriod returns the transactions dated in [start, end) as a new slice.
func FilterPeriod(transactions []Transaction, start, end time.Time) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Date.Before(start) || !t.Date.Before(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}
