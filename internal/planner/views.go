package planner

import "sort"

// SortedAssignments returns a copy ordered by date, then subject name.
func SortedAssignments(assignments []Assignment) []Assignment {
	out := make([]Assignment, len(assignments))
	copy(out, assignments)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// PivotTable is a date by subject grid of assigned hours.
type PivotTable struct {
	Dates    []string             `json:"dates"`
	Subjects []string             `json:"subjects"`
	Cells    map[string][]float64 `json:"cells"`
	Totals   []float64            `json:"totals"`
}

// Pivot groups assignments into one row per date with a column per subject. Subjects
// keep the order in which they first appear; missing cells are zero.
func Pivot(assignments []Assignment) PivotTable {
	table := PivotTable{
		Dates:    make([]string, 0),
		Subjects: make([]string, 0),
		Cells:    make(map[string][]float64),
	}
	column := make(map[string]int)
	for _, a := range assignments {
		if _, ok := column[a.Subject]; !ok {
			column[a.Subject] = len(table.Subjects)
			table.Subjects = append(table.Subjects, a.Subject)
		}
	}

	for _, a := range SortedAssignments(assignments) {
		key := FormatDate(a.Date)
		row, ok := table.Cells[key]
		if !ok {
			row = make([]float64, len(table.Subjects))
			table.Dates = append(table.Dates, key)
		}
		row[column[a.Subject]] = RoundHours(row[column[a.Subject]] + a.Hours)
		table.Cells[key] = row
	}

	table.Totals = make([]float64, len(table.Subjects))
	for _, row := range table.Cells {
		for i, v := range row {
			table.Totals[i] = RoundHours(table.Totals[i] + v)
		}
	}
	return table
}

// DailyTotals sums assigned hours per date, in date order.
func DailyTotals(assignments []Assignment) []DayCapacity {
	out := make([]DayCapacity, 0)
	index := make(map[string]int)
	for _, a := range SortedAssignments(assignments) {
		key := FormatDate(a.Date)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, DayCapacity{Date: Day(a.Date)})
		}
		out[i].Hours = RoundHours(out[i].Hours + a.Hours)
	}
	return out
}
