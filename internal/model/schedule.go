package model

// ClassDefinition is one recurring class in a schedule.
type ClassDefinition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Code      string   `json:"code,omitempty"`
	Professor string   `json:"professor,omitempty"`
	Location  string   `json:"location,omitempty"`
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Color     string   `json:"color,omitempty"`
}

// DateRange is an inclusive "YYYY-MM-DD" span.
type DateRange struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Contains reports whether the "YYYY-MM-DD" date falls inside the range.
// The format sorts lexicographically, so string comparison is enough.
func (r DateRange) Contains(date string) bool {
	return date >= r.StartDate && date <= r.EndDate
}

// ClassScheduleData describes a semester worth of recurring classes. It is
// consulted only when generating tasks and when checking for duplicates.
type ClassScheduleData struct {
	Semester DateRange         `json:"semester"`
	Breaks   []DateRange       `json:"breaks"`
	Classes  []ClassDefinition `json:"classes"`
}
