package reminder

import (
	"fmt"
	"sort"
	"strings"

	"week-planner/internal/model"
)

const summaryTaskLimit = 3

// BuildSummary renders the daily-summary notification for today's tasks.
// Pending tasks are listed by time, earliest first; untimed ones follow.
func BuildSummary(day string, tasks []model.Task, forecast *model.Forecast) (title, body string) {
	var completed, pending []model.Task
	for _, task := range tasks {
		if task.Completed {
			completed = append(completed, task)
		} else {
			pending = append(pending, task)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		ti, tj := pending[i].DueTime(), pending[j].DueTime()
		switch {
		case ti == "" && tj == "":
			return false
		case ti == "":
			return false
		case tj == "":
			return true
		default:
			return ti < tj
		}
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Today's summary (%s):\n", day)
	fmt.Fprintf(&sb, "Completed: %d\n", len(completed))
	fmt.Fprintf(&sb, "Pending: %d\n", len(pending))

	if len(pending) > 0 {
		sb.WriteString("\nPending tasks:\n")
		for i, task := range pending {
			if i == summaryTaskLimit {
				fmt.Fprintf(&sb, "- and %d more\n", len(pending)-summaryTaskLimit)
				break
			}
			if due := task.DueTime(); due != "" {
				fmt.Fprintf(&sb, "- %s (%s)\n", task.Title, due)
			} else {
				fmt.Fprintf(&sb, "- %s\n", task.Title)
			}
		}
	}

	if forecast != nil && forecast.Condition != "" {
		fmt.Fprintf(&sb, "\nWeather: %s, %.0f° (high %.0f°, low %.0f°)\n",
			forecast.Condition, forecast.Temperature, forecast.HighTemp, forecast.LowTemp)
	}

	return "Daily Planner Summary", strings.TrimSpace(sb.String())
}
