package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"progressboard/engine"
	"progressboard/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	statusColors = map[model.Status]lipgloss.Color{
		model.StatusDone:       "#10B981",
		model.StatusInProgress: "#3B82F6",
		model.StatusNotStarted: "#6B7280",
		model.StatusPaused:     "#EF4444",
	}
)

func statusText(st model.Status) string {
	return lipgloss.NewStyle().Foreground(statusColors[st]).Render(st.Label())
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)
}

func renderTasks(w io.Writer, tasks []model.TaskRecord) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no tasks"))
		return
	}
	t := newTable("ID", "Task", "Unit", "Start", "End", "Status", "Progress", "Note")
	for _, task := range tasks {
		t.Row(
			strconv.Itoa(task.ID),
			task.Title,
			task.Unit,
			task.StartDate,
			task.EndDate,
			statusText(task.Status),
			fmt.Sprintf("%s %3d%%", progressBar(task.ProgressPercent, 10), task.ProgressPercent),
			task.Note,
		)
	}
	fmt.Fprintln(w, t.Render())
}

func renderStats(w io.Writer, stats model.DashboardStats, dist []engine.StatusCount, units []engine.UnitProgress) {
	fmt.Fprintln(w, titleStyle.Render("Overview"))
	fmt.Fprintf(w, "  Total tasks       %d\n", stats.Total)
	fmt.Fprintf(w, "  Overall progress  %s %d%%\n\n", progressBar(stats.OverallProgress, 20), stats.OverallProgress)

	t := newTable("Status", "Tasks", "Share")
	for _, d := range dist {
		t.Row(statusText(d.Status), strconv.Itoa(d.Count), fmt.Sprintf("%.1f%%", engine.Percent(d.Count, stats.Total)))
	}
	fmt.Fprintln(w, t.Render())

	if len(units) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render("By unit"))
	u := newTable("Unit", "Tasks", "Avg progress")
	for _, up := range units {
		u.Row(up.Unit, strconv.Itoa(up.Tasks), fmt.Sprintf("%s %3d%%", progressBar(up.AverageProgress, 10), up.AverageProgress))
	}
	fmt.Fprintln(w, u.Render())
}

func renderTimeline(w io.Writer, tl engine.Timeline) {
	if len(tl.Months) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no dated tasks"))
	} else {
		t := newTable("Month", "Tasks", "Completed")
		for _, m := range tl.Months {
			t.Row(m.Month, strconv.Itoa(m.Total), strconv.Itoa(m.Completed))
		}
		fmt.Fprintln(w, t.Render())
	}
	if tl.Skipped > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d task(s) skipped: end date not D/M/YYYY", tl.Skipped)))
	}
}

func renderSync(w io.Writer, saveTime string, count int) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d task(s), saved %s", count, valueOr(saveTime, "at an unknown time"))))
}
