package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandeepkv93/lazytask/internal/layout"
	"github.com/sandeepkv93/lazytask/internal/model"
)

const taskColumns = "      ID  STATUS       PRIORITY  DUE          DESCRIPTION"

type TaskListData struct {
	Tasks       []model.Task
	Cursor      int
	Selected    map[int]bool
	MultiSelect bool
	Now         time.Time
	Width       int
	Height      int
	EmptyText   string
}

// TaskListLines renders a column header plus the rows that fit in Height,
// scrolled so the cursor row stays visible.
func TaskListLines(d TaskListData) []string {
	width := max(1, d.Width)
	out := []string{layout.TruncateText(taskColumns, width)}
	if len(d.Tasks) == 0 {
		empty := d.EmptyText
		if empty == "" {
			empty = "no tasks found"
		}
		return append(out, "", "  "+empty)
	}

	rows := max(1, d.Height-1)
	offset := 0
	if d.Cursor >= rows {
		offset = d.Cursor - rows + 1
	}
	end := min(len(d.Tasks), offset+rows)
	for i := offset; i < end; i++ {
		out = append(out, layout.TruncateText(taskRow(d, i), width))
	}
	return out
}

func taskRow(d TaskListData, i int) string {
	t := d.Tasks[i]
	cursor := "  "
	if i == d.Cursor {
		cursor = "> "
	}
	mark := "    "
	if d.MultiSelect {
		mark = "[ ] "
		if d.Selected[t.ID] {
			mark = "[x] "
		}
	}
	due := t.DueDate
	if due == "" {
		due = "-"
	}
	if t.Overdue(d.Now) {
		due += "!"
	}
	row := fmt.Sprintf("%s%s%4d  %-11s  %-8s  %-11s  %s", cursor, mark, t.ID, t.Status, t.Priority, due, t.Description)
	if len(t.Tags) > 0 {
		row += "  #" + strings.Join(t.Tags, " #")
	}
	return row
}

// StatsLines renders the stats sidebar. Plain output uses ASCII bars and an
// unstyled tag table.
func StatsLines(s model.Stats, width int, plain bool) []string {
	barWidth := max(5, width-16)
	bar := func(count int) string {
		ratio := 0.0
		if s.Total > 0 {
			ratio = float64(count) / float64(s.Total)
		}
		if plain {
			return asciiBar(ratio, barWidth)
		}
		p := progress.New(progress.WithWidth(barWidth), progress.WithoutPercentage(), progress.WithDefaultGradient())
		return p.ViewAs(ratio)
	}

	out := []string{
		fmt.Sprintf("Total tasks: %d", s.Total),
		fmt.Sprintf("Completion: %d%%", s.CompletionRate),
		"",
		"By status",
	}
	for _, st := range model.Statuses {
		out = append(out, fmt.Sprintf("%-12s%3d %s", st, s.ByStatus[st], bar(s.ByStatus[st])))
	}
	out = append(out, "", "By priority")
	for _, p := range model.Priorities {
		out = append(out, fmt.Sprintf("%-12s%3d %s", p, s.ByPriority[p], bar(s.ByPriority[p])))
	}
	out = append(out,
		"",
		fmt.Sprintf("Overdue: %d", s.Overdue),
		fmt.Sprintf("Created last 7 days: %d", s.RecentActivity),
	)
	if len(s.TopTags) > 0 {
		out = append(out, "", "Top tags")
		out = append(out, tagTable(s.TopTags, width, plain)...)
	}
	return out
}

func tagTable(tags []model.TagCount, width int, plain bool) []string {
	countWidth := 5
	tagWidth := max(6, width-countWidth-4)
	rows := make([]table.Row, 0, len(tags))
	for _, tc := range tags {
		rows = append(rows, table.Row{tc.Tag, fmt.Sprintf("%d", tc.Count)})
	}
	styles := table.Styles{
		Header:   lipgloss.NewStyle(),
		Cell:     lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle(),
	}
	if !plain {
		styles = table.DefaultStyles()
		styles.Selected = styles.Cell
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Tag", Width: tagWidth},
			{Title: "Count", Width: countWidth},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+2),
		table.WithFocused(false),
		table.WithStyles(styles),
	)
	lines := strings.Split(t.View(), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func asciiBar(ratio float64, width int) string {
	ratio = max(0, min(1, ratio))
	inner := max(1, width-2)
	filled := min(inner, int(ratio*float64(inner)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", inner-filled) + "]"
}

type StatusBarData struct {
	Stats       model.Stats
	SortField   string
	Descending  bool
	SearchKind  string
	SearchTerm  string
	MultiSelect bool
	Selected    int
	Mode        string
}

// StatusBarText is the summary line drawn in the footer.
func StatusBarText(d StatusBarData) string {
	parts := make([]string, 0, 8)
	for _, st := range model.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", st, d.Stats.ByStatus[st]))
	}
	parts = append(parts, fmt.Sprintf("%d%% done", d.Stats.CompletionRate))
	if d.Stats.Overdue > 0 {
		parts = append(parts, fmt.Sprintf("overdue %d", d.Stats.Overdue))
	}
	order := "asc"
	if d.Descending {
		order = "desc"
	}
	parts = append(parts, fmt.Sprintf("sort: %s %s", d.SortField, order))
	if d.SearchKind != "" && d.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("%s search: %q", d.SearchKind, d.SearchTerm))
	}
	if d.MultiSelect {
		parts = append(parts, fmt.Sprintf("multi-select: %d", d.Selected))
	}
	if d.Mode != "" {
		parts = append(parts, "mode: "+d.Mode)
	}
	return strings.Join(parts, " | ")
}

// DetailsLines describes one task. With markdown set the details body is
// rendered through glamour.
func DetailsLines(t *model.Task, width int, now time.Time, markdown bool) []string {
	if t == nil {
		return []string{"(no task selected)"}
	}
	due := t.DueDate
	if due == "" {
		due = "none"
	} else if t.Overdue(now) {
		due += " (overdue)"
	}
	tags := "none"
	if len(t.Tags) > 0 {
		tags = strings.Join(t.Tags, ", ")
	}
	out := []string{
		fmt.Sprintf("#%d %s", t.ID, t.Description),
		fmt.Sprintf("Status: %s  Priority: %s", t.Status, t.Priority),
		"Due: " + due,
		"Tags: " + tags,
		"Created: " + t.CreatedAt.Local().Format("2006-01-02 15:04"),
		"Updated: " + t.UpdatedAt.Local().Format("2006-01-02 15:04"),
	}
	if strings.TrimSpace(t.Details) == "" {
		return out
	}
	out = append(out, "")
	body := t.Details
	if markdown {
		body = RenderMarkdown(t.Details, width)
	}
	return append(out, strings.Split(body, "\n")...)
}

// ResultLines lists the outcome of a bulk operation, one line per failure.
func ResultLines(verb string, res model.BulkResult) []string {
	out := []string{res.Summary(verb)}
	if len(res.Errors) == 0 {
		return out
	}
	out = append(out, "")
	for _, e := range res.Errors {
		out = append(out, fmt.Sprintf("  #%d: %s", e.ID, e.Reason))
	}
	return out
}

type FormField struct {
	Label  string
	Value  string
	Active bool
	// Choice marks fields cycled with left/right.
	Choice bool
}

type FormData struct {
	Fields []FormField
	Error  string
}

func FormLines(d FormData) []string {
	out := make([]string, 0, len(d.Fields)+4)
	for _, f := range d.Fields {
		cursor := "  "
		if f.Active {
			cursor = "> "
		}
		value := f.Value
		if f.Choice {
			value = "< " + value + " >"
		} else if f.Active {
			value += "_"
		}
		out = append(out, fmt.Sprintf("%s%-12s %s", cursor, f.Label+":", value))
	}
	out = append(out, "")
	if d.Error != "" {
		out = append(out, "! "+d.Error)
	}
	out = append(out, "tab/j/k field  left/right cycle  enter save  esc cancel")
	return out
}

// ConfirmLines builds a yes/no prompt listing the affected items.
func ConfirmLines(prompt string, items []string) []string {
	out := []string{prompt, ""}
	for _, item := range items {
		out = append(out, "  "+item)
	}
	return append(out, "", "y confirm  n/esc cancel")
}
