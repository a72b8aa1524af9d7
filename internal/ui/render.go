package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// maxTitleWidth bounds the title column in issue tables.
const maxTitleWidth = 60

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...)
}

func stateName(i linear.Issue) (string, string) {
	if i.State == nil {
		return "", ""
	}
	return i.State.Name, i.State.Type
}

func assigneeName(u *linear.User) string {
	switch {
	case u == nil:
		return "Unassigned"
	case u.DisplayName != "":
		return u.DisplayName
	default:
		return u.Name
	}
}

// IssueTable renders issues as an aligned table.
func IssueTable(issues []linear.Issue) string {
	if len(issues) == 0 {
		return RenderMuted("No issues found.")
	}
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		state, _ := stateName(issue)
		rows[i] = []string{
			issue.Identifier,
			Truncate(issue.Title, maxTitleWidth),
			state,
			assigneeName(issue.Assignee),
			linear.PriorityName(issue.Priority),
		}
	}
	t := newTable("ID", "TITLE", "STATUS", "ASSIGNEE", "PRIORITY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return style.Inherit(HeaderStyle)
			}
			switch col {
			case 0:
				return style.Inherit(AccentStyle)
			case 2:
				_, stateType := stateName(issues[row])
				return style.Inherit(StateStyle(stateType))
			case 4:
				return style.Inherit(PriorityStyle(issues[row].Priority))
			}
			return style
		})
	return t.String()
}

// IssueDetail renders one issue with its description wrapped to width.
func IssueDetail(issue linear.Issue, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", AccentStyle.Render(issue.Identifier), TitleStyle.Render(issue.Title))

	state, stateType := stateName(issue)
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s %s\n", MutedStyle.Render(fmt.Sprintf("%-10s", name+":")), value)
		}
	}
	field("Status", StateStyle(stateType).Render(state))
	field("Priority", PriorityStyle(issue.Priority).Render(linear.PriorityName(issue.Priority)))
	field("Assignee", assigneeName(issue.Assignee))
	if issue.Team != nil {
		field("Team", issue.Team.Key)
	}
	field("Labels", strings.Join(issue.LabelNames(), ", "))
	if issue.Project != nil {
		field("Project", issue.Project.Name)
	}
	if issue.Cycle != nil {
		name := issue.Cycle.Name
		if name == "" {
			name = fmt.Sprintf("Cycle %d", issue.Cycle.Number)
		}
		field("Cycle", name)
	}
	field("URL", issue.URL)
	field("Updated", issue.UpdatedAt)

	if d := strings.TrimSpace(issue.Description); d != "" {
		b.WriteString("\n")
		b.WriteString(WrapText(d, width))
		b.WriteString("\n")
	}
	return b.String()
}

// TeamTable renders teams.
func TeamTable(teams []linear.Team) string {
	if len(teams) == 0 {
		return RenderMuted("No teams found.")
	}
	rows := make([][]string, len(teams))
	for i, t := range teams {
		rows[i] = []string{t.Key, t.Name, t.ID}
	}
	return newTable("KEY", "NAME", "ID").Rows(rows...).StyleFunc(plainStyle).String()
}

// ProjectTable renders projects.
func ProjectTable(projects []linear.Project) string {
	if len(projects) == 0 {
		return RenderMuted("No projects found.")
	}
	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{p.Name, p.State, p.URL}
	}
	return newTable("NAME", "STATE", "URL").Rows(rows...).StyleFunc(plainStyle).String()
}

func plainStyle(row, _ int) lipgloss.Style {
	style := lipgloss.NewStyle().PaddingRight(2)
	if row == table.HeaderRow {
		return style.Inherit(HeaderStyle)
	}
	return style
}

// CommentList renders comments oldest first.
func CommentList(comments []linear.Comment, width int) string {
	if len(comments) == 0 {
		return RenderMuted("No comments.")
	}
	var b strings.Builder
	for i, c := range comments {
		if i > 0 {
			b.WriteString("\n")
		}
		author := "Unknown"
		if c.User != nil {
			author = assigneeName(c.User)
		}
		fmt.Fprintf(&b, "%s %s\n", AccentStyle.Render(author), MutedStyle.Render(c.CreatedAt))
		b.WriteString(Indent(WrapText(strings.TrimSpace(c.Body), width-2), "  "))
		b.WriteString("\n")
	}
	return b.String()
}

// Section is one titled block of Sections output.
type Section struct {
	Title string
	Body  string
}

// Sections renders titled blocks separated by blank lines.
func Sections(sections ...Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(TitleStyle.Render(s.Title))
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(s.Body, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
