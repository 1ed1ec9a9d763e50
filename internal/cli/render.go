package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/service"
)

var (
	badgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	statusColors = map[models.Status]lipgloss.Color{
		models.StatusNew:        lipgloss.Color("33"),
		models.StatusInProgress: lipgloss.Color("214"),
		models.StatusCompleted:  lipgloss.Color("42"),
		models.StatusArchived:   lipgloss.Color("245"),
	}
	priorityColors = map[models.Priority]lipgloss.Color{
		models.PriorityLow:    lipgloss.Color("245"),
		models.PriorityMedium: lipgloss.Color("33"),
		models.PriorityHigh:   lipgloss.Color("214"),
		models.PriorityUrgent: lipgloss.Color("196"),
	}

	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func statusBadge(s models.Status) string {
	return badgeStyle.Foreground(statusColors[s]).Render(string(s))
}

func priorityBadge(p models.Priority) string {
	if p == "" {
		return "-"
	}
	return badgeStyle.Foreground(priorityColors[p]).Render(string(p))
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func unreadMark(s models.Submission) string {
	if s.IsRead {
		return " "
	}
	return "*"
}

func renderPage(w io.Writer, page models.Page[models.Submission], lang string) {
	if len(page.Data) == 0 {
		fmt.Fprintln(w, "No submissions found")
		return
	}
	labels := service.FormTypeLabels(lang)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tTYPE\tNAME\tEMAIL\tSTATUS\tPRIORITY\tASSIGNED\tSUBMITTED")
	for _, s := range page.Data {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			unreadMark(s), s.ID, labels[s.FormType], s.SubmitterName, s.SubmitterEmail,
			statusBadge(s.Status), priorityBadge(s.Priority), orDash(s.AssignedTo),
			s.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
	fmt.Fprintf(w, "\npage %d of %d, %d total\n", page.Page, max(page.TotalPages, 1), page.Total)
}

func renderSubmission(w io.Writer, s models.Submission, lang string) {
	fmt.Fprintf(w, "%s #%d  %s %s\n", headingStyle.Render(service.FormTypeLabels(lang)[s.FormType]), s.ID,
		statusBadge(s.Status), priorityBadge(s.Priority))

	d := service.FormatForDisplay(s, lang)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range d.Basic {
		fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render(f.Label), orDash(f.Value))
	}
	for _, f := range d.Additional {
		fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render(f.Label), f.Value)
	}
	fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render("submitted"), s.SubmittedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render("assigned"), orDash(s.AssignedTo))
	if len(s.Tags) > 0 {
		fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render("tags"), strings.Join(s.Tags, ", "))
	}
	tw.Flush()
	if s.AdminNotes != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", labelStyle.Render("notes"), s.AdminNotes)
	}
}

func renderStats(w io.Writer, st models.DashboardStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total submissions\t%d\n", st.TotalSubmissions)
	fmt.Fprintf(tw, "Pending reviews\t%d\n", st.PendingReviews)
	fmt.Fprintf(tw, "Completed\t%d\n", st.CompletedForms)
	fmt.Fprintf(tw, "Active users\t%d\n", st.ActiveUsers)
	fmt.Fprintf(tw, "Revenue (SAR)\t%.0f\n", st.TotalRevenue)
	fmt.Fprintf(tw, "Monthly growth\t%.1f%%\n", st.MonthlyGrowth)
	fmt.Fprintf(tw, "System\t%s\n", st.SystemStatus)
	for _, s := range models.Statuses {
		if n, ok := st.ByStatus[s]; ok {
			fmt.Fprintf(tw, "  %s\t%d\n", s, n)
		}
	}
	tw.Flush()
}
