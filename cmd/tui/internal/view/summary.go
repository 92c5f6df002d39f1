package view

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prabink/khaatabook/internal/report"
)

// SummaryModel is the dashboard: ledger totals plus overdue warnings.
type SummaryModel struct {
	CommonModel
	reportService *report.Service

	summary *report.Summary
	loading bool
	err     error
}

func NewSummaryModel(svc *report.Service) SummaryModel {
	return SummaryModel{reportService: svc}
}

func (m SummaryModel) Title() string     { return "Dashboard" }
func (m SummaryModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSummaryMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	if m.loading || m.summary == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	label := lipgloss.NewStyle().Faint(true).Render

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Khaatabook Dashboard"),
		"",
		fmt.Sprintf("%s %s", label("Total outstanding:"), FormatAmount(m.summary.TotalOutstanding)),
		fmt.Sprintf("%s %d", label("Customers:"), m.summary.TotalCustomers),
		fmt.Sprintf("%s %d", label("Customers with dues:"), m.summary.CustomersWithDue),
		fmt.Sprintf("%s %d", label("Customers over limit:"), m.summary.CustomersOverLimit),
	}

	if m.summary.OverdueTransactions > 0 {
		warning := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(
			fmt.Sprintf("%d overdue transactions across %d customers",
				m.summary.OverdueTransactions, len(m.summary.OverdueCustomerIDs)),
		)
		lines = append(lines, "", warning)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

type loadSummaryMsg struct {
	summary *report.Summary
	err     error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.reportService.Summary(ctx, time.Now())

		return loadSummaryMsg{summary: summary, err: err}
	}
}
