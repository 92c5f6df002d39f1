package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/prabink/khaatabook/cmd/tui/internal/view"
	"github.com/prabink/khaatabook/internal/config"
	"github.com/prabink/khaatabook/internal/database"
	"github.com/prabink/khaatabook/internal/export"
	"github.com/prabink/khaatabook/internal/ledger"
	ledgerStore "github.com/prabink/khaatabook/internal/ledger/store"
	"github.com/prabink/khaatabook/internal/report"
	"github.com/prabink/khaatabook/internal/suggest"
	suggestStore "github.com/prabink/khaatabook/internal/suggest/store"
)

type model struct {
	ledgerService  *ledger.Service
	suggestService *suggest.Service
	exportService  *export.Service
	reportService  *report.Service

	currentView View

	customersView view.CustomersModel
	ledgerView    view.LedgerModel
	summaryView   view.SummaryModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewCustomers View = 1
	ViewLedger    View = 2
	ViewSummary   View = 3
	ViewExport    View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db))
	suggestSvc := suggest.NewService(suggestStore.New(db))
	exportSvc := export.NewService(ledgerSvc)
	reportSvc := report.NewService(ledgerSvc)

	return model{
		ledgerService:  ledgerSvc,
		suggestService: suggestSvc,
		exportService:  exportSvc,
		reportService:  reportSvc,
		currentView:    ViewMenu,
		customersView:  view.NewCustomersModel(ledgerSvc),
		summaryView:    view.NewSummaryModel(reportSvc),
		exportView:     view.NewExportModel(exportSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCustomers
				m.customersView = view.NewCustomersModel(m.ledgerService)

				return m, m.customersView.Init()
			case "2":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.reportService)

				return m, m.summaryView.Init()
			case "3":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.OpenLedgerMsg:
		m.currentView = ViewLedger
		m.ledgerView = view.NewLedgerModel(m.ledgerService, m.suggestService, msg.Customer)

		return m, m.ledgerView.Init()
	case view.BackMsg:
		// The ledger screen backs out to the customer list, not the menu.
		if m.currentView == ViewLedger {
			m.currentView = ViewCustomers
			return m, m.customersView.Init()
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewCustomers:
		var newModel tea.Model
		newModel, cmd = m.customersView.Update(msg)
		m.customersView = newModel.(view.CustomersModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Khaatabook TUI\n\n" +
				"1. Customers\n" +
				"2. Dashboard\n" +
				"3. Export Data\n\n" +
				"q. Quit",
		)
	case ViewCustomers:
		return m.customersView.View()
	case ViewLedger:
		return m.ledgerView.View()
	case ViewSummary:
		return m.summaryView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
