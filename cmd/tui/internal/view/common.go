package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prabink/khaatabook/internal/ledger"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenLedgerMsg asks the root model to open one customer's ledger screen.
type OpenLedgerMsg struct {
	Customer *ledger.Customer
}
