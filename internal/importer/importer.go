package importer

import (
	"io"

	"github.com/prabink/khaatabook/internal/ledger"
)

type Source string

const (
	SourceCustomers Source = "customers"
)

type Importer interface {
	Parse(r io.Reader) ([]ledger.CreateCustomerParams, error)
}
