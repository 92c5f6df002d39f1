package importer

import (
	"fmt"
	"io"

	"github.com/prabink/khaatabook/internal/importer/customers"
	"github.com/prabink/khaatabook/internal/ledger"
)

type Service struct {
	customersImporter Importer
}

func NewService() *Service {
	return &Service{
		customersImporter: customers.New(),
	}
}

func (s *Service) Import(source Source, r io.Reader) ([]ledger.CreateCustomerParams, error) {
	var importer Importer

	switch source {
	case SourceCustomers:
		importer = s.customersImporter
	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}

	return importer.Parse(r)
}
