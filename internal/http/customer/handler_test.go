package customer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/prabink/khaatabook/internal/ledger"
)

// Updating a customer to a code another customer already holds surfaces as a
// validation failure, not an internal error.
func TestHandler_Update_DuplicateCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)
	h := NewHandler(ledger.NewService(repo))

	id := uuid.New()

	repo.EXPECT().
		GetCustomer(gomock.Any(), id).
		Return(&ledger.Customer{ID: id, Code: "CUST-AA11BB", Name: "Ram Bahadur"}, nil)
	repo.EXPECT().
		UpdateCustomer(gomock.Any(), gomock.Any()).
		Return(&ledger.ValidationError{Field: "code", Reason: "already in use"})

	r := chi.NewRouter()
	h.Routes(r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/"+id.String(), strings.NewReader(`{"code":"CUST-CC22DD"}`))

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "code")
}
