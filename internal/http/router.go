package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/prabink/khaatabook/internal/auth"
	"github.com/prabink/khaatabook/internal/http/customer"
	"github.com/prabink/khaatabook/internal/http/export"
	"github.com/prabink/khaatabook/internal/http/importcsv"
	"github.com/prabink/khaatabook/internal/http/report"
	"github.com/prabink/khaatabook/internal/http/session"
	"github.com/prabink/khaatabook/internal/http/suggestion"
	"github.com/prabink/khaatabook/internal/http/transaction"
)

func New(
	authSvc *auth.Service,
	allowedOrigins []string,
	sessionV1 *session.Handler,
	customersV1 *customer.Handler,
	transactionsV1 *transaction.Handler,
	suggestionsV1 *suggestion.Handler,
	exportV1 *export.Handler,
	reportsV1 *report.Handler,
	importV1 *importcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.AllowContentType("application/json")).
			Post("/session/login", sessionV1.Login)

		r.Group(func(r chi.Router) {
			r.Use(session.Require(authSvc))

			r.Route("/session", func(r chi.Router) {
				sessionV1.Routes(r)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				customersV1.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				transactionsV1.Routes(r)
			})

			r.Route("/suggestions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				suggestionsV1.Routes(r)
			})

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				exportV1.Routes(r)
			})

			r.Route("/reports", func(r chi.Router) {
				reportsV1.Routes(r)
			})

			r.Route("/import", importV1.Routes)
		})
	})

	return router
}
