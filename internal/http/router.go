package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/MrJamesThe3rd/billroom/internal/http/auth"
	"github.com/MrJamesThe3rd/billroom/internal/http/chat"
	"github.com/MrJamesThe3rd/billroom/internal/http/staff"
	"github.com/MrJamesThe3rd/billroom/internal/http/system"
	"github.com/MrJamesThe3rd/billroom/internal/http/transaction"
)

func New(
	allowedOrigins []string,
	authV1 *authHandler.Handler,
	transactionsV1 *transaction.Handler,
	staffV1 *staff.Handler,
	chatV1 *chat.Handler,
	systemV1 *system.Handler,
	metrics http.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r, authV1.Require)
		})

		r.Get("/totals", transactionsV1.Totals)

		r.Route("/staff", func(r chi.Router) {
			staffV1.Routes(r, authV1.Require)
		})

		r.Route("/chat", chatV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			systemV1.Routes(r, authV1.Require)
		})
	})

	return router
}
