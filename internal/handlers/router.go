package handlers

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/meal-mate-devs/payouts/internal/service"
	"github.com/rs/zerolog/log"
	"io"
	"net/http"
	"time"
)

func NewRouter(authService service.AuthService, monetizationService service.MonetizationService) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))

	authHandler := &AuthHandler{authService: authService}
	monetizationHandler := &MonetizationHandler{monetizationService: monetizationService}

	r.Post("/api/user/register", authHandler.RegisterUser)
	r.Post("/api/user/login", authHandler.AuthUser)

	r.Group(func(r chi.Router) {
		r.Use(authHandler.Auth)
		r.Get("/api/chef/monetization", monetizationHandler.GetDashboard)
		r.Delete("/api/chef/monetization", monetizationHandler.CloseDashboard)
		r.Post("/api/chef/monetization/refresh", monetizationHandler.Refresh)
		r.Put("/api/chef/monetization/amount", monetizationHandler.SetAmount)
		r.Post("/api/chef/monetization/withdraw/preview", monetizationHandler.PreviewWithdrawal)
		r.Post("/api/chef/monetization/withdraw", monetizationHandler.Withdraw)
		r.Post("/api/chef/payout-account/link", monetizationHandler.CreateAccountLink)
		r.Post("/api/chef/payout-account/dashboard", monetizationHandler.CreateDashboardLink)
	})

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "Wrong request", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "Method not allowed", http.StatusBadRequest)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(writer, req.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(req.Context())).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		}()
		next.ServeHTTP(ww, req)
	})
}

func unmarshalRequest(writer http.ResponseWriter, req *http.Request, v any) bool {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return false
	}
	if len(body) == 0 {
		http.Error(writer, "Request body is required", http.StatusBadRequest)
		return false
	}
	err = json.Unmarshal(body, v)
	if err != nil {
		http.Error(writer, "Failed to parse request body", http.StatusBadRequest)
		return false
	}
	return true
}

func marshalResponse(writer http.ResponseWriter, status int, response any) {
	respJSON, err := json.Marshal(response)
	if err != nil {
		log.Error().Err(err).Msg("Error while serializing response")
		http.Error(writer, "Internal server error", http.StatusInternalServerError)
		return
	}
	writer.Header().Set("content-type", "application/json")
	writer.WriteHeader(status)
	writer.Write(respJSON)
}
