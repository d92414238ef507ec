package handlers

import (
	"context"
	"errors"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/meal-mate-devs/payouts/internal/service"
	"github.com/meal-mate-devs/payouts/internal/storage"
	"github.com/rs/zerolog/log"
	"net/http"
)

const (
	chefIDKey  = authContextKey("chefID")
	authHeader = "Authorization"
)

type authContextKey string

type AuthHandler struct {
	authService service.AuthService
}

// Auth checks the token and puts the chef linked to the user into the request context.
func (a *AuthHandler) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		userID, err := a.authService.CheckToken(req.Header.Get(authHeader))
		if errors.Is(err, service.ErrUnauthorized) {
			http.Error(writer, err.Error(), http.StatusUnauthorized)
			return
		} else if err != nil {
			log.Error().Err(err).Msg("Check token error")
			http.Error(writer, "Internal server error", http.StatusInternalServerError)
			return
		}
		chefID, err := a.authService.ResolveChef(req.Context(), userID)
		if errors.Is(err, service.ErrUnknownChef) {
			http.Error(writer, err.Error(), http.StatusForbidden)
			return
		} else if err != nil {
			log.Error().Err(err).Int("user", int(userID)).Msg("Resolve chef error")
			http.Error(writer, "Internal server error", http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(req.Context(), chefIDKey, chefID)
		next.ServeHTTP(writer, req.WithContext(ctx))
	})
}

func GetChefIDFromContext(ctx context.Context) internal.ChefID {
	return ctx.Value(chefIDKey).(internal.ChefID)
}

// AuthData is the register and login body. ChefToken is the chef's backend
// session token and is only read at registration.
type AuthData struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	ChefToken string `json:"chefToken,omitempty"`
}

func (a *AuthHandler) RegisterUser(writer http.ResponseWriter, req *http.Request) {
	var registerReq AuthData
	if !unmarshalRequest(writer, req, &registerReq) {
		return
	}
	if !a.ValidateAuthData(writer, registerReq) {
		return
	}
	if registerReq.ChefToken == "" {
		http.Error(writer, "Chef token is required", http.StatusBadRequest)
		return
	}
	token, err := a.authService.RegisterUser(req.Context(), registerReq.Login, registerReq.Password, registerReq.ChefToken)
	if errors.Is(err, storage.ErrAlreadyExists) {
		http.Error(writer, err.Error(), http.StatusConflict)
		return
	} else if errors.Is(err, service.ErrChefNotVerified) {
		http.Error(writer, err.Error(), http.StatusForbidden)
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Register user error")
		http.Error(writer, "Internal server error", http.StatusInternalServerError)
		return
	}
	writer.Header().Set(authHeader, string(token))
	writer.WriteHeader(http.StatusOK)
}

func (a *AuthHandler) AuthUser(writer http.ResponseWriter, req *http.Request) {
	var authReq AuthData
	if !unmarshalRequest(writer, req, &authReq) {
		return
	}
	if !a.ValidateAuthData(writer, authReq) {
		return
	}
	token, err := a.authService.AuthUser(req.Context(), authReq.Login, authReq.Password)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, service.ErrIncorrectPassword) {
		http.Error(writer, err.Error(), http.StatusUnauthorized)
		return
	} else if err != nil {
		log.Error().Err(err).Msg("Authentication user error")
		http.Error(writer, "Internal server error", http.StatusInternalServerError)
		return
	}
	writer.Header().Set(authHeader, string(token))
	writer.WriteHeader(http.StatusOK)
}

func (a *AuthHandler) ValidateAuthData(writer http.ResponseWriter, data AuthData) bool {
	if data.Login == "" {
		http.Error(writer, "Login is required", http.StatusBadRequest)
		return false
	}
	if data.Password == "" {
		http.Error(writer, "Password is required", http.StatusBadRequest)
		return false
	}
	return true
}
