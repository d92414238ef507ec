package handlers

import (
	"bytes"
	"context"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/meal-mate-devs/payouts/internal/service"
	"github.com/meal-mate-devs/payouts/internal/storage"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRegisterUser(t *testing.T) {
	type want struct {
		statusCode int
		isToken    bool
	}
	tests := []struct {
		name    string
		request string
		store   storage.UserStorage
		want    want
	}{
		{
			name:    "Positive test",
			request: "{\"login\": \"login\",\"password\": \"password\",\"chefToken\": \"session\"}",
			store:   &mockUserStorage{userID: 1, loginPass: make(map[string]string)},
			want:    want{statusCode: 200, isToken: true},
		},
		{
			name:    "Negative test with empty body",
			request: "",
			store:   &mockUserStorage{loginPass: make(map[string]string)},
			want:    want{statusCode: 400},
		},
		{
			name:    "Negative test with empty password",
			request: "{\"login\": \"login\",\"chefToken\": \"session\"}",
			store:   &mockUserStorage{loginPass: make(map[string]string)},
			want:    want{statusCode: 400},
		},
		{
			name:    "Negative test without chef token",
			request: "{\"login\": \"login\",\"password\": \"password\"}",
			store:   &mockUserStorage{loginPass: make(map[string]string)},
			want:    want{statusCode: 400},
		},
		{
			name:    "Negative test with rejected chef token",
			request: "{\"login\": \"login\",\"password\": \"password\",\"chefToken\": \"forged\"}",
			store:   &mockUserStorage{loginPass: make(map[string]string)},
			want:    want{statusCode: 403},
		},
		{
			name:    "Negative test with used login",
			request: "{\"login\": \"login\",\"password\": \"password\",\"chefToken\": \"session\"}",
			store:   &mockUserStorage{addUserErr: storage.ErrAlreadyExists, loginPass: make(map[string]string)},
			want:    want{statusCode: 409},
		},
	}
	monetizationService := service.NewMonetizationService(&mockMonetizationClient{}, time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := &service.AuthServiceImpl{Store: tt.store, Chefs: mockChefVerifier{}, SecretKey: []byte("my secret key")}
			r := NewRouter(authService, monetizationService)

			request := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.request))
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, request)

			assert.Equal(t, tt.want.statusCode, resp.Code)
			if tt.want.isToken {
				assert.Greater(t, len(resp.Header().Get(authHeader)), 0)
			}
		})
	}
}

func TestAuthUser(t *testing.T) {
	type want struct {
		statusCode int
		isToken    bool
	}
	tests := []struct {
		name       string
		preRequest string
		request    string
		store      storage.UserStorage
		want       want
	}{
		{
			name:       "Positive test",
			preRequest: "{\"login\": \"login\",\"password\": \"password\",\"chefToken\": \"session\"}",
			request:    "{\"login\": \"login\",\"password\": \"password\"}",
			store:      &mockUserStorage{userID: 1, loginPass: make(map[string]string)},
			want:       want{statusCode: 200, isToken: true},
		},
		{
			name:    "Negative test with empty body",
			request: "",
			store:   &mockUserStorage{loginPass: make(map[string]string)},
			want:    want{statusCode: 400},
		},
		{
			name:    "Negative test with unknown login",
			request: "{\"login\": \"login\",\"password\": \"password\"}",
			store:   &mockUserStorage{loginPass: make(map[string]string), getUserErr: storage.ErrNotFound},
			want:    want{statusCode: 401},
		},
		{
			name:       "Negative test with wrong password",
			preRequest: "{\"login\": \"login\",\"password\": \"password\",\"chefToken\": \"session\"}",
			request:    "{\"login\": \"login\",\"password\": \"wrong password\"}",
			store:      &mockUserStorage{loginPass: make(map[string]string)},
			want:       want{statusCode: 401},
		},
	}
	monetizationService := service.NewMonetizationService(&mockMonetizationClient{}, time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := &service.AuthServiceImpl{Store: tt.store, Chefs: mockChefVerifier{}, SecretKey: []byte("my secret key")}
			r := NewRouter(authService, monetizationService)

			if tt.preRequest != "" {
				preRequest := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.preRequest))
				preResp := httptest.NewRecorder()
				r.ServeHTTP(preResp, preRequest)
			}

			request := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewBufferString(tt.request))
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, request)

			assert.Equal(t, tt.want.statusCode, resp.Code)
			if tt.want.isToken {
				assert.Greater(t, len(resp.Header().Get(authHeader)), 0)
			}
		})
	}
}

type mockUserStorage struct {
	userID     internal.UserID
	chefID     internal.ChefID
	loginPass  map[string]string
	addUserErr error
	getUserErr error
}

func (m *mockUserStorage) AddUser(_ context.Context, login string, hashedPass string, chefID internal.ChefID) (internal.UserID, error) {
	m.loginPass[login] = hashedPass
	m.chefID = chefID
	return m.userID, m.addUserErr
}

func (m *mockUserStorage) GetUser(_ context.Context, login string) (internal.UserID, string, error) {
	return m.userID, m.loginPass[login], m.getUserErr
}

func (m *mockUserStorage) GetChefID(_ context.Context, _ internal.UserID) (internal.ChefID, error) {
	if m.chefID == "" {
		return "", storage.ErrNotFound
	}
	return m.chefID, nil
}

func (m *mockUserStorage) Close() {
}

var _ storage.UserStorage = (*mockUserStorage)(nil)

// mockChefVerifier accepts only the "session" token.
type mockChefVerifier struct{}

func (mockChefVerifier) VerifyChef(_ context.Context, chefToken string) (internal.ChefID, error) {
	if chefToken != "session" {
		return "", service.ErrChefNotVerified
	}
	return "64f1c0de", nil
}

var _ service.ChefVerifier = mockChefVerifier{}
