package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/meal-mate-devs/payouts/internal"
	"io"
	"net/http"
)

const (
	userIDHeader    = "user-id"
	requestIDHeader = "X-Request-ID"

	currentUserPath       = "/users/me"
	monetizationStatsPath = "/chef/monetization-stats"
	accountStatusPath     = "/stripe-connect/account-status"
	accountLinkPath       = "/stripe-connect/create-account-link"
	dashboardLinkPath     = "/stripe-connect/dashboard-link"
	withdrawPath          = "/stripe-connect/withdraw"
)

// MonetizationClient talks to the marketplace backend on behalf of a chef.
type MonetizationClient interface {
	GetMonetizationStats(ctx context.Context, chefID internal.ChefID) (internal.EarningsSnapshot, error)
	GetAccountStatus(ctx context.Context, chefID internal.ChefID) (internal.PayoutAccountStatus, error)
	CreateAccountLink(ctx context.Context, chefID internal.ChefID) (internal.AccountLink, error)
	CreateDashboardLink(ctx context.Context, chefID internal.ChefID) (internal.DashboardLink, error)
	Withdraw(ctx context.Context, chefID internal.ChefID, req internal.WithdrawalRequest) (internal.WithdrawalOutcome, error)
}

type withdrawBody struct {
	Amount json.Number `json:"amount"`
}

type currentUserResponse struct {
	ID string `json:"id"`
}

type statsResponse struct {
	Stats internal.EarningsSnapshot `json:"stats"`
}

type MonetizationClientImpl struct {
	apiAddress string
	client     http.Client
}

var (
	_ MonetizationClient = (*MonetizationClientImpl)(nil)
	_ ChefVerifier       = (*MonetizationClientImpl)(nil)
)

func NewMonetizationClient(apiAddress string) *MonetizationClientImpl {
	return &MonetizationClientImpl{apiAddress: apiAddress}
}

func (c *MonetizationClientImpl) GetMonetizationStats(ctx context.Context, chefID internal.ChefID) (internal.EarningsSnapshot, error) {
	var result statsResponse
	status, body, err := c.do(ctx, http.MethodGet, monetizationStatsPath, chefID, nil)
	if err != nil {
		return result.Stats, err
	}
	if status != http.StatusOK {
		return result.Stats, fmt.Errorf("got status %v from monetization stats API", status)
	}
	if err = json.Unmarshal(body, &result); err != nil {
		return result.Stats, fmt.Errorf("parse body from monetization stats API error: %w", err)
	}
	return result.Stats, nil
}

func (c *MonetizationClientImpl) GetAccountStatus(ctx context.Context, chefID internal.ChefID) (internal.PayoutAccountStatus, error) {
	var result internal.PayoutAccountStatus
	err := c.getJSON(ctx, http.MethodGet, accountStatusPath, chefID, &result)
	return result, err
}

func (c *MonetizationClientImpl) CreateAccountLink(ctx context.Context, chefID internal.ChefID) (internal.AccountLink, error) {
	var result internal.AccountLink
	err := c.getJSON(ctx, http.MethodPost, accountLinkPath, chefID, &result)
	return result, err
}

func (c *MonetizationClientImpl) CreateDashboardLink(ctx context.Context, chefID internal.ChefID) (internal.DashboardLink, error) {
	var result internal.DashboardLink
	err := c.getJSON(ctx, http.MethodPost, dashboardLinkPath, chefID, &result)
	return result, err
}

// Withdraw returns the backend outcome for business rejections too; an error
// means no outcome could be read at all.
func (c *MonetizationClientImpl) Withdraw(ctx context.Context, chefID internal.ChefID, req internal.WithdrawalRequest) (internal.WithdrawalOutcome, error) {
	var result internal.WithdrawalOutcome
	payload, err := json.Marshal(withdrawBody{Amount: json.Number(req.Amount.String())})
	if err != nil {
		return result, fmt.Errorf("marshal withdrawal request error: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, withdrawPath, chefID, payload)
	if err != nil {
		return result, err
	}
	if err = json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("got status %v from withdraw API with unreadable body: %w", status, err)
	}
	if status >= http.StatusBadRequest {
		if result.Success {
			return internal.WithdrawalOutcome{}, fmt.Errorf("got status %v from withdraw API", status)
		}
		if result.Error == "" && result.Code == "" {
			return result, fmt.Errorf("got status %v from withdraw API", status)
		}
	}
	return result, nil
}

// VerifyChef asks the backend who owns chefToken. Rejected or anonymous
// tokens give ErrChefNotVerified.
func (c *MonetizationClientImpl) VerifyChef(ctx context.Context, chefToken string) (internal.ChefID, error) {
	req, err := c.newRequest(ctx, http.MethodGet, currentUserPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+chefToken)
	status, body, err := c.send(req, currentUserPath)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return "", ErrChefNotVerified
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("got status %v from %s", status, currentUserPath)
	}
	var result currentUserResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse body from %s error: %w", currentUserPath, err)
	}
	if result.ID == "" {
		return "", ErrChefNotVerified
	}
	return internal.ChefID(result.ID), nil
}

func (c *MonetizationClientImpl) getJSON(ctx context.Context, method string, path string, chefID internal.ChefID, v any) error {
	status, body, err := c.do(ctx, method, path, chefID, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("got status %v from %s", status, path)
	}
	if err = json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse body from %s error: %w", path, err)
	}
	return nil
}

func (c *MonetizationClientImpl) do(ctx context.Context, method string, path string, chefID internal.ChefID, payload []byte) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set(userIDHeader, string(chefID))
	return c.send(req, path)
}

func (c *MonetizationClientImpl) newRequest(ctx context.Context, method string, path string, payload []byte) (*http.Request, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiAddress+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request to %s error: %w", path, err)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *MonetizationClientImpl) send(req *http.Request, path string) (int, []byte, error) {
	response, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s error: %w", path, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body from %s error: %w", path, err)
	}
	return response.StatusCode, body, nil
}
