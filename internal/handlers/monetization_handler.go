package handlers

import (
	"errors"
	"github.com/meal-mate-devs/payouts/internal/service"
	"github.com/rs/zerolog/log"
	"net/http"
)

type MonetizationHandler struct {
	monetizationService service.MonetizationService
}

type AmountReq struct {
	Amount string `json:"amount"`
}

type WithdrawReq struct {
	Amount  string `json:"amount"`
	Confirm bool   `json:"confirm"`
}

func (m *MonetizationHandler) GetDashboard(writer http.ResponseWriter, req *http.Request) {
	chefID := GetChefIDFromContext(req.Context())
	marshalResponse(writer, http.StatusOK, m.monetizationService.GetDashboard(req.Context(), chefID))
}

func (m *MonetizationHandler) CloseDashboard(writer http.ResponseWriter, req *http.Request) {
	m.monetizationService.CloseDashboard(GetChefIDFromContext(req.Context()))
	writer.WriteHeader(http.StatusNoContent)
}

func (m *MonetizationHandler) Refresh(writer http.ResponseWriter, req *http.Request) {
	trigger, ok := service.ParseTrigger(req.URL.Query().Get("trigger"))
	if !ok {
		http.Error(writer, "Unknown refresh trigger", http.StatusBadRequest)
		return
	}
	chefID := GetChefIDFromContext(req.Context())
	marshalResponse(writer, http.StatusOK, m.monetizationService.Refresh(req.Context(), chefID, trigger))
}

func (m *MonetizationHandler) SetAmount(writer http.ResponseWriter, req *http.Request) {
	var amountReq AmountReq
	if !unmarshalRequest(writer, req, &amountReq) {
		return
	}
	chefID := GetChefIDFromContext(req.Context())
	marshalResponse(writer, http.StatusOK, m.monetizationService.SetAmount(req.Context(), chefID, amountReq.Amount))
}

// PreviewWithdrawal accepts an empty body, in which case the current amount input is checked.
func (m *MonetizationHandler) PreviewWithdrawal(writer http.ResponseWriter, req *http.Request) {
	var amountReq AmountReq
	if req.ContentLength != 0 && !unmarshalRequest(writer, req, &amountReq) {
		return
	}
	chefID := GetChefIDFromContext(req.Context())
	marshalResponse(writer, http.StatusOK, m.monetizationService.PreviewWithdrawal(req.Context(), chefID, amountReq.Amount))
}

func (m *MonetizationHandler) Withdraw(writer http.ResponseWriter, req *http.Request) {
	var withdrawReq WithdrawReq
	if !unmarshalRequest(writer, req, &withdrawReq) {
		return
	}
	chefID := GetChefIDFromContext(req.Context())
	attempt, err := m.monetizationService.Withdraw(req.Context(), chefID, withdrawReq.Amount, withdrawReq.Confirm)
	if errors.Is(err, service.ErrWithdrawalBlocked) {
		marshalResponse(writer, http.StatusUnprocessableEntity, attempt)
		return
	} else if errors.Is(err, service.ErrConfirmationRequired) {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	} else if errors.Is(err, service.ErrWithdrawalInProgress) || errors.Is(err, service.ErrDashboardClosed) {
		http.Error(writer, err.Error(), http.StatusConflict)
		return
	} else if err != nil {
		log.Error().Err(err).Str("chef", string(chefID)).Msg("Withdraw error")
		http.Error(writer, "Internal server error", http.StatusInternalServerError)
		return
	}
	marshalResponse(writer, http.StatusOK, attempt)
}

func (m *MonetizationHandler) CreateAccountLink(writer http.ResponseWriter, req *http.Request) {
	chefID := GetChefIDFromContext(req.Context())
	link, err := m.monetizationService.CreateAccountLink(req.Context(), chefID)
	if err != nil {
		log.Error().Err(err).Str("chef", string(chefID)).Msg("Create account link error")
		http.Error(writer, "Payout provider is unavailable", http.StatusBadGateway)
		return
	}
	marshalResponse(writer, http.StatusOK, link)
}

func (m *MonetizationHandler) CreateDashboardLink(writer http.ResponseWriter, req *http.Request) {
	chefID := GetChefIDFromContext(req.Context())
	link, err := m.monetizationService.CreateDashboardLink(req.Context(), chefID)
	if err != nil {
		log.Error().Err(err).Str("chef", string(chefID)).Msg("Create dashboard link error")
		http.Error(writer, "Payout provider is unavailable", http.StatusBadGateway)
		return
	}
	marshalResponse(writer, http.StatusOK, link)
}
