package httppresentation

import (
	"fmt"
	"net/http"

	apporder "github.com/Zhima-Mochi/gamestore/internal/application/order"
	apppayment "github.com/Zhima-Mochi/gamestore/internal/application/payment"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Store     string            `json:"store"`
	Providers map[string]string `json:"providers,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	res := healthResponse{Status: "ok"}
	if h.cfg != nil {
		res.Store = h.cfg.StoreName()
	}
	if h.providers != nil {
		res.Providers = h.providers.BreakerStates()
	}
	writeOK(w, http.StatusOK, "", res)
}

type ordersResponse struct {
	Orders   []orderResponse `json:"orders"`
	Revenue  string          `json:"revenue"`
	Currency string          `json:"currency"`
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.ListOrders.Execute(r.Context(), apporder.ListOrdersInput{
		Customer: r.URL.Query().Get("customer"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := ordersResponse{Orders: make([]orderResponse, 0, len(res.Orders)), Revenue: res.Revenue.StringFixed(2)}
	if h.cfg != nil {
		out.Currency = h.cfg.CurrencyCode()
	}
	for _, o := range res.Orders {
		out.Orders = append(out.Orders, toOrder(o))
	}
	msg := ""
	if len(out.Orders) == 0 {
		msg = "No orders recorded yet."
	}
	writeOK(w, http.StatusOK, msg, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder.Execute(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", toOrder(o))
}

func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	v, err := h.uc.VerifyPayment.Execute(r.Context(), apppayment.VerifyPaymentInput{
		Method:        chi.URLParam(r, "method"),
		TransactionID: chi.URLParam(r, "transactionID"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", verificationResponse{
		TransactionID: v.TransactionID,
		Status:        string(v.Status),
		Provider:      v.Provider,
	})
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, "", h.cfg.Values())
}

type setConfigRequest struct {
	Value string `json:"value"`
}

func (h *Handler) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req setConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	key := chi.URLParam(r, "key")
	if err := h.cfg.Set(key, req.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	logctx.FromOr(r.Context(), h.log).Info("store_config_updated",
		observability.F("key", key),
		observability.F("value", req.Value),
	)
	writeOK(w, http.StatusOK, fmt.Sprintf("%s updated", key), h.cfg.Values())
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if h.inbox == nil {
		writeOK(w, http.StatusOK, "", []notificationResponse{})
		return
	}
	writeOK(w, http.StatusOK, "", toNotifications(h.inbox.List(r.URL.Query().Get("customer"))))
}
