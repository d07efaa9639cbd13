package httppresentation

import (
	"fmt"
	"net/http"
	"strings"

	appcart "github.com/Zhima-Mochi/gamestore/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/gamestore/internal/application/catalog"
	appcheckout "github.com/Zhima-Mochi/gamestore/internal/application/checkout"
	domcart "github.com/Zhima-Mochi/gamestore/internal/domain/cart"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *Handler) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.ListCatalog.Execute(r.Context(), appcatalog.ListCatalogInput{
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	products := make([]productResponse, 0, len(res.Items))
	for _, it := range res.Items {
		products = append(products, toItem(it))
	}
	writeOK(w, http.StatusOK, "", products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	it, err := h.uc.GetProduct.Execute(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "", toItem(*it))
}

type updateProductRequest struct {
	Price   *string `json:"price"`
	Restock int     `json:"restock"`
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	cmd := appcatalog.UpdateProductInput{ProductID: chi.URLParam(r, "productID"), Restock: req.Restock}
	if req.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*req.Price))
		if err != nil {
			writeDomainError(w, fmt.Errorf("%w: price %q", errBadRequest, *req.Price))
			return
		}
		cmd.Price = &price
	}

	p, err := h.uc.UpdateProduct.Execute(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Product updated", toProduct(p, h.cfg.IsCategoryEnabled(p.Category)))
}

type setCustomerRequest struct {
	Customer string `json:"customer"`
}

// handleSetCustomer starts a new session for the customer. The cart starts empty.
func (h *Handler) handleSetCustomer(w http.ResponseWriter, r *http.Request) {
	var req setCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	name := strings.TrimSpace(req.Customer)
	if name == "" {
		writeDomainError(w, appcheckout.ErrNoCustomer)
		return
	}
	h.session.SetCustomer(name)
	writeOK(w, http.StatusOK, fmt.Sprintf("Welcome, %s!", name), map[string]string{"customer": name})
}

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	var summary appcart.Summary
	_ = h.session.Do(func(customer string, c *domcart.Cart) error {
		summary = appcart.Summarize(customer, c, h.cfg)
		return nil
	})
	writeOK(w, http.StatusOK, "", toCart(summary))
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	var res *appcart.AddToCartResult
	var summary appcart.Summary
	err := h.session.Do(func(customer string, c *domcart.Cart) error {
		if customer == "" {
			return appcheckout.ErrNoCustomer
		}
		var err error
		res, err = h.uc.AddToCart.Execute(r.Context(), appcart.AddToCartInput{
			Cart:      c,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
		summary = appcart.Summarize(customer, c, h.cfg)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Merged {
		status = http.StatusOK
	}
	writeOK(w, status, res.Message, toCart(summary))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	_ = h.session.Do(func(_ string, c *domcart.Cart) error {
		c.Clear()
		return nil
	})
	writeOK(w, http.StatusOK, "Cart emptied", nil)
}

type checkoutRequest struct {
	Method string `json:"method"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	var res *appcheckout.CheckoutResult
	err := h.session.Do(func(customer string, c *domcart.Cart) error {
		var err error
		res, err = h.uc.Checkout.Execute(r.Context(), appcheckout.CheckoutInput{
			Cart:     c,
			Customer: customer,
			Method:   req.Method,
		})
		return err
	})
	if err != nil {
		if res != nil {
			writeFailure(w, err, res.Message, checkoutResponse{Order: toOrder(res.Order), Payment: toPayment(res.Payment)})
			return
		}
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, res.Message, checkoutResponse{
		Order:             toOrder(res.Order),
		Payment:           toPayment(res.Payment),
		Deliveries:        toDeliveries(res.Deliveries),
		FulfillmentErrors: res.FulfillmentErrors,
	})
}
