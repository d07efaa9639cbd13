package httppresentation

import (
	"time"

	appcart "github.com/Zhima-Mochi/gamestore/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/gamestore/internal/application/catalog"
	"github.com/Zhima-Mochi/gamestore/internal/domain/fulfillment"
	domnotification "github.com/Zhima-Mochi/gamestore/internal/domain/notification"
	domorder "github.com/Zhima-Mochi/gamestore/internal/domain/order"
	dompay "github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
)

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Genre       string `json:"genre"`
	Platform    string `json:"platform"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	// Stock is only reported for physical products.
	Stock     *int `json:"stock,omitempty"`
	Available bool `json:"available"`
}

func toProduct(p *product.Product, available bool) productResponse {
	res := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Genre:       p.Genre,
		Platform:    p.Platform,
		Description: p.Description,
		Category:    string(p.Category),
		Price:       p.Price().StringFixed(2),
		Available:   available,
	}
	if p.Category == product.CategoryPhysical {
		stock := p.Stock()
		res.Stock = &stock
	}
	return res
}

func toItem(it appcatalog.Item) productResponse { return toProduct(it.Product, it.Available) }

type lineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

func toLines(lines []domorder.Line) []lineResponse {
	out := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Category:  string(l.Product.Category),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return out
}

type cartResponse struct {
	Customer string         `json:"customer"`
	Items    []lineResponse `json:"items"`
	Subtotal string         `json:"subtotal"`
	IGV      string         `json:"igv"`
	Total    string         `json:"total"`
	Currency string         `json:"currency"`
}

func toCart(s appcart.Summary) cartResponse {
	return cartResponse{
		Customer: s.Customer,
		Items:    toLines(s.Lines),
		Subtotal: s.Subtotal.StringFixed(2),
		IGV:      s.IGV.StringFixed(2),
		Total:    s.Total.StringFixed(2),
		Currency: s.Currency,
	}
}

type orderResponse struct {
	ID            string         `json:"id"`
	Customer      string         `json:"customer"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	TransactionID string         `json:"transaction_id,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
	Items         []lineResponse `json:"items"`
	Units         int            `json:"units"`
	Total         string         `json:"total"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toOrder(o *domorder.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		Customer:      o.Customer,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		TransactionID: o.TransactionID,
		FailureReason: o.FailureReason,
		Items:         toLines(o.Lines),
		Units:         o.Units(),
		Total:         o.Total().StringFixed(2),
		CreatedAt:     o.CreatedAt,
	}
}

type paymentResponse struct {
	Provider      string `json:"provider"`
	Succeeded     bool   `json:"succeeded"`
	TransactionID string `json:"transaction_id,omitempty"`
	AmountCharged string `json:"amount_charged"`
	Currency      string `json:"currency"`
	Message       string `json:"message"`
}

func toPayment(r dompay.Result) paymentResponse {
	return paymentResponse{
		Provider:      r.Provider,
		Succeeded:     r.Succeeded,
		TransactionID: r.TransactionID,
		AmountCharged: r.AmountCharged.StringFixed(2),
		Currency:      r.Currency,
		Message:       r.Message,
	}
}

type deliveryResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Category       string `json:"category"`
	Quantity       int    `json:"quantity"`
	Message        string `json:"message"`
	ActivationCode string `json:"activation_code,omitempty"`
	DurationDays   int    `json:"duration_days,omitempty"`
	RemainingStock *int   `json:"remaining_stock,omitempty"`
}

func toDeliveries(ds []fulfillment.Delivery) []deliveryResponse {
	out := make([]deliveryResponse, 0, len(ds))
	for _, d := range ds {
		res := deliveryResponse{
			ProductID:      d.ProductID,
			ProductName:    d.ProductName,
			Category:       string(d.Category),
			Quantity:       d.Quantity,
			Message:        d.Message,
			ActivationCode: d.ActivationCode,
			DurationDays:   d.DurationDays,
		}
		if d.Category == product.CategoryPhysical {
			left := d.RemainingStock
			res.RemainingStock = &left
		}
		out = append(out, res)
	}
	return out
}

type checkoutResponse struct {
	Order             orderResponse      `json:"order"`
	Payment           paymentResponse    `json:"payment"`
	Deliveries        []deliveryResponse `json:"deliveries,omitempty"`
	FulfillmentErrors []string           `json:"fulfillment_errors,omitempty"`
}

type verificationResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Provider      string `json:"provider"`
}

type notificationResponse struct {
	Event     string    `json:"event"`
	OrderID   string    `json:"order_id"`
	Customer  string    `json:"customer,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotifications(ns []domnotification.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationResponse{
			Event:     n.Event,
			OrderID:   n.OrderID,
			Customer:  n.Customer,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
