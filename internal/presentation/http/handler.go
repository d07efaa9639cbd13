package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/application"
	appcart "github.com/Zhima-Mochi/gamestore/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/gamestore/internal/application/catalog"
	appcheckout "github.com/Zhima-Mochi/gamestore/internal/application/checkout"
	apporder "github.com/Zhima-Mochi/gamestore/internal/application/order"
	apppayment "github.com/Zhima-Mochi/gamestore/internal/application/payment"
	domcart "github.com/Zhima-Mochi/gamestore/internal/domain/cart"
	domnotification "github.com/Zhima-Mochi/gamestore/internal/domain/notification"
	domorder "github.com/Zhima-Mochi/gamestore/internal/domain/order"
	dompay "github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	tracerName           = "gamestore.http"
	unknownRoute         = "unknown"
)

var errBadRequest = errors.New("malformed request body")

// UseCases are the application entry points served over HTTP.
type UseCases struct {
	ListCatalog   application.UseCase[appcatalog.ListCatalogInput, *appcatalog.ListCatalogResult]
	GetProduct    application.UseCase[string, *appcatalog.Item]
	UpdateProduct application.UseCase[appcatalog.UpdateProductInput, *product.Product]
	AddToCart     application.UseCase[appcart.AddToCartInput, *appcart.AddToCartResult]
	Checkout      application.UseCase[appcheckout.CheckoutInput, *appcheckout.CheckoutResult]
	ListOrders    application.UseCase[apporder.ListOrdersInput, *apporder.ListOrdersResult]
	GetOrder      application.UseCase[string, *domorder.Order]
	VerifyPayment application.UseCase[apppayment.VerifyPaymentInput, *dompay.Verification]
}

// StoreConfig is the runtime-editable store configuration.
type StoreConfig interface {
	appcart.TaxPolicy
	appcatalog.Availability
	StoreName() string
	CurrencySymbol() string
	Values() map[string]string
	Set(key, value string) error
}

// Providers reports the health of the payment provider integrations.
type Providers interface {
	BreakerStates() map[string]string
}

type Handler struct {
	uc        UseCases
	session   *domcart.Session
	cfg       StoreConfig
	providers Providers
	inbox     domnotification.Inbox
	log       observability.Logger
	tel       observability.Observability
}

func NewHandler(
	uc UseCases,
	session *domcart.Session,
	cfg StoreConfig,
	providers Providers,
	inbox domnotification.Inbox,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if session == nil {
		session = domcart.NewSession()
	}
	return &Handler{
		uc:        uc,
		session:   session,
		cfg:       cfg,
		providers: providers,
		inbox:     inbox,
		log:       tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:       tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Trace → ObservabilityMiddleware (request logger + HTTP metrics) → Access log → Handler
	r.Use(
		h.withTrace,
		ObservabilityMiddleware(h.log, func(r *http.Request) string { return r.Header.Get(headerRequestID) }, h.tel),
		h.withAccessLog,
	)

	r.Get("/health", h.handleHealth)

	r.Get("/catalog", h.handleListCatalog)
	r.Get("/catalog/{productID}", h.handleGetProduct)
	r.Patch("/catalog/{productID}", h.handleUpdateProduct)

	r.Put("/session", h.handleSetCustomer)
	r.Get("/cart", h.handleViewCart)
	r.Post("/cart/items", h.handleAddToCart)
	r.Delete("/cart", h.handleClearCart)
	r.Post("/checkout", h.handleCheckout)

	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{orderID}", h.handleGetOrder)
	r.Get("/payments/{method}/{transactionID}", h.handleVerifyPayment)

	r.Get("/config", h.handleGetConfig)
	r.Put("/config/{key}", h.handleSetConfig)
	r.Get("/notifications", h.handleListNotifications)

	return r
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromRequest(r)),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
// The span is renamed to the matched route template once routing is done.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer(tracerName)
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctxWithSpan, span := tracer.Start(parentCtx,
			r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctxWithSpan))

		if route := routeFromRequest(r); route != unknownRoute {
			span.SetName(r.Method + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.Int("http.status_code", lrw.status))
		if lrw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(lrw.status))
		}
	})
}

// routeFromRequest returns chi's matched route template, a low-cardinality label.
func routeFromRequest(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unknownRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unknownRoute
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// envelope is the body of every JSON response.
type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{OK: true, Message: message, Data: data})
}

// writeDomainError maps an application error onto an HTTP status via its Kind.
func writeDomainError(w http.ResponseWriter, err error) {
	writeFailure(w, err, err.Error(), nil)
}

func writeFailure(w http.ResponseWriter, err error, message string, data any) {
	if errors.Is(err, errBadRequest) {
		writeJSON(w, http.StatusBadRequest, envelope{Message: message, Kind: "BadRequest"})
		return
	}
	kind := appcheckout.Classify(err)
	writeJSON(w, statusFor(kind), envelope{Message: message, Kind: string(kind), Data: data})
}

func statusFor(kind appcheckout.Kind) int {
	switch kind {
	case appcheckout.KindValidation:
		return http.StatusUnprocessableEntity
	case appcheckout.KindLookup:
		return http.StatusNotFound
	case appcheckout.KindPaymentDeclined:
		return http.StatusPaymentRequired
	case appcheckout.KindPrecondition:
		return http.StatusConflict
	case appcheckout.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
