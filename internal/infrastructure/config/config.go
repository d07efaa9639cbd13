package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownKey   = errors.New("config: unknown key")
	ErrInvalidValue = errors.New("config: invalid value")
)

// Runtime-editable keys.
const (
	KeyStoreName      = "store_name"
	KeyCurrency       = "currency"
	KeyCurrencySymbol = "currency_symbol"
	KeyIGV            = "igv"
	KeyCategories     = "categories"
	KeyPaymentMethods = "payment_methods"
	KeyOrderPrefix    = "order_prefix"
)

type Settings struct {
	ServiceName string
	Env         string
	HTTPAddr    string
	LogFile     string
	Debug       bool

	StoreName      string
	Currency       string
	CurrencySymbol string
	IGV            decimal.Decimal
	Categories     []product.Category
	PaymentMethods []payment.Method
	OrderPrefix    string
	CatalogFile    string

	ApprovalRate    float64
	BreakerTimeout  time.Duration
	BreakerFailures uint32

	OTLPEndpoint string
}

// Default returns the settings of a stock store: every category and method enabled, PEN, 18% IGV.
func Default() Settings {
	return Settings{
		ServiceName:     "gamestore",
		Env:             "dev",
		HTTPAddr:        ":8080",
		StoreName:       "GameStore Peru",
		Currency:        "PEN",
		CurrencySymbol:  "S/",
		IGV:             decimal.RequireFromString("0.18"),
		Categories:      product.Categories(),
		PaymentMethods:  payment.Methods(),
		OrderPrefix:     "ORD",
		ApprovalRate:    1,
		BreakerTimeout:  30 * time.Second,
		BreakerFailures: 5,
	}
}

// Load reads an optional .env file, then the process environment, over Default.
func Load() (*Store, error) {
	_ = godotenv.Load()

	s := Default()
	s.ServiceName = getEnv("SERVICE_NAME", s.ServiceName)
	s.Env = getEnv("ENV", s.Env)
	s.HTTPAddr = getEnv("HTTP_ADDR", s.HTTPAddr)
	s.LogFile = getEnv("LOG_FILE", s.LogFile)
	s.Debug = getEnvBool("DEBUG", s.Debug)
	s.CatalogFile = getEnv("CATALOG_FILE", s.CatalogFile)
	s.ApprovalRate = getEnvFloat("PAYMENT_APPROVAL_RATE", s.ApprovalRate)
	s.BreakerTimeout = getEnvDuration("PAYMENT_BREAKER_TIMEOUT", s.BreakerTimeout)
	s.BreakerFailures = uint32(getEnvInt("PAYMENT_BREAKER_FAILURES", int(s.BreakerFailures)))
	s.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", s.OTLPEndpoint)

	editable := map[string]string{
		KeyStoreName:      "STORE_NAME",
		KeyCurrency:       "STORE_CURRENCY",
		KeyCurrencySymbol: "STORE_CURRENCY_SYMBOL",
		KeyIGV:            "STORE_IGV",
		KeyCategories:     "STORE_CATEGORIES",
		KeyPaymentMethods: "STORE_PAYMENT_METHODS",
		KeyOrderPrefix:    "ORDER_PREFIX",
	}
	for key, env := range editable {
		v, ok := os.LookupEnv(env)
		if !ok || v == "" {
			continue
		}
		if err := apply(&s, key, v); err != nil {
			return nil, fmt.Errorf("%s: %w", env, err)
		}
	}
	if s.ApprovalRate < 0 || s.ApprovalRate > 1 {
		return nil, fmt.Errorf("PAYMENT_APPROVAL_RATE: %w: %v not in [0,1]", ErrInvalidValue, s.ApprovalRate)
	}

	return New(s), nil
}

// Store is the store-wide configuration. One Store is shared by every component of
// a running store; it is passed explicitly, never reached through a global.
type Store struct {
	mu  sync.RWMutex
	s   Settings
	seq atomic.Uint64
}

func New(s Settings) *Store {
	st := &Store{s: clone(s)}
	return st
}

// Settings returns a snapshot of the current configuration.
func (st *Store) Settings() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return clone(st.s)
}

func (st *Store) CurrencyCode() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.Currency
}

func (st *Store) CurrencySymbol() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.CurrencySymbol
}

func (st *Store) StoreName() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.StoreName
}

func (st *Store) IsCategoryEnabled(c product.Category) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, enabled := range st.s.Categories {
		if enabled == c {
			return true
		}
	}
	return false
}

func (st *Store) IsMethodEnabled(m payment.Method) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, enabled := range st.s.PaymentMethods {
		if enabled == m {
			return true
		}
	}
	return false
}

// NextOrderID returns "<prefix>-%04d" from a counter that starts at 1 and is never reused.
func (st *Store) NextOrderID() string {
	n := st.seq.Add(1)
	st.mu.RLock()
	prefix := st.s.OrderPrefix
	st.mu.RUnlock()
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// CalculateIGV applies the informational sales tax rate, rounded to cents.
func (st *Store) CalculateIGV(subtotal decimal.Decimal) decimal.Decimal {
	st.mu.RLock()
	rate := st.s.IGV
	st.mu.RUnlock()
	return subtotal.Mul(rate).Round(2)
}

// Get renders a runtime-editable key.
func (st *Store) Get(key string) (string, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return render(st.s, key)
}

// Set parses and applies a runtime-editable key.
func (st *Store) Set(key, value string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	next := clone(st.s)
	if err := apply(&next, key, value); err != nil {
		return err
	}
	st.s = next
	return nil
}

// Values renders every runtime-editable key.
func (st *Store) Values() map[string]string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make(map[string]string, len(Keys()))
	for _, k := range Keys() {
		out[k], _ = render(st.s, k)
	}
	return out
}

func Keys() []string {
	keys := []string{KeyStoreName, KeyCurrency, KeyCurrencySymbol, KeyIGV, KeyCategories, KeyPaymentMethods, KeyOrderPrefix}
	sort.Strings(keys)
	return keys
}

func render(s Settings, key string) (string, error) {
	switch key {
	case KeyStoreName:
		return s.StoreName, nil
	case KeyCurrency:
		return s.Currency, nil
	case KeyCurrencySymbol:
		return s.CurrencySymbol, nil
	case KeyIGV:
		return s.IGV.String(), nil
	case KeyCategories:
		tags := make([]string, len(s.Categories))
		for i, c := range s.Categories {
			tags[i] = string(c)
		}
		return strings.Join(tags, ","), nil
	case KeyPaymentMethods:
		tags := make([]string, len(s.PaymentMethods))
		for i, m := range s.PaymentMethods {
			tags[i] = string(m)
		}
		return strings.Join(tags, ","), nil
	case KeyOrderPrefix:
		return s.OrderPrefix, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func apply(s *Settings, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyStoreName:
		if value == "" {
			return fmt.Errorf("%w: store name is empty", ErrInvalidValue)
		}
		s.StoreName = value
	case KeyCurrency:
		if len(value) != 3 {
			return fmt.Errorf("%w: currency %q is not an ISO 4217 code", ErrInvalidValue, value)
		}
		s.Currency = strings.ToUpper(value)
	case KeyCurrencySymbol:
		s.CurrencySymbol = value
	case KeyIGV:
		rate, err := decimal.NewFromString(value)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: igv %q must be a rate between 0 and 1", ErrInvalidValue, value)
		}
		s.IGV = rate
	case KeyCategories:
		var cats []product.Category
		for _, tag := range splitList(value) {
			c, err := product.ParseCategory(tag)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			cats = append(cats, c)
		}
		s.Categories = cats
	case KeyPaymentMethods:
		var methods []payment.Method
		for _, tag := range splitList(value) {
			m, err := payment.ParseMethod(tag)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			methods = append(methods, m)
		}
		s.PaymentMethods = methods
	case KeyOrderPrefix:
		if value == "" {
			return fmt.Errorf("%w: order prefix is empty", ErrInvalidValue)
		}
		s.OrderPrefix = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clone(s Settings) Settings {
	s.Categories = append([]product.Category(nil), s.Categories...)
	s.PaymentMethods = append([]payment.Method(nil), s.PaymentMethods...)
	return s
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
