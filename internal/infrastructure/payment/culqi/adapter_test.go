package culqi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	*Sandbox
	requests []CargoRequest
}

func (c *recordingClient) CrearCargo(ctx context.Context, req CargoRequest) (Cargo, error) {
	c.requests = append(c.requests, req)
	return c.Sandbox.CrearCargo(ctx, req)
}

func newOrder(t *testing.T, customer, price string, qty int) *order.Order {
	t.Helper()
	p, err := product.New(product.Attributes{ID: "G001", Name: "Elden Ring", Category: product.CategoryDigital},
		decimal.RequireFromString(price), 999)
	require.NoError(t, err)
	line, err := order.NewLine(p, qty)
	require.NoError(t, err)
	o, err := order.New("ORD-0042", customer, []order.Line{line}, time.Now())
	require.NoError(t, err)
	return o
}

func TestToCentimos_Truncates(t *testing.T) {
	assert.Equal(t, int64(19990), ToCentimos(decimal.RequireFromString("199.90")))
	assert.Equal(t, int64(1050), ToCentimos(decimal.RequireFromString("10.509")))
	assert.Equal(t, int64(0), ToCentimos(decimal.Zero))
}

func TestCustomerEmail(t *testing.T) {
	assert.Equal(t, "ana.maria.torres@email.com", CustomerEmail("Ana Maria Torres"))
	assert.Equal(t, "luis@email.com", CustomerEmail("LUIS"))
}

func TestCharge_TranslatesRequest(t *testing.T) {
	client := &recordingClient{Sandbox: NewSandbox(1)}
	a := NewAdapter(client, nil)
	o := newOrder(t, "Ana Torres", "199.90", 2)

	res, err := a.Charge(context.Background(), o, "PEN")
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, int64(39980), req.MontoCentimos)
	assert.Equal(t, "ana.torres@email.com", req.Email)
	assert.Contains(t, req.Concepto, "ORD-0042")

	assert.True(t, res.Succeeded)
	assert.Regexp(t, `^ch_[a-z0-9]{12}$`, res.TransactionID)
	assert.True(t, res.AmountCharged.Equal(o.Total()))
	assert.Equal(t, "PEN", res.Currency)

	v, err := a.Verify(context.Background(), res.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, payment.VerificationApproved, v.Status)
}

func TestCharge_Rejected(t *testing.T) {
	a := NewAdapter(NewSandbox(0), nil)
	res, err := a.Charge(context.Background(), newOrder(t, "Ana", "10.00", 1), "PEN")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Contains(t, res.Message, EstadoRechazado)
}

func TestCharge_Outage(t *testing.T) {
	sandbox := NewSandbox(1)
	sandbox.SetOutage(errors.New("timeout"))
	res, err := NewAdapter(sandbox, nil).Charge(context.Background(), newOrder(t, "Ana", "10.00", 1), "PEN")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Empty(t, res.TransactionID)
}

func TestVerify_StatusMapping(t *testing.T) {
	sandbox := NewSandbox(1)
	a := NewAdapter(sandbox, nil)
	ctx := context.Background()
	cargo, err := sandbox.CrearCargo(ctx, CargoRequest{MontoCentimos: 100})
	require.NoError(t, err)

	for estado, want := range map[string]payment.VerificationStatus{
		EstadoExitoso:   payment.VerificationApproved,
		EstadoPendiente: payment.VerificationPending,
		EstadoRechazado: payment.VerificationFailed,
	} {
		sandbox.SetEstado(cargo.CargoID, estado)
		v, err := a.Verify(ctx, cargo.CargoID)
		require.NoError(t, err)
		assert.Equal(t, want, v.Status, estado)
	}

	v, err := a.Verify(ctx, "ch_unknown")
	require.NoError(t, err)
	assert.Equal(t, payment.VerificationFailed, v.Status)
}
