package payment

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/order"
	dompay "github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/memory"
	infrapay "github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chargedYape(t *testing.T, r *infrapay.Registry) string {
	t.Helper()
	ctx := context.Background()
	catalog, err := memory.NewDemoCatalog()
	require.NoError(t, err)
	p, err := catalog.FindByID(ctx, "G005")
	require.NoError(t, err)
	line, err := order.NewLine(p, 1)
	require.NoError(t, err)
	o, err := order.New("ORD-0001", "Ana", []order.Line{line}, time.Now())
	require.NoError(t, err)

	gw, err := r.Resolve(dompay.MethodYape)
	require.NoError(t, err)
	res, err := gw.Charge(ctx, o, "PEN")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	return res.TransactionID
}

func TestVerifyPayment_ApprovedCharge(t *testing.T) {
	r := infrapay.NewRegistry(infrapay.SandboxClients(1), provider.DefaultSettings(), nil)
	txID := chargedYape(t, r)
	uc := NewVerifyPaymentUseCase(r, nil)

	v, err := uc.Execute(context.Background(), VerifyPaymentInput{Method: "yape", TransactionID: txID})
	require.NoError(t, err)
	assert.Equal(t, dompay.VerificationApproved, v.Status)
	assert.Equal(t, txID, v.TransactionID)
}

func TestVerifyPayment_Rejections(t *testing.T) {
	r := infrapay.NewRegistry(infrapay.SandboxClients(1), provider.DefaultSettings(), nil)
	uc := NewVerifyPaymentUseCase(r, nil)
	ctx := context.Background()

	_, err := uc.Execute(ctx, VerifyPaymentInput{Method: "YAPE", TransactionID: " "})
	assert.ErrorIs(t, err, ErrNoTransaction)

	_, err = uc.Execute(ctx, VerifyPaymentInput{Method: "BITCOIN", TransactionID: "X-1"})
	assert.ErrorIs(t, err, dompay.ErrUnknownMethod)

	_, err = uc.Execute(ctx, VerifyPaymentInput{Method: "YAPE", TransactionID: "YAPE-abc"})
	assert.ErrorIs(t, err, dompay.ErrMalformedTransaction)
}
