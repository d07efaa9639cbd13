package payment

import (
	"fmt"

	dompay "github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/culqi"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/paypal"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/yape"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
)

// Clients are the provider APIs behind each adapter.
type Clients struct {
	PayPal paypal.Client
	Culqi  culqi.Client
	Yape   yape.Client
}

// SandboxClients returns in-process providers that approve charges at the given rate.
func SandboxClients(approvalRate float64) Clients {
	return Clients{
		PayPal: paypal.NewSandbox(approvalRate),
		Culqi:  culqi.NewSandbox(approvalRate),
		Yape:   yape.NewSandbox(approvalRate),
	}
}

// Registry maps payment methods to shared adapter instances. Adapters hold no
// per-order state, so one instance per method serves every checkout.
type Registry struct {
	paypal *paypal.Adapter
	culqi  *culqi.Adapter
	yape   *yape.Adapter
	guards []*provider.Guard
}

// NewRegistry wraps each client in its own circuit breaker.
func NewRegistry(c Clients, breaker provider.Settings, tel observability.Observability) *Registry {
	ppGuard := provider.NewGuard("paypal", breaker, tel)
	cqGuard := provider.NewGuard("culqi", breaker, tel)
	ypGuard := provider.NewGuard("yape", breaker, tel)
	return &Registry{
		paypal: paypal.NewAdapter(c.PayPal, ppGuard),
		culqi:  culqi.NewAdapter(c.Culqi, cqGuard),
		yape:   yape.NewAdapter(c.Yape, ypGuard),
		guards: []*provider.Guard{ppGuard, cqGuard, ypGuard},
	}
}

func (r *Registry) Resolve(m dompay.Method) (dompay.Gateway, error) {
	switch m {
	case dompay.MethodPayPal:
		return r.paypal, nil
	case dompay.MethodCulqi:
		return r.culqi, nil
	case dompay.MethodYape:
		return r.yape, nil
	default:
		return nil, fmt.Errorf("%w: %q", dompay.ErrUnknownMethod, m)
	}
}

// BreakerStates reports each provider's circuit breaker state keyed by peer.
func (r *Registry) BreakerStates() map[string]string {
	out := make(map[string]string, len(r.guards))
	for _, g := range r.guards {
		out[g.Peer()] = g.State()
	}
	return out
}
