package culqi

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
)

// Charge states as reported by Culqi.
const (
	EstadoExitoso   = "exitoso"
	EstadoPendiente = "pendiente"
	EstadoRechazado = "rechazado"
	EstadoNoExiste  = "no_existe"
)

const (
	cargoIDPrefix = "ch_"
	cargoIDLength = 12
)

// CargoRequest charges an amount expressed in céntimos.
type CargoRequest struct {
	MontoCentimos int64
	Concepto      string
	Email         string
}

type Cargo struct {
	CargoID       string
	Estado        string
	MontoCentimos int64
	Concepto      string
	Email         string
}

// Client is the subset of the Culqi charges API the adapter needs.
type Client interface {
	CrearCargo(ctx context.Context, req CargoRequest) (Cargo, error)
	ConsultarCargo(ctx context.Context, cargoID string) (Cargo, error)
}

// Sandbox is an in-process Culqi that remembers issued charges.
type Sandbox struct {
	mu       sync.Mutex
	approver *provider.Approver
	cargos   map[string]Cargo
	outage   error
}

func NewSandbox(approvalRate float64) *Sandbox {
	return &Sandbox{
		approver: provider.NewApprover(approvalRate),
		cargos:   make(map[string]Cargo),
	}
}

func (s *Sandbox) SetApprovalRate(rate float64) { s.approver.SetRate(rate) }

// SetOutage makes every call fail with err until cleared with nil.
func (s *Sandbox) SetOutage(err error) {
	s.mu.Lock()
	s.outage = err
	s.mu.Unlock()
}

func (s *Sandbox) SetEstado(cargoID, estado string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cargos[cargoID]; ok {
		c.Estado = estado
		s.cargos[cargoID] = c
	}
}

func (s *Sandbox) CrearCargo(ctx context.Context, req CargoRequest) (Cargo, error) {
	if err := s.check(ctx); err != nil {
		return Cargo{}, err
	}
	estado := EstadoRechazado
	if s.approver.Approve() {
		estado = EstadoExitoso
	}
	c := Cargo{
		CargoID:       cargoIDPrefix + s.approver.Alnum(cargoIDLength),
		Estado:        estado,
		MontoCentimos: req.MontoCentimos,
		Concepto:      req.Concepto,
		Email:         req.Email,
	}
	s.mu.Lock()
	s.cargos[c.CargoID] = c
	s.mu.Unlock()
	return c, nil
}

// ConsultarCargo reports unknown charges as no_existe.
func (s *Sandbox) ConsultarCargo(ctx context.Context, cargoID string) (Cargo, error) {
	if err := s.check(ctx); err != nil {
		return Cargo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cargos[cargoID]
	if !ok {
		return Cargo{CargoID: cargoID, Estado: EstadoNoExiste}, nil
	}
	return c, nil
}

func (s *Sandbox) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outage
}
