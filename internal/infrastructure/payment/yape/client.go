package yape

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/gamestore/internal/infrastructure/payment/provider"
	"github.com/shopspring/decimal"
)

// Operation states as reported by Yape.
const (
	EstadoAprobado  = "aprobado"
	EstadoEnProceso = "en_proceso"
	EstadoRechazado = "rechazado"
	EstadoNoExiste  = "no_existe"
)

const (
	minOperationCode = 100000
	maxOperationCode = 999999
)

type PagoRequest struct {
	Numero   string
	Monto    decimal.Decimal
	Concepto string
}

type Operacion struct {
	CodigoOperacion int
	Numero          string
	Monto           decimal.Decimal
	Aprobado        bool
	Estado          string
}

// Client is the subset of the Yape direct API the adapter needs.
type Client interface {
	IniciarPago(ctx context.Context, req PagoRequest) (Operacion, error)
	ConsultarOperacion(ctx context.Context, codigo int) (Operacion, error)
}

// Sandbox is an in-process Yape that remembers issued operations.
type Sandbox struct {
	mu         sync.Mutex
	approver   *provider.Approver
	operations map[int]Operacion
	outage     error
}

func NewSandbox(approvalRate float64) *Sandbox {
	return &Sandbox{
		approver:   provider.NewApprover(approvalRate),
		operations: make(map[int]Operacion),
	}
}

func (s *Sandbox) SetApprovalRate(rate float64) { s.approver.SetRate(rate) }

// SetOutage makes every call fail with err until cleared with nil.
func (s *Sandbox) SetOutage(err error) {
	s.mu.Lock()
	s.outage = err
	s.mu.Unlock()
}

func (s *Sandbox) SetEstado(codigo int, estado string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op, ok := s.operations[codigo]; ok {
		op.Estado = estado
		op.Aprobado = estado == EstadoAprobado
		s.operations[codigo] = op
	}
}

func (s *Sandbox) IniciarPago(ctx context.Context, req PagoRequest) (Operacion, error) {
	if err := s.check(ctx); err != nil {
		return Operacion{}, err
	}
	approved := s.approver.Approve()
	op := Operacion{
		Numero:   req.Numero,
		Monto:    req.Monto,
		Aprobado: approved,
		Estado:   EstadoRechazado,
	}
	if approved {
		op.Estado = EstadoAprobado
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		code := s.approver.IntRange(minOperationCode, maxOperationCode)
		if _, taken := s.operations[code]; !taken {
			op.CodigoOperacion = code
			break
		}
	}
	s.operations[op.CodigoOperacion] = op
	return op, nil
}

// ConsultarOperacion reports unknown codes as no_existe.
func (s *Sandbox) ConsultarOperacion(ctx context.Context, codigo int) (Operacion, error) {
	if err := s.check(ctx); err != nil {
		return Operacion{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operations[codigo]
	if !ok {
		return Operacion{CodigoOperacion: codigo, Estado: EstadoNoExiste}, nil
	}
	return op, nil
}

func (s *Sandbox) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outage
}
