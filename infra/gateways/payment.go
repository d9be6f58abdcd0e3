package gateways

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrPaymentDeclined = errors.New("payment declined")

// PaymentGatewayMemory keeps a ledger of paid orders. Charges above limit
// are declined when a limit is set.
type PaymentGatewayMemory struct {
	mutex  sync.Mutex
	limit  float64
	ledger map[string]float64
}

func NewPaymentGatewayMemory(limit float64) *PaymentGatewayMemory {
	return &PaymentGatewayMemory{limit: limit, ledger: make(map[string]float64)}
}

func (p *PaymentGatewayMemory) Charge(ctx context.Context, orderId string, amount float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.limit > 0 && amount > p.limit {
		return fmt.Errorf("%w: %.2f exceeds %.2f", ErrPaymentDeclined, amount, p.limit)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if _, paid := p.ledger[orderId]; paid {
		return nil
	}
	p.ledger[orderId] = amount
	return nil
}

// Charged returns the amount paid per order.
func (p *PaymentGatewayMemory) Charged() map[string]float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make(map[string]float64, len(p.ledger))
	for k, v := range p.ledger {
		out[k] = v
	}
	return out
}
