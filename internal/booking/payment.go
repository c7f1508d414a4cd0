package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPaymentDelay mirrors the processing pause shown to the user.
const DefaultPaymentDelay = 2 * time.Second

// PaymentStatus reports the outcome of a charge.
type PaymentStatus string

const PaymentCompleted PaymentStatus = "COMPLETED"

var ErrInvalidAmount = errors.New("payment amount must be positive")

// Payment records a completed charge for a booking.
type Payment struct {
	Method        string
	Status        PaymentStatus
	TransactionID string
	AmountCents   int64
	PaidAt        time.Time
}

// PaymentProcessor charges a booking total.
type PaymentProcessor interface {
	Charge(ctx context.Context, amountCents int64, method string) (*Payment, error)
}

// SimulatedProcessor approves every charge after a fixed delay. No gateway
// is contacted.
type SimulatedProcessor struct {
	Delay time.Duration
	Now   func() time.Time
}

// NewSimulatedProcessor returns a processor with the default delay.
func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{Delay: DefaultPaymentDelay, Now: time.Now}
}

// Charge waits for the configured delay, or until ctx is done.
func (p *SimulatedProcessor) Charge(ctx context.Context, amountCents int64, method string) (*Payment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return &Payment{
		Method:        method,
		Status:        PaymentCompleted,
		TransactionID: newTransactionID(),
		AmountCents:   amountCents,
		PaidAt:        now(),
	}, nil
}

// newTransactionID returns "TXN" followed by nine uppercase alphanumerics.
func newTransactionID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN" + strings.ToUpper(raw[:9])
}
