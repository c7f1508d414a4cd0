package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Step is a screen in the booking sequence.
type Step int

const (
	StepMap Step = iota
	StepSpotDetail
	StepBookingForm
	StepPayment
	StepConfirmation
)

var stepNames = [...]string{"map", "spot-detail", "booking-form", "payment", "confirmation"}

func (s Step) String() string {
	if s < StepMap || s > StepConfirmation {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

var (
	ErrOutOfOrder  = errors.New("booking step out of order")
	ErrMissingData = errors.New("vehicle, start and end are required")
)

// Window is a requested booking interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Request is the booking form input.
type Request struct {
	Vehicle Vehicle
	Window  Window
}

// Flow walks one booking from map to confirmation. Confirmed bookings are
// appended to the session's History.
type Flow struct {
	mu        sync.Mutex
	step      Step
	spot      *Spot
	current   *Booking
	processor PaymentProcessor
	history   *History
}

// NewFlow starts a flow at the map step.
func NewFlow(processor PaymentProcessor, history *History) *Flow {
	if processor == nil {
		processor = NewSimulatedProcessor()
	}
	if history == nil {
		history = &History{}
	}
	return &Flow{step: StepMap, processor: processor, history: history}
}

// Step returns the current screen.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Booking returns a copy of the booking being built, if any.
func (f *Flow) Booking() (Booking, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Booking{}, false
	}
	return *f.current, true
}

// SelectSpot opens the detail screen for spot.
func (f *Flow) SelectSpot(spot Spot) error {
	if spot.HourlyRateCents <= 0 {
		return ErrInvalidRate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(StepMap); err != nil {
		return err
	}
	f.spot = &spot
	f.step = StepSpotDetail
	return nil
}

// StartBooking moves from spot detail to the booking form.
func (f *Flow) StartBooking() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(StepSpotDetail); err != nil {
		return err
	}
	f.step = StepBookingForm
	return nil
}

// Submit prices the request and creates a PENDING booking.
func (f *Flow) Submit(req Request) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(StepBookingForm); err != nil {
		return Booking{}, err
	}
	if req.Vehicle.ID == "" || req.Window.Start.IsZero() || req.Window.End.IsZero() {
		return Booking{}, ErrMissingData
	}
	quote, err := NewQuote(f.spot.HourlyRateCents, req.Window.Start, req.Window.End)
	if err != nil {
		return Booking{}, err
	}

	f.current = &Booking{
		ID:          uuid.NewString(),
		Spot:        *f.spot,
		VehicleID:   req.Vehicle.ID,
		VehicleInfo: req.Vehicle.Description(),
		Start:       req.Window.Start,
		End:         req.Window.End,
		Quote:       quote,
		Status:      StatusPending,
	}
	f.step = StepPayment
	return *f.current, nil
}

// Pay charges the quoted total and confirms the booking. The lock is not
// held while the processor runs.
func (f *Flow) Pay(ctx context.Context, method string) (Booking, error) {
	f.mu.Lock()
	if err := f.expect(StepPayment); err != nil {
		f.mu.Unlock()
		return Booking{}, err
	}
	pending := *f.current
	f.mu.Unlock()

	payment, err := f.processor.Charge(ctx, pending.Quote.TotalCents, method)
	if err != nil {
		return Booking{}, fmt.Errorf("payment: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.expect(StepPayment); err != nil || f.current == nil || f.current.ID != pending.ID {
		return Booking{}, ErrOutOfOrder
	}
	if err := f.current.Transition(StatusConfirmed); err != nil {
		return Booking{}, err
	}
	f.current.Payment = payment
	f.step = StepConfirmation
	f.history.Add(*f.current)
	return *f.current, nil
}

// Back returns to the previous screen. Leaving payment discards the
// pending booking; confirmation cannot be left with Back.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.step {
	case StepMap, StepConfirmation:
		return ErrOutOfOrder
	case StepSpotDetail:
		f.spot = nil
	case StepPayment:
		f.current = nil
	}
	f.step--
	return nil
}

// Reset returns to the map for a new booking.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepMap
	f.spot = nil
	f.current = nil
}

func (f *Flow) expect(step Step) error {
	if f.step != step {
		return fmt.Errorf("%w: at %s, want %s", ErrOutOfOrder, f.step, step)
	}
	return nil
}
