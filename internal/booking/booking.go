// Package booking models the client-side reservation flow: choosing a spot,
// quoting a time window, paying through a simulated processor and tracking
// the resulting booking for the rest of the session. Nothing here is
// persisted.
package booking

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidWindow     = errors.New("end time must be after start time")
	ErrInvalidRate       = errors.New("hourly rate must be positive")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// serviceFeeBasisPoints is the 5% fee added at payment.
const serviceFeeBasisPoints = 500

// Spot is a bookable parking space.
type Spot struct {
	ID              string
	Title           string
	Address         string
	HourlyRateCents int64
}

// Vehicle is the car a booking is made for.
type Vehicle struct {
	ID           string
	Make         string
	Model        string
	LicensePlate string
}

// Description renders the vehicle the way it appears on a booking.
func (v Vehicle) Description() string {
	if v.Make == "" && v.Model == "" {
		return "Unknown Vehicle"
	}
	return fmt.Sprintf("%s %s - %s", v.Make, v.Model, v.LicensePlate)
}

// Quote is the priced duration of a booking window.
type Quote struct {
	Hours           int
	PriceCents      int64
	ServiceFeeCents int64
	TotalCents      int64
}

// NewQuote prices [start, end) at rateCents per started hour, with a one
// hour minimum.
func NewQuote(rateCents int64, start, end time.Time) (Quote, error) {
	if rateCents <= 0 {
		return Quote{}, ErrInvalidRate
	}
	if !end.After(start) {
		return Quote{}, ErrInvalidWindow
	}
	hours := int(math.Ceil(end.Sub(start).Hours()))
	if hours < 1 {
		hours = 1
	}
	price := int64(hours) * rateCents
	fee := (price*serviceFeeBasisPoints + 5000) / 10000
	return Quote{
		Hours:           hours,
		PriceCents:      price,
		ServiceFeeCents: fee,
		TotalCents:      price + fee,
	}, nil
}

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a reservation held in client memory.
type Booking struct {
	ID          string
	Spot        Spot
	VehicleID   string
	VehicleInfo string
	Start       time.Time
	End         time.Time
	Quote       Quote
	Status      Status
	Payment     *Payment
}

// Transition moves the booking to the next status.
func (b *Booking) Transition(to Status) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}
	b.Status = to
	return nil
}

// Upcoming reports whether the booking has not started yet.
func (b *Booking) Upcoming() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Past reports whether the booking reached a terminal status.
func (b *Booking) Past() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}
