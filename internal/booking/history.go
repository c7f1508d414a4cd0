package booking

import (
	"fmt"
	"sync"
)

// History keeps the bookings made during one client session.
type History struct {
	mu       sync.RWMutex
	bookings []Booking
}

// Add appends a booking.
func (h *History) Add(b Booking) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bookings = append(h.bookings, b)
}

// Update applies a status transition to the booking with id.
func (h *History) Update(id string, to Status) (Booking, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.bookings {
		if h.bookings[i].ID != id {
			continue
		}
		if err := h.bookings[i].Transition(to); err != nil {
			return Booking{}, err
		}
		return h.bookings[i], nil
	}
	return Booking{}, fmt.Errorf("booking %s not found", id)
}

// Partition splits bookings into upcoming, active and past, as shown on
// the "my bookings" dashboard.
func (h *History) Partition() (upcoming, active, past []Booking) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, b := range h.bookings {
		switch {
		case b.Upcoming():
			upcoming = append(upcoming, b)
		case b.Status == StatusActive:
			active = append(active, b)
		case b.Past():
			past = append(past, b)
		}
	}
	return upcoming, active, past
}

// Len returns the number of bookings.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bookings)
}
