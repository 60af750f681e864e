package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type MutationState string

const (
	MutationPending   MutationState = "pending"
	MutationConfirmed MutationState = "confirmed"
	MutationFailed    MutationState = "failed"
)

type MutationKind string

const (
	MutationCreate     MutationKind = "create"
	MutationTransition MutationKind = "transition"
)

// Mutation tracks one write against the API from submission to outcome.
type Mutation struct {
	ID        int
	Kind      MutationKind
	BookingID string
	Target    BookingStatus
	State     MutationState
	Err       error
	StartedAt time.Time
	SettledAt time.Time
}

// BookingAPI is the part of *Client the cache drives.
type BookingAPI interface {
	Bookings(ctx context.Context) (*Board, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
	TransitionBooking(ctx context.Context, id string, status BookingStatus) (*TransitionResult, error)
}

// BookingCache holds a local copy of the viewer's booking board. Writes go to
// the server first; the board changes only once the server confirms, and a
// failed write leaves it untouched.
type BookingCache struct {
	api       BookingAPI
	mu        sync.Mutex
	board     *Board
	mutations []*Mutation
	now       func() time.Time
}

func NewBookingCache(api BookingAPI) *BookingCache {
	return &BookingCache{api: api, board: emptyBoard(), now: time.Now}
}

func emptyBoard() *Board {
	return &Board{
		Pending:   []Booking{},
		Active:    []Booking{},
		Completed: []Booking{},
	}
}

// Refresh replaces the cached board with the server's.
func (c *BookingCache) Refresh(ctx context.Context) error {
	board, err := c.api.Bookings(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.board = board
	c.mu.Unlock()
	return nil
}

// Board returns a copy of the cached board.
func (c *BookingCache) Board() Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.clone()
}

// Mutations returns a snapshot of every tracked write, oldest first.
func (c *BookingCache) Mutations() []Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Mutation, len(c.mutations))
	for i, m := range c.mutations {
		out[i] = *m
	}
	return out
}

// Pending reports whether any write is still in flight.
func (c *BookingCache) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.mutations {
		if m.State == MutationPending {
			return true
		}
	}
	return false
}

// RequestBooking submits a booking request. On confirmation the new booking
// is added to the pending partition.
func (c *BookingCache) RequestBooking(ctx context.Context, req BookingRequest) (Mutation, error) {
	m := c.begin(MutationCreate, "", StatusPending)

	booking, err := c.api.CreateBooking(ctx, req)
	if err != nil {
		return c.settle(m, err, nil), err
	}
	return c.settle(m, nil, func() {
		m.BookingID = booking.ID
		c.board.Pending = append([]Booking{*booking}, c.board.Pending...)
	}), nil
}

// Decide approves or rejects a booking. On confirmation the cached board is
// replaced by the one the server returned with the decision.
func (c *BookingCache) Decide(ctx context.Context, bookingID string, status BookingStatus) (Mutation, error) {
	m := c.begin(MutationTransition, bookingID, status)

	res, err := c.api.TransitionBooking(ctx, bookingID, status)
	if err != nil {
		return c.settle(m, err, nil), err
	}
	if res.Board == nil {
		err = fmt.Errorf("server confirmed booking %s without a board", bookingID)
		return c.settle(m, err, nil), err
	}
	return c.settle(m, nil, func() { c.board = res.Board }), nil
}

func (c *BookingCache) begin(kind MutationKind, bookingID string, target BookingStatus) *Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := &Mutation{
		ID:        len(c.mutations) + 1,
		Kind:      kind,
		BookingID: bookingID,
		Target:    target,
		State:     MutationPending,
		StartedAt: c.now(),
	}
	c.mutations = append(c.mutations, m)
	return m
}

func (c *BookingCache) settle(m *Mutation, err error, apply func()) Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	m.SettledAt = c.now()
	if err != nil {
		m.State = MutationFailed
		m.Err = err
		return *m
	}
	apply()
	m.State = MutationConfirmed
	return *m
}
