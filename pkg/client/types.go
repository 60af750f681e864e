package client

import "time"

// BookingStatus mirrors the server's booking status values.
type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

// Booking is a booking as the API returns it. Nested campaign and screen
// objects are not decoded.
type Booking struct {
	ID            string        `json:"id"`
	CampaignID    string        `json:"campaignId"`
	ScreenID      string        `json:"screenId"`
	StartDatetime time.Time     `json:"startDatetime"`
	EndDatetime   time.Time     `json:"endDatetime"`
	TotalCost     float64       `json:"totalCost"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Board is the viewer's bookings split into display partitions.
type Board struct {
	Pending   []Booking `json:"pending"`
	Active    []Booking `json:"active"`
	Completed []Booking `json:"completed"`
}

func (b Board) clone() Board {
	return Board{
		Pending:   append([]Booking{}, b.Pending...),
		Active:    append([]Booking{}, b.Active...),
		Completed: append([]Booking{}, b.Completed...),
	}
}
