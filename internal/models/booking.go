package pricing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrAlreadyReturned = errors.New("booking already returned")
)

type Product struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"categoryId"`
	Name          string    `json:"name"`
	BaseRates     BaseRates `json:"baseRates"`
	DepositAmount float64   `json:"depositAmount"`
}

// Pricelist overrides product rates for a customer type. An empty UserType matches everyone.
type Pricelist struct {
	ID       uuid.UUID            `json:"id"`
	Name     string               `json:"name"`
	UserType string               `json:"userType"`
	Priority int                  `json:"priority"`
	Validity Validity             `json:"validity"`
	Rates    map[string]BaseRates `json:"rates"`
}

const (
	BookingConfirmed = "confirmed"
	BookingReturned  = "returned"
)

type Booking struct {
	ID             uuid.UUID       `json:"id"`
	UserID         string          `json:"userId"`
	ProductID      string          `json:"productId"`
	StartDate      time.Time       `json:"startDate"`
	ExpectedReturn time.Time       `json:"expectedReturn"`
	Units          int             `json:"units"`
	Status         string          `json:"status"`
	Pricing        PricingSnapshot `json:"pricing"`
	Return         *ReturnRecord   `json:"return,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ReturnRecord is the penalty breakdown written when a booking comes back.
type ReturnRecord struct {
	ActualReturn  time.Time     `json:"actualReturn"`
	DamagePenalty PenaltyResult `json:"damagePenalty"`
	LatePenalty   PenaltyResult `json:"latePenalty"`
	TotalPenalty  float64       `json:"totalPenalty"`
}

type QuoteRequest struct {
	UserID     string           `json:"userId"`
	UserType   string           `json:"userType"`
	ProductID  string           `json:"productId"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
	Units      int              `json:"units"`
	Attributes map[string]Value `json:"attributes"`
}

type ReturnRequest struct {
	BookingID    uuid.UUID `json:"bookingId"`
	ActualReturn time.Time `json:"actualReturn"`
	DamageLevel  string    `json:"damageLevel"`
}

const (
	EventBookingPriced   = "booking.priced"
	EventBookingReturned = "booking.returned"
)

// BookingEvent is handed to the external notification service.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  uuid.UUID `json:"bookingId"`
	UserID     string    `json:"userId"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurredAt"`
}
