package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderPendingReview = "pending_review"
	OrderApproved      = "approved"
	OrderRejected      = "rejected"
)

// Order is a checkout submission awaiting manual review of its payment proof.
type Order struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Email         string          `json:"email"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Country       string          `json:"country"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	PostalCode    string          `json:"postalCode,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	ProofURL      string          `json:"proofUrl"`
	Lines         []OrderLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderLine is a cart line frozen at submission time.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending_review approved rejected"`
}
