package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a digital good sold in the shop (presets, guides, maps).
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Type        string          `json:"type"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProductInput struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image" binding:"omitempty,url"`
	Type        string          `json:"type" binding:"required"`
	Active      bool            `json:"active"`
}
