package models

import "time"

// PurchaseStatus follows the backend's numeric status codes.
type PurchaseStatus int

const (
	StatusInCart              PurchaseStatus = -1
	StatusAll                 PurchaseStatus = 0
	StatusWaitForConfirmation PurchaseStatus = 1
	StatusWaitForGetting      PurchaseStatus = 2
	StatusInProgress          PurchaseStatus = 3
	StatusDelivered           PurchaseStatus = 4
	StatusCancelled           PurchaseStatus = 5
)

// Purchase is a server-tracked cart or order line.
type Purchase struct {
	ID                  string         `json:"_id"`
	BuyCount            int            `json:"buy_count"`
	Price               int64          `json:"price"`
	PriceBeforeDiscount int64          `json:"price_before_discount"`
	Status              PurchaseStatus `json:"status"`
	User                string         `json:"user"`
	Product             Product        `json:"product"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// ExtendedPurchase decorates a Purchase with client-only flags:
// Checked drives bulk actions, Disabled is set while an update for the
// line is in flight. Neither field ever goes back to the backend.
type ExtendedPurchase struct {
	Purchase
	Checked  bool `json:"checked"`
	Disabled bool `json:"disabled"`
}

type PurchaseLine struct {
	ProductID string `json:"product_id" binding:"required"`
	BuyCount  int    `json:"buy_count" binding:"required,gt=0"`
}
