package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	OrderPending   = "Pending"
	OrderReceived  = "Received"
	OrderCompleted = "Completed"
)

// OrderCustomer is the customer snapshot captured at order time. It is not
// live-linked to the user directory.
type OrderCustomer struct {
	CompanyName string `json:"companyName"`
	TaxID       string `json:"taxId"`
	Responsible string `json:"responsible"`
	Phone       string `json:"phone"`
}

// Order is created once at checkout and mutated only by status changes or an
// administrative full-list replacement. The item list is immutable after
// creation.
type Order struct {
	ID            int64         `json:"id,string" form:"id"`
	Date          string        `gorm:"index" json:"date" form:"date"`
	CustomerEmail string        `gorm:"index" json:"customerEmail" form:"customer_email"`
	Customer      OrderCustomer `gorm:"serializer:json" json:"customer"`
	Items         []CartItem    `gorm:"serializer:json" json:"items"`
	Total         float64       `json:"total" form:"total"`
	BillingTerm   string        `json:"billingTerm" form:"billing_term"`
	Status        string        `gorm:"index" json:"status" form:"status"`
	Observation   string        `json:"observation,omitempty" form:"observation"`
	ReceiptURL    string        `gorm:"size:1024" json:"receiptUrl,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Code is the short display form of the order identifier used in receipts
// and notifications.
func (o Order) Code() string {
	return strings.ToUpper(strconv.FormatInt(o.ID, 36))
}
