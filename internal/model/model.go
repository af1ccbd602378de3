package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	Available OrderStatus = "available"
	Assigned  OrderStatus = "assigned"
	EnRoute   OrderStatus = "en_route"
	Completed OrderStatus = "completed"
	Cancelled OrderStatus = "cancelled"
)

// transitions is the order lifecycle. Completed and Cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	Available: {Assigned},
	Assigned:  {EnRoute, Cancelled},
	EnRoute:   {Completed, Cancelled},
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case Available, Assigned, EnRoute, Completed, Cancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether an order in this status occupies its rider.
func (s OrderStatus) IsActive() bool {
	return s == Assigned || s == EnRoute
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Availability string

const (
	Online  Availability = "online"
	Offline Availability = "offline"
)

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Pickup struct {
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Phone    string    `json:"phone,omitempty"`
	Location *GeoPoint `json:"location,omitempty"`
}

type Dropoff struct {
	ReceiverName    string    `json:"receiver_name"`
	ReceiverContact string    `json:"receiver_contact,omitempty"`
	Address         string    `json:"address"`
	Location        *GeoPoint `json:"location,omitempty"`
}

type Order struct {
	ID                 string          `json:"id"`
	Status             OrderStatus     `json:"status"`
	FoodTotal          decimal.Decimal `json:"food_total"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	Pickup             Pickup          `json:"pickup"`
	Dropoff            Dropoff         `json:"dropoff"`
	CustomerName       string          `json:"customer_name,omitempty"`
	AssignedRider      *string         `json:"assigned_rider,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CancelledBy        *string         `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Earning is what the rider keeps for delivering the order. The food total is
// collected on behalf of the restaurant and never counts.
func (o Order) Earning() decimal.Decimal {
	return RiderEarning(o.DeliveryFee)
}

// GrandTotal is the amount collected from the customer on delivery.
func (o Order) GrandTotal() decimal.Decimal {
	return o.FoodTotal.Add(o.DeliveryFee)
}

func (o Order) IsAssignedTo(riderID string) bool {
	return o.AssignedRider != nil && *o.AssignedRider == riderID
}

// Destination is where the rider heads next: the restaurant until the food is
// collected, the customer afterwards.
func (o Order) Destination() *GeoPoint {
	switch o.Status {
	case Assigned:
		return o.Pickup.Location
	case EnRoute:
		return o.Dropoff.Location
	default:
		return nil
	}
}

type BankAccount struct {
	Key           string `json:"key"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type Rider struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	FullName        string          `json:"full_name"`
	Phone           string          `json:"phone"`
	VehicleType     string          `json:"vehicle_type"`
	VehicleNumber   string          `json:"vehicle_number,omitempty"`
	Availability    Availability    `json:"availability"`
	WalletBalance   decimal.Decimal `json:"wallet_balance"`
	BankAccounts    []BankAccount   `json:"bank_accounts,omitempty"`
	CurrentLocation *GeoPoint       `json:"current_location,omitempty"`
}

func (r Rider) IsOnline() bool {
	return r.Availability == Online
}

func (r Rider) BankAccount(key string) (BankAccount, bool) {
	for _, acc := range r.BankAccounts {
		if acc.Key == key {
			return acc, true
		}
	}
	return BankAccount{}, false
}

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type WithdrawalRequest struct {
	ID            string           `json:"id"`
	RiderID       string           `json:"rider_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Status        WithdrawalStatus `json:"status"`
	BankName      string           `json:"bank_name"`
	AccountNumber string           `json:"account_number"`
	AccountName   string           `json:"account_name"`
	CreatedAt     time.Time        `json:"created_at"`
}

// WithdrawalTotals splits a rider's withdrawal history into money still
// awaiting payout and money already paid. Rejected requests count in
// neither.
type WithdrawalTotals struct {
	Pending decimal.Decimal `json:"pending"`
	PaidOut decimal.Decimal `json:"paid_out"`
}

func SumWithdrawals(list []WithdrawalRequest) WithdrawalTotals {
	totals := WithdrawalTotals{Pending: decimal.Zero, PaidOut: decimal.Zero}
	for _, w := range list {
		switch w.Status {
		case WithdrawalPending:
			totals.Pending = totals.Pending.Add(w.Amount)
		case WithdrawalApproved:
			totals.PaidOut = totals.PaidOut.Add(w.Amount)
		case WithdrawalRejected:
		}
	}
	return totals
}

type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

type Transition string

const (
	Appear    Transition = "appear"
	Update    Transition = "update"
	Disappear Transition = "disappear"
)

// OrderEvent is a change notification from the order feed. It only names the
// order; content is always re-read through the poll path.
type OrderEvent struct {
	OrderID    string     `json:"order_id"`
	Transition Transition `json:"transition"`
}

func (t Transition) IsValid() bool {
	return t == Appear || t == Update || t == Disappear
}

// ParseOrderEvent decodes a feed payload. A bare order id is read as an
// appear event.
func ParseOrderEvent(payload []byte) (OrderEvent, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return OrderEvent{}, errors.New("empty order event")
	}
	if !strings.HasPrefix(trimmed, "{") {
		return OrderEvent{OrderID: trimmed, Transition: Appear}, nil
	}

	var ev OrderEvent
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		return OrderEvent{}, err
	}
	if ev.OrderID == "" || !ev.Transition.IsValid() {
		return OrderEvent{}, errors.New("malformed order event")
	}
	return ev, nil
}

type Dashboard struct {
	WalletBalance      decimal.Decimal `json:"wallet_balance"`
	PendingOrders      int             `json:"pending_orders"`
	RecentDeliveries   []Order         `json:"recent_deliveries"`
	HasActiveOrder     bool            `json:"has_active_order"`
	NewestAnnouncement string          `json:"-"`
}
