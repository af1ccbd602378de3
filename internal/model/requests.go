package model

import (
	"strings"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/shopspring/decimal"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var VehicleTypes = []string{"Motorbike", "Three-wheeler", "Van", "Lorry"}

type Registration struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
}

func (r Registration) Validate() error {
	if r.FullName == "" || r.Username == "" || r.Password == "" || r.Phone == "" || r.VehicleType == "" {
		return errs.ErrMissingFields
	}
	for _, vt := range VehicleTypes {
		if vt == r.VehicleType {
			return nil
		}
	}
	return errs.ErrInvalidVehicleType
}

type ProfileUpdate struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
}

func (p ProfileUpdate) Validate() error {
	if p.FullName == "" || p.Phone == "" || p.VehicleNumber == "" {
		return errs.ErrMissingFields
	}
	return nil
}

type BankAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

func (b BankAccountRequest) Validate() error {
	if b.BankName == "" || b.AccountNumber == "" || b.AccountName == "" {
		return errs.ErrMissingFields
	}
	return nil
}

type AvailabilityRequest struct {
	Online bool `json:"online"`
}

type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

const OtherReason = "Other"

var CancelReasons = []string{
	"Customer requested to cancel",
	"I cannot find the location",
	"Order is too large for me",
	"Vehicle issue",
	OtherReason,
}

type CancelRequest struct {
	Reason string `json:"reason"`
	Other  string `json:"other,omitempty"`
}

// ResolveReason returns the reason stored on the order. Free text is only
// accepted with the Other reason.
func (c CancelRequest) ResolveReason() (string, error) {
	if c.Reason == OtherReason {
		other := strings.TrimSpace(c.Other)
		if other == "" {
			return "", errs.ErrCancelReasonRequired
		}
		return other, nil
	}
	for _, r := range CancelReasons {
		if r == c.Reason {
			return r, nil
		}
	}
	return "", errs.ErrCancelReasonRequired
}

type WithdrawRequest struct {
	Amount     string `json:"amount"`
	AccountKey string `json:"account_key"`
}

// NewWithdrawal checks the request against the rider's last fetched balance
// and bank accounts. No withdrawal document may be written when it fails.
func NewWithdrawal(rider Rider, req WithdrawRequest) (WithdrawalRequest, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return WithdrawalRequest{}, errs.ErrInvalidAmount
	}
	if amount.GreaterThan(rider.WalletBalance) {
		return WithdrawalRequest{}, errs.ErrInsufficientFunds
	}
	if req.AccountKey == "" {
		return WithdrawalRequest{}, errs.ErrBankAccountRequired
	}
	acc, ok := rider.BankAccount(req.AccountKey)
	if !ok {
		return WithdrawalRequest{}, errs.ErrBankAccountNotFound
	}

	return WithdrawalRequest{
		RiderID:       rider.ID,
		Amount:        amount,
		Status:        WithdrawalPending,
		BankName:      acc.BankName,
		AccountNumber: acc.AccountNumber,
		AccountName:   acc.AccountName,
	}, nil
}
