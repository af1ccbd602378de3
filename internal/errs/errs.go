package errs

import "errors"

var ErrInsufficientFunds = errors.New("not enough balance")
var ErrRiderNotFound = errors.New("rider not found")
var ErrInvalidToken = errors.New("invalid token")
var ErrUsernameTaken = errors.New("username already exists")
var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrMissingFields = errors.New("missing required fields")
var ErrInvalidVehicleType = errors.New("unknown vehicle type")

var ErrOrderNotFound = errors.New("order not found")
var ErrClaimConflict = errors.New("order already claimed")
var ErrActiveOrderExists = errors.New("rider already has an active order")
var ErrInvalidTransition = errors.New("invalid order status transition")
var ErrNotAssignedRider = errors.New("order is assigned to another rider")
var ErrCancelReasonRequired = errors.New("cancellation reason required")

var ErrInvalidAmount = errors.New("invalid amount")
var ErrBankAccountRequired = errors.New("bank account required")
var ErrBankAccountNotFound = errors.New("bank account not found")

var ErrInvalidLocation = errors.New("invalid coordinates")

var ErrNoAlert = errors.New("no alert is visible")
var ErrNoSession = errors.New("no active rider session")
