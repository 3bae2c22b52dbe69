package sales

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrEmptyCart            = errors.New("sale must request at least one ticket")
	ErrNegativeQuantity     = errors.New("ticket quantity cannot be negative")
	ErrUnknownTicketType    = errors.New("ticket type does not belong to the event")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrQuotaExceeded        = errors.New("ticket type quota exceeded")
)
