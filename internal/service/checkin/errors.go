package checkin

import "errors"

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
	ErrInvalidQRCode    = errors.New("invalid QR code")
)
