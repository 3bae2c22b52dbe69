package httpgin

import (
	"time"
)

type TicketTypeInput struct {
	Name  string `json:"name" binding:"required"`
	Price string `json:"price" binding:"required"`
	Quota *int   `json:"quota"`
}

type CreateEventRequest struct {
	Name        string            `json:"name" binding:"required"`
	Date        string            `json:"date" binding:"required"`
	TicketTypes []TicketTypeInput `json:"ticketTypes" binding:"required,min=1,dive"`
}

type SaleItemInput struct {
	TicketTypeID string `json:"ticketTypeId" binding:"required,uuid"`
	Quantity     int    `json:"quantity"`
}

type CreateSaleRequest struct {
	EventID       string          `json:"eventId" binding:"required,uuid"`
	CustomerName  string          `json:"customerName" binding:"required"`
	CustomerPhone string          `json:"customerPhone"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	Details       string          `json:"details"`
	Items         []SaleItemInput `json:"items" binding:"required,min=1,dive"`
}

type PaymentRequest struct {
	Method string `json:"method"`
}

type ScanRequest struct {
	QRData string `json:"qrData" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
