// Package export renders the shareable ticket artifacts: the QR image a
// buyer presents at the door and the deterministic filename the card is
// saved under.
package export

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"ingresso-go/internal/domain"
)

const qrSize = 256

func signature(ticketID uuid.UUID, orderNumber, secret string) string {
	data := fmt.Sprintf("%s:%s", ticketID, orderNumber)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// QRPayload encodes the scannable ticket reference. The HMAC signature
// keeps a forged payload from checking in a guessed ticket id.
func QRPayload(t domain.Ticket, secret string) string {
	return fmt.Sprintf("ticket:%s;order:%s;signature:%s",
		t.ID, t.OrderNumber, signature(t.ID, t.OrderNumber, secret))
}

// ParseQRPayload extracts the ticket id from a scanned payload.
func ParseQRPayload(qrData string) (uuid.UUID, error) {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 ||
		!strings.HasPrefix(parts[0], "ticket:") ||
		!strings.HasPrefix(parts[2], "signature:") {
		return uuid.Nil, fmt.Errorf("invalid QR data format")
	}
	return uuid.Parse(strings.TrimPrefix(parts[0], "ticket:"))
}

// VerifyQRPayload checks the payload's signature against the ticket.
func VerifyQRPayload(t domain.Ticket, qrData, secret string) bool {
	parts := strings.Split(qrData, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "signature:") {
		return false
	}

	got := strings.TrimPrefix(parts[2], "signature:")
	want := signature(t.ID, t.OrderNumber, secret)
	return hmac.Equal([]byte(want), []byte(got))
}

// TicketPNG renders the ticket's QR code as a PNG image.
func TicketPNG(t domain.Ticket, secret string) ([]byte, error) {
	return qrcode.Encode(QRPayload(t, secret), qrcode.Medium, qrSize)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitize(s string) string {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), "_")
	return unsafeChars.ReplaceAllString(s, "")
}

// CardFilename builds the deterministic export name for a sale's card:
// order number, sanitized customer name, event name and event date.
func CardFilename(orderNumber, customerName, eventName string, eventDate time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s.png",
		sanitize(orderNumber),
		sanitize(customerName),
		sanitize(eventName),
		eventDate.Format("2006-01-02"),
	)
}
