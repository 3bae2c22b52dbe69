package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ingresso-go/internal/domain"
	"ingresso-go/internal/numbering"
)

// Validation runs before any store access, so these cases need no
// database.
func TestCreateValidation(t *testing.T) {
	svc := New(nil, nil, nil)

	eventID := uuid.New()
	typeID := uuid.New()

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{
			name: "missing customer name",
			in: CreateInput{
				EventID: eventID,
				Items:   []numbering.Request{{TicketTypeID: typeID, Quantity: 1}},
			},
			want: ErrCustomerNameRequired,
		},
		{
			name: "blank customer name",
			in: CreateInput{
				EventID:      eventID,
				CustomerName: "   ",
				Items:        []numbering.Request{{TicketTypeID: typeID, Quantity: 1}},
			},
			want: ErrCustomerNameRequired,
		},
		{
			name: "empty cart",
			in: CreateInput{
				EventID:      eventID,
				CustomerName: "Ana Souza",
			},
			want: ErrEmptyCart,
		},
		{
			name: "negative quantity",
			in: CreateInput{
				EventID:      eventID,
				CustomerName: "Ana Souza",
				Items:        []numbering.Request{{TicketTypeID: typeID, Quantity: -2}},
			},
			want: ErrNegativeQuantity,
		},
		{
			name: "bogus payment status",
			in: CreateInput{
				EventID:       eventID,
				CustomerName:  "Ana Souza",
				PaymentStatus: domain.PaymentStatus("Quase"),
				Items:         []numbering.Request{{TicketTypeID: typeID, Quantity: 1}},
			},
			want: ErrInvalidPaymentStatus,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sale, err := svc.Create(context.Background(), tc.in)
			assert.Nil(t, sale)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateAcceptsKnownPaymentStatuses(t *testing.T) {
	for _, status := range []domain.PaymentStatus{domain.PaymentPaid, domain.PaymentPending, ""} {
		in := CreateInput{
			EventID:       uuid.New(),
			CustomerName:  "Ana Souza",
			PaymentStatus: status,
			Items:         []numbering.Request{{TicketTypeID: uuid.New(), Quantity: 1}},
		}
		assert.NoError(t, validateCreate(in), "status %q", status)
	}
}
