package events

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateValidation(t *testing.T) {
	svc := New(nil, nil, nil)

	date := time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC)
	standard := TicketTypeInput{Name: "Padrao", Price: decimal.NewFromInt(150)}

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{
			name: "missing name",
			in:   CreateInput{Date: date, TicketTypes: []TicketTypeInput{standard}},
			want: ErrNameRequired,
		},
		{
			name: "missing date",
			in:   CreateInput{Name: "Festa Junina", TicketTypes: []TicketTypeInput{standard}},
			want: ErrDateRequired,
		},
		{
			name: "no ticket types",
			in:   CreateInput{Name: "Festa Junina", Date: date},
			want: ErrNoTicketTypes,
		},
		{
			name: "unnamed ticket type",
			in: CreateInput{
				Name: "Festa Junina",
				Date: date,
				TicketTypes: []TicketTypeInput{
					{Name: "  ", Price: decimal.NewFromInt(150)},
				},
			},
			want: ErrTypeNameMissing,
		},
		{
			name: "zero price",
			in: CreateInput{
				Name: "Festa Junina",
				Date: date,
				TicketTypes: []TicketTypeInput{
					{Name: "Padrao", Price: decimal.Zero},
				},
			},
			want: ErrInvalidPrice,
		},
		{
			name: "negative price",
			in: CreateInput{
				Name: "Festa Junina",
				Date: date,
				TicketTypes: []TicketTypeInput{
					{Name: "Padrao", Price: decimal.NewFromInt(-10)},
				},
			},
			want: ErrInvalidPrice,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := svc.Create(context.Background(), tc.in)
			assert.Nil(t, event)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
