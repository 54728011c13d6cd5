package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"cardhub/internal/apperrors"
)

type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
)

// ParseCardType accepts the canonical names and the Portuguese aliases
// used by older clients of the API.
func ParseCardType(s string) (CardType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "credito", "crédito":
		return CardTypeCredit, true
	case "debit", "debito", "débito":
		return CardTypeDebit, true
	}
	return "", false
}

// Card is a card product definition that can be contracted.
type Card struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      CardType        `json:"type"`
	Network   string          `json:"network"`
	AnnualFee decimal.Decimal `json:"annual_fee" swaggertype:"string" example:"120.00"`
	Active    bool            `json:"active"`
	StartDate Date            `json:"start_date" swaggertype:"string" example:"2024-01-01"`
	EndDate   Date            `json:"end_date" swaggertype:"string" example:"9999-12-31"`

	Contracts []Contract `json:"contracts,omitempty"`
}

func (c *Card) Window() Window {
	return Window{Start: c.StartDate, End: c.EndDate}
}

// Usable reports whether the card can back a contract on day.
func (c *Card) Usable(day Date) bool {
	return c.Active && c.Window().Contains(day)
}

func (c *Card) CanDeactivate() error {
	if !c.Active {
		return apperrors.New(apperrors.CodeInvalidState, "card is already inactive, no modification performed")
	}
	return nil
}

type CardInput struct {
	ID        *int64           `json:"id,omitempty"`
	Name      *string          `json:"name,omitempty"`
	Type      *string          `json:"type,omitempty" example:"credit"`
	Network   *string          `json:"network,omitempty"`
	AnnualFee *decimal.Decimal `json:"annual_fee,omitempty" swaggertype:"string" example:"120.00"`
	StartDate *Date            `json:"start_date,omitempty" swaggertype:"string" example:"2024-01-01"`
	EndDate   *Date            `json:"end_date,omitempty" swaggertype:"string" example:"9999-12-31"`
}

type CardFilter struct {
	Active *bool
}
