package models

import "cardhub/internal/apperrors"

// Contract binds one Client to one Card for a validity period.
type Contract struct {
	ID        int64 `json:"id"`
	ClientID  int64 `json:"client_id"`
	CardID    int64 `json:"card_id"`
	Active    bool  `json:"active"`
	StartDate Date  `json:"start_date" swaggertype:"string" example:"2024-01-01"`
	EndDate   Date  `json:"end_date" swaggertype:"string" example:"9999-12-31"`

	Client *Client `json:"client,omitempty"`
	Card   *Card   `json:"card,omitempty"`
}

func (c *Contract) CanDeactivate() error {
	if !c.Active {
		return apperrors.New(apperrors.CodeInvalidState, "contract is already inactive, no modification performed")
	}
	return nil
}

func (c *Contract) CanUpdate() error {
	if !c.Active {
		return apperrors.New(apperrors.CodeInvalidState, "contract is inactive, its records cannot be changed")
	}
	return nil
}

// ApplyDeactivation ends the contract on day.
func (c *Contract) ApplyDeactivation(day Date) {
	c.Active = false
	c.EndDate = day
}

type ContractInput struct {
	ID       *int64 `json:"id,omitempty"`
	ClientID *int64 `json:"client_id,omitempty"`
	CardID   *int64 `json:"card_id,omitempty"`
}

type ContractFilter struct {
	Active   *bool
	ClientID *int64
	CardID   *int64
}
