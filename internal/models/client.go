package models

import "cardhub/internal/apperrors"

// Client is a person eligible to hold card contracts, tracked by national id.
type Client struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	Email      *string `json:"email,omitempty"`
	BirthDate  Date    `json:"birth_date" swaggertype:"string" example:"1990-01-01"`
	// IDRegular marks the national id as currently valid.
	IDRegular bool `json:"id_regular"`
	Active    bool `json:"active"`

	Contracts []Contract `json:"contracts,omitempty"`
}

// CanActivate fails for irregular clients whatever their current state.
func (c *Client) CanActivate() error {
	if !c.IDRegular {
		return apperrors.New(apperrors.CodeInvalidState, "client national id is irregular, activation is not allowed")
	}
	if c.Active {
		return apperrors.New(apperrors.CodeInvalidState, "client is already active, no modification performed")
	}
	return nil
}

func (c *Client) CanDeactivate() error {
	if !c.Active {
		return apperrors.New(apperrors.CodeInvalidState, "client is already inactive, no modification performed")
	}
	return nil
}

// ClientInput is the create/update payload. Nil fields were not sent.
type ClientInput struct {
	ID         *int64  `json:"id,omitempty"`
	Name       *string `json:"name,omitempty"`
	NationalID *string `json:"national_id,omitempty"`
	Email      *string `json:"email,omitempty"`
	BirthDate  *Date   `json:"birth_date,omitempty" swaggertype:"string" example:"1990-01-01"`
	IDRegular  *bool   `json:"id_regular,omitempty"`
}

// ClientFilter selects clients. Nil Active means both states.
type ClientFilter struct {
	Active     *bool
	NationalID string
}
