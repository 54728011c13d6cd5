package services

import (
	"context"
	"errors"

	"cardhub/internal/apperrors"
	"cardhub/internal/clock"
	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

// RelationshipValidator checks that a contract points at a client and a card
// that may hold a contract today.
type RelationshipValidator struct {
	clients repositories.ClientRepository
	cards   repositories.CardRepository
	clock   clock.Clock
}

func NewRelationshipValidator(clients repositories.ClientRepository, cards repositories.CardRepository, clk clock.Clock) *RelationshipValidator {
	return &RelationshipValidator{clients: clients, cards: cards, clock: clk}
}

// ValidateContractLinks checks the refs that are non-nil and reports every
// violation at once.
func (v *RelationshipValidator) ValidateContractLinks(ctx context.Context, clientID, cardID *int64) error {
	var problems []string

	if clientID != nil {
		client, err := v.clients.FindByID(ctx, *clientID, models.IncludeSpec{})
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			problems = append(problems, "Client invalid: not found")
		case err != nil:
			return apperrors.Wrap(err, apperrors.CodeInternal, "client lookup failed")
		default:
			if !client.Active {
				problems = append(problems, "Client invalid: inactive")
			}
			if !client.IDRegular {
				problems = append(problems, "Client invalid: irregular national id")
			}
		}
	}

	if cardID != nil {
		card, err := v.cards.FindByID(ctx, *cardID, models.IncludeSpec{})
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			problems = append(problems, "Card invalid: not found")
		case err != nil:
			return apperrors.Wrap(err, apperrors.CodeInternal, "card lookup failed")
		default:
			today := models.DateOf(clock.Today(v.clock))
			if !card.Active {
				problems = append(problems, "Card invalid: inactive")
			}
			if !card.Window().Contains(today) {
				problems = append(problems, "Card invalid: outside validity window")
			}
		}
	}

	return apperrors.Aggregate(apperrors.CodeBadRequest, "invalid contract links", problems)
}
