package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"cardhub/internal/apperrors"
	"cardhub/internal/clock"
	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

type CardService struct {
	Repo      repositories.CardRepository
	Validator *Validator
	Lifecycle *LifecycleManager
	Clock     clock.Clock
}

func NewCardService(repo repositories.CardRepository, v *Validator, lm *LifecycleManager, clk clock.Clock) *CardService {
	if clk == nil {
		clk = clock.Real()
	}
	return &CardService{Repo: repo, Validator: v, Lifecycle: lm, Clock: clk}
}

// Create defines a card product. The window defaults to [today, infinity)
// and the annual fee to zero.
func (s *CardService) Create(ctx context.Context, in *models.CardInput) (*models.Card, error) {
	if err := s.Validator.ValidateCreate(ctx, models.KindCard, in); err != nil {
		return nil, err
	}
	cardType, _ := models.ParseCardType(*in.Type)
	card := &models.Card{
		Name:      strings.TrimSpace(*in.Name),
		Type:      cardType,
		Network:   strings.TrimSpace(*in.Network),
		AnnualFee: decimal.Zero,
		Active:    true,
		StartDate: models.DateOf(clock.Today(s.Clock)),
		EndDate:   models.InfiniteDate,
	}
	if in.AnnualFee != nil {
		card.AnnualFee = *in.AnnualFee
	}
	if in.StartDate != nil && !in.StartDate.IsZero() {
		card.StartDate = *in.StartDate
	}
	if in.EndDate != nil && !in.EndDate.IsZero() {
		card.EndDate = *in.EndDate
	}
	if err := checkWindow(card.Window()); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, card); err != nil {
		return nil, storeErr(err, models.KindCard, 0)
	}
	return card, nil
}

func (s *CardService) Update(ctx context.Context, in *models.CardInput) (*models.Card, error) {
	if err := s.Validator.ValidateUpdate(ctx, models.KindCard, in); err != nil {
		return nil, err
	}
	card, err := s.Repo.FindByID(ctx, *in.ID, models.IncludeSpec{})
	if err != nil {
		return nil, storeErr(err, models.KindCard, *in.ID)
	}
	if in.Name != nil {
		card.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		card.Type, _ = models.ParseCardType(*in.Type)
	}
	if in.Network != nil {
		card.Network = strings.TrimSpace(*in.Network)
	}
	if in.AnnualFee != nil {
		card.AnnualFee = *in.AnnualFee
	}
	if in.StartDate != nil && !in.StartDate.IsZero() {
		card.StartDate = *in.StartDate
	}
	if in.EndDate != nil && !in.EndDate.IsZero() {
		card.EndDate = *in.EndDate
	}
	if err := checkWindow(card.Window()); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, card); err != nil {
		return nil, storeErr(err, models.KindCard, card.ID)
	}
	return card, nil
}

func (s *CardService) Get(ctx context.Context, id int64, opts models.DetailOptions) (*models.Card, error) {
	card, err := s.Repo.FindByID(ctx, id, opts.Resolve(models.KindCard))
	if err != nil {
		return nil, storeErr(err, models.KindCard, id)
	}
	return card, nil
}

func (s *CardService) List(ctx context.Context, filter models.CardFilter, opts models.DetailOptions) ([]models.Card, error) {
	list, err := s.Repo.FindAll(ctx, filter, opts.Resolve(models.KindCard))
	if err != nil {
		return nil, internalErr(err, "list cards failed")
	}
	return list, nil
}

func (s *CardService) Deactivate(ctx context.Context, id int64) (*CardDeactivation, error) {
	return s.Lifecycle.DeactivateCard(ctx, id)
}

func checkWindow(w models.Window) error {
	if w.End.Before(w.Start.Time) {
		return apperrors.Aggregate(apperrors.CodeBadRequest, "invalid card fields",
			[]string{"end_date must not be before start_date"})
	}
	return nil
}
