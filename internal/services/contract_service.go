package services

import (
	"context"

	"cardhub/internal/clock"
	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

type ContractService struct {
	Repo          repositories.ContractRepository
	Validator     *Validator
	Relationships *RelationshipValidator
	Lifecycle     *LifecycleManager
	Clock         clock.Clock
}

func NewContractService(repo repositories.ContractRepository, v *Validator, rv *RelationshipValidator, lm *LifecycleManager, clk clock.Clock) *ContractService {
	if clk == nil {
		clk = clock.Real()
	}
	return &ContractService{Repo: repo, Validator: v, Relationships: rv, Lifecycle: lm, Clock: clk}
}

// Create binds a client to a card starting today with an open end.
func (s *ContractService) Create(ctx context.Context, in *models.ContractInput) (*models.Contract, error) {
	if err := s.Validator.ValidateCreate(ctx, models.KindContract, in); err != nil {
		return nil, err
	}
	if err := s.Relationships.ValidateContractLinks(ctx, in.ClientID, in.CardID); err != nil {
		return nil, err
	}
	contract := &models.Contract{
		ClientID:  *in.ClientID,
		CardID:    *in.CardID,
		Active:    true,
		StartDate: models.DateOf(clock.Today(s.Clock)),
		EndDate:   models.InfiniteDate,
	}
	if err := s.Repo.Create(ctx, contract); err != nil {
		return nil, storeErr(err, models.KindContract, 0)
	}
	return contract, nil
}

// Update re-points an active contract. Only the refs present in the payload
// are validated and changed.
func (s *ContractService) Update(ctx context.Context, in *models.ContractInput) (*models.Contract, error) {
	if err := s.Validator.ValidateUpdate(ctx, models.KindContract, in); err != nil {
		return nil, err
	}
	contract, err := s.Repo.FindByID(ctx, *in.ID, models.IncludeSpec{})
	if err != nil {
		return nil, storeErr(err, models.KindContract, *in.ID)
	}
	if err := contract.CanUpdate(); err != nil {
		return nil, err
	}
	if err := s.Relationships.ValidateContractLinks(ctx, in.ClientID, in.CardID); err != nil {
		return nil, err
	}
	if in.ClientID != nil {
		contract.ClientID = *in.ClientID
	}
	if in.CardID != nil {
		contract.CardID = *in.CardID
	}
	if err := s.Repo.Save(ctx, contract); err != nil {
		return nil, storeErr(err, models.KindContract, contract.ID)
	}
	return contract, nil
}

func (s *ContractService) Get(ctx context.Context, id int64, opts models.DetailOptions) (*models.Contract, error) {
	contract, err := s.Repo.FindByID(ctx, id, opts.Resolve(models.KindContract))
	if err != nil {
		return nil, storeErr(err, models.KindContract, id)
	}
	return contract, nil
}

func (s *ContractService) List(ctx context.Context, filter models.ContractFilter, opts models.DetailOptions) ([]models.Contract, error) {
	list, err := s.Repo.FindAll(ctx, filter, opts.Resolve(models.KindContract))
	if err != nil {
		return nil, internalErr(err, "list contracts failed")
	}
	return list, nil
}

func (s *ContractService) Deactivate(ctx context.Context, id int64) (*models.Contract, error) {
	return s.Lifecycle.DeactivateContract(ctx, id)
}
