package services

import (
	"context"
	"strings"

	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

type ClientService struct {
	Repo      repositories.ClientRepository
	Validator *Validator
	Lifecycle *LifecycleManager
}

func NewClientService(repo repositories.ClientRepository, v *Validator, lm *LifecycleManager) *ClientService {
	return &ClientService{Repo: repo, Validator: v, Lifecycle: lm}
}

// Create registers a client. New clients are active and, unless the
// payload says otherwise, hold a regular national id.
func (s *ClientService) Create(ctx context.Context, in *models.ClientInput) (*models.Client, error) {
	if err := s.Validator.ValidateCreate(ctx, models.KindClient, in); err != nil {
		return nil, err
	}
	client := &models.Client{
		Name:       strings.TrimSpace(*in.Name),
		NationalID: strings.TrimSpace(*in.NationalID),
		Email:      normalizeEmail(in.Email),
		BirthDate:  *in.BirthDate,
		IDRegular:  true,
		Active:     true,
	}
	if in.IDRegular != nil {
		client.IDRegular = *in.IDRegular
	}
	if err := s.Repo.Create(ctx, client); err != nil {
		return nil, storeErr(err, models.KindClient, 0)
	}
	return client, nil
}

// Update changes the fields present in the payload. The active flag is
// only changed through Activate/Deactivate.
func (s *ClientService) Update(ctx context.Context, in *models.ClientInput) (*models.Client, error) {
	if err := s.Validator.ValidateUpdate(ctx, models.KindClient, in); err != nil {
		return nil, err
	}
	client, err := s.Repo.FindByID(ctx, *in.ID, models.IncludeSpec{})
	if err != nil {
		return nil, storeErr(err, models.KindClient, *in.ID)
	}
	if in.Name != nil {
		client.Name = strings.TrimSpace(*in.Name)
	}
	if in.NationalID != nil {
		client.NationalID = strings.TrimSpace(*in.NationalID)
	}
	if in.Email != nil {
		client.Email = normalizeEmail(in.Email)
	}
	if in.BirthDate != nil {
		client.BirthDate = *in.BirthDate
	}
	if in.IDRegular != nil {
		client.IDRegular = *in.IDRegular
	}
	if err := s.Repo.Save(ctx, client); err != nil {
		return nil, storeErr(err, models.KindClient, client.ID)
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id int64, opts models.DetailOptions) (*models.Client, error) {
	client, err := s.Repo.FindByID(ctx, id, opts.Resolve(models.KindClient))
	if err != nil {
		return nil, storeErr(err, models.KindClient, id)
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, filter models.ClientFilter, opts models.DetailOptions) ([]models.Client, error) {
	filter.NationalID = strings.TrimSpace(filter.NationalID)
	list, err := s.Repo.FindAll(ctx, filter, opts.Resolve(models.KindClient))
	if err != nil {
		return nil, internalErr(err, "list clients failed")
	}
	return list, nil
}

func (s *ClientService) Activate(ctx context.Context, id int64) (*models.Client, error) {
	return s.Lifecycle.ActivateClient(ctx, id)
}

func (s *ClientService) Deactivate(ctx context.Context, id int64) (*ClientDeactivation, error) {
	return s.Lifecycle.DeactivateClient(ctx, id)
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.TrimSpace(*email)
	if e == "" {
		return nil
	}
	return &e
}
