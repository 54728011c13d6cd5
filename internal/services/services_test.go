package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cardhub/internal/apperrors"
	"cardhub/internal/clock"
	"cardhub/internal/logger"
	"cardhub/internal/models"
	"cardhub/internal/notify/mocks"
	"cardhub/internal/repositories"
	"cardhub/internal/repositories/memory"
)

// ServiceSuite wires the services over the in-memory store with the clock
// frozen at 2025-03-10 14:30 UTC.
type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	clock    clock.Fixed
	ctrl     *gomock.Controller
	notifier *mocks.MockNotifier

	validator *Validator
	links     *RelationshipValidator
	lifecycle *LifecycleManager
	clients   *ClientService
	cards     *CardService
	contracts *ContractService
}

var today = models.NewDate(2025, time.March, 10)

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.clock = clock.Fixed{T: time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)}
	s.ctrl = gomock.NewController(s.T())
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.wire(s.store.Contracts())
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// wire builds the services, letting a test swap the contract repository.
func (s *ServiceSuite) wire(contracts repositories.ContractRepository) {
	s.validator = NewValidator(s.store.Clients())
	s.links = NewRelationshipValidator(s.store.Clients(), s.store.Cards(), s.clock)
	s.lifecycle = NewLifecycleManager(LifecycleDeps{
		Clients:   s.store.Clients(),
		Cards:     s.store.Cards(),
		Contracts: contracts,
		Tx:        s.store,
		Clock:     s.clock,
		Notifier:  s.notifier,
		Log:       logger.NewNop(),
	})
	s.clients = NewClientService(s.store.Clients(), s.validator, s.lifecycle)
	s.cards = NewCardService(s.store.Cards(), s.validator, s.lifecycle, s.clock)
	s.contracts = NewContractService(contracts, s.validator, s.links, s.lifecycle, s.clock)
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) mkClient(nationalID string, opts ...func(*models.ClientInput)) *models.Client {
	in := &models.ClientInput{
		Name:       ptr("Ana"),
		NationalID: ptr(nationalID),
		Email:      ptr("client" + nationalID + "@example.com"),
		BirthDate:  ptr(models.NewDate(1990, time.January, 1)),
	}
	for _, o := range opts {
		o(in)
	}
	c, err := s.clients.Create(s.ctx, in)
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) mkCard(opts ...func(*models.CardInput)) *models.Card {
	in := &models.CardInput{
		Name:    ptr("Visa Gold"),
		Type:    ptr("credito"),
		Network: ptr("Visa"),
	}
	for _, o := range opts {
		o(in)
	}
	c, err := s.cards.Create(s.ctx, in)
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) mkContract(clientID, cardID int64) *models.Contract {
	c, err := s.contracts.Create(s.ctx, &models.ContractInput{ClientID: &clientID, CardID: &cardID})
	s.Require().NoError(err)
	return c
}

// setClient writes a client directly, bypassing the lifecycle rules.
func (s *ServiceSuite) setClient(c *models.Client) {
	s.Require().NoError(s.store.Clients().Save(s.ctx, c))
}

func (s *ServiceSuite) requireCode(err error, code apperrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Require().Equal(code, apperrors.CodeOf(err), "error: %v", err)
}

func (s *ServiceSuite) contract(id int64) *models.Contract {
	c, err := s.store.Contracts().FindByID(s.ctx, id, models.IncludeSpec{})
	s.Require().NoError(err)
	return c
}

// failingContracts fails the n-th Save and delegates everything else.
type failingContracts struct {
	repositories.ContractRepository
	failOn int
	saves  int
}

func (f *failingContracts) Save(ctx context.Context, c *models.Contract) error {
	f.saves++
	if f.saves == f.failOn {
		return errors.New("disk full")
	}
	return f.ContractRepository.Save(ctx, c)
}

// brokenClients fails every lookup.
type brokenClients struct {
	repositories.ClientRepository
}

func (brokenClients) FindByID(context.Context, int64, models.IncludeSpec) (*models.Client, error) {
	return nil, errors.New("connection refused")
}

func (brokenClients) FindAll(context.Context, models.ClientFilter, models.IncludeSpec) ([]models.Client, error) {
	return nil, errors.New("connection refused")
}

func fee(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
