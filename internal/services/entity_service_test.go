package services

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"cardhub/internal/apperrors"
	"cardhub/internal/models"
)

func (s *ServiceSuite) TestCreateThenGetRoundTrips() {
	s.Run("client", func() {
		created := s.mkClient("111")
		s.True(created.Active)
		s.True(created.IDRegular)

		got, err := s.clients.Get(s.ctx, created.ID, models.DetailOptions{})
		s.Require().NoError(err)
		s.Equal(*created, *got)
	})

	s.Run("client with irregular id", func() {
		created := s.mkClient("112", func(in *models.ClientInput) { in.IDRegular = ptr(false) })
		s.False(created.IDRegular)
		s.True(created.Active)
	})

	s.Run("card", func() {
		created := s.mkCard(func(in *models.CardInput) { in.AnnualFee = fee("99.90") })
		s.Equal(models.CardTypeCredit, created.Type)
		s.Equal(today, created.StartDate)
		s.True(created.EndDate.IsInfinite())

		got, err := s.cards.Get(s.ctx, created.ID, models.DetailOptions{})
		s.Require().NoError(err)
		s.Equal(created.Name, got.Name)
		s.True(decimal.RequireFromString("99.90").Equal(got.AnnualFee))
		s.Equal(created.Window(), got.Window())
	})

	s.Run("contract", func() {
		client := s.mkClient("113")
		card := s.mkCard()
		created := s.mkContract(client.ID, card.ID)
		s.True(created.Active)
		s.Equal(today, created.StartDate)

		got, err := s.contracts.Get(s.ctx, created.ID, models.DetailOptions{})
		s.Require().NoError(err)
		s.Equal(*created, *got)
	})
}

func (s *ServiceSuite) TestCardDefaultsAndWindow() {
	card := s.mkCard()
	s.True(card.AnnualFee.IsZero())

	_, err := s.cards.Create(s.ctx, &models.CardInput{
		Name: ptr("Bad"), Type: ptr("debit"), Network: ptr("Elo"),
		StartDate: ptr(models.NewDate(2025, time.June, 1)), EndDate: ptr(models.NewDate(2025, time.May, 1)),
	})
	s.requireCode(err, apperrors.CodeBadRequest)

	_, err = s.cards.Update(s.ctx, &models.CardInput{ID: &card.ID, EndDate: ptr(models.NewDate(2020, time.January, 1))})
	s.requireCode(err, apperrors.CodeBadRequest)

	updated, err := s.cards.Update(s.ctx, &models.CardInput{ID: &card.ID, Type: ptr("débito"), AnnualFee: fee("10")})
	s.Require().NoError(err)
	s.Equal(models.CardTypeDebit, updated.Type)
}

func (s *ServiceSuite) TestContractCreateRequiresValidLinks() {
	client := s.mkClient("111")
	card := s.mkCard()

	_, err := s.lifecycle.DeactivateCard(s.ctx, card.ID)
	s.Require().NoError(err)

	_, err = s.contracts.Create(s.ctx, &models.ContractInput{ClientID: &client.ID, CardID: &card.ID})
	s.requireCode(err, apperrors.CodeBadRequest)
	s.Contains(err.Error(), "Card invalid")

	all, err := s.contracts.List(s.ctx, models.ContractFilter{}, models.DetailOptions{})
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServiceSuite) TestContractUpdate() {
	client := s.mkClient("111")
	card := s.mkCard()
	other := s.mkCard(func(in *models.CardInput) { in.Name = ptr("Black") })
	contract := s.mkContract(client.ID, card.ID)

	s.Run("re-points to a valid card", func() {
		got, err := s.contracts.Update(s.ctx, &models.ContractInput{ID: &contract.ID, CardID: &other.ID})
		s.Require().NoError(err)
		s.Equal(other.ID, got.CardID)
		s.Equal(client.ID, got.ClientID)
	})

	s.Run("only present refs are checked", func() {
		irregular := s.mkClient("222")
		irregular.IDRegular = false
		s.setClient(irregular)

		_, err := s.contracts.Update(s.ctx, &models.ContractInput{ID: &contract.ID, ClientID: &irregular.ID})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"Client invalid: irregular national id"}, apperrors.DetailsOf(err))
	})

	s.Run("inactive contract cannot change", func() {
		_, err := s.contracts.Deactivate(s.ctx, contract.ID)
		s.Require().NoError(err)
		_, err = s.contracts.Update(s.ctx, &models.ContractInput{ID: &contract.ID, CardID: &card.ID})
		s.requireCode(err, apperrors.CodeInvalidState)
	})

	s.Run("unknown contract", func() {
		_, err := s.contracts.Update(s.ctx, &models.ContractInput{ID: ptr(int64(404)), CardID: &card.ID})
		s.requireCode(err, apperrors.CodeNotFound)
	})
}

func (s *ServiceSuite) TestListingFiltersAndDetails() {
	ana := s.mkClient("111")
	bia := s.mkClient("222")
	card := s.mkCard()
	s.mkContract(ana.ID, card.ID)
	s.mkContract(bia.ID, card.ID)

	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.clients.Deactivate(s.ctx, bia.ID)
	s.Require().NoError(err)

	active, inactive := true, false

	list, err := s.clients.List(s.ctx, models.ClientFilter{Active: &active}, models.DetailOptions{})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(ana.ID, list[0].ID)

	list, err = s.clients.List(s.ctx, models.ClientFilter{NationalID: " 222 "}, models.DetailOptions{Card: true})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().Len(list[0].Contracts, 1)
	s.Require().NotNil(list[0].Contracts[0].Card)
	s.Equal(card.ID, list[0].Contracts[0].Card.ID)

	contracts, err := s.contracts.List(s.ctx, models.ContractFilter{Active: &inactive}, models.DetailOptions{Client: true})
	s.Require().NoError(err)
	s.Require().Len(contracts, 1)
	s.Equal(bia.ID, contracts[0].Client.ID)
	s.Nil(contracts[0].Card)

	got, err := s.cards.Get(s.ctx, card.ID, models.DetailOptions{Contract: true})
	s.Require().NoError(err)
	s.Len(got.Contracts, 2)
	s.Nil(got.Contracts[0].Client)
}

func (s *ServiceSuite) TestExampleScenario() {
	client, err := s.clients.Create(s.ctx, &models.ClientInput{
		Name: ptr("Ana"), NationalID: ptr("111"), BirthDate: ptr(models.NewDate(1990, time.January, 1)),
	})
	s.Require().NoError(err)
	s.Equal(int64(1), client.ID)
	s.True(client.Active)
	s.True(client.IDRegular)

	card, err := s.cards.Create(s.ctx, &models.CardInput{Name: ptr("Visa Gold"), Type: ptr("credito"), Network: ptr("Visa")})
	s.Require().NoError(err)
	s.Equal(int64(1), card.ID)
	s.True(card.Active)

	contract, err := s.contracts.Create(s.ctx, &models.ContractInput{ClientID: &client.ID, CardID: &card.ID})
	s.Require().NoError(err)
	s.Equal(int64(1), contract.ID)
	s.True(contract.Active)

	// no email on file, the notifier still receives the notice
	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).Return(nil)
	res, err := s.clients.Deactivate(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Require().Len(res.DeactivatedContracts, 1)
	s.Equal(int64(1), res.DeactivatedContracts[0].ID)
	s.False(res.DeactivatedContracts[0].Active)

	reactivated, err := s.clients.Activate(s.ctx, client.ID)
	s.Require().NoError(err)
	s.True(reactivated.Active)
	s.False(s.contract(contract.ID).Active)
}
