package services

import (
	"cardhub/internal/apperrors"
	"cardhub/internal/models"
)

func (s *ServiceSuite) TestContractLinks() {
	client := s.mkClient("111")
	card := s.mkCard()

	s.Run("active regular client and in-window card", func() {
		s.NoError(s.links.ValidateContractLinks(s.ctx, &client.ID, &card.ID))
	})

	s.Run("missing refs are both reported", func() {
		err := s.links.ValidateContractLinks(s.ctx, ptr(int64(98)), ptr(int64(99)))
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"Client invalid: not found", "Card invalid: not found"}, apperrors.DetailsOf(err))
	})

	s.Run("nil refs are not checked", func() {
		s.NoError(s.links.ValidateContractLinks(s.ctx, nil, ptr(card.ID)))
		s.NoError(s.links.ValidateContractLinks(s.ctx, nil, nil))
	})
}

func (s *ServiceSuite) TestContractLinksAggregatesClientProblems() {
	client := s.mkClient("111")
	client.Active = false
	client.IDRegular = false
	s.setClient(client)
	card := s.mkCard()

	err := s.links.ValidateContractLinks(s.ctx, &client.ID, &card.ID)
	s.requireCode(err, apperrors.CodeBadRequest)
	s.Equal([]string{"Client invalid: inactive", "Client invalid: irregular national id"}, apperrors.DetailsOf(err))
}

func (s *ServiceSuite) TestContractLinksCardWindow() {
	client := s.mkClient("111")

	s.Run("window not started yet", func() {
		tomorrow := models.DateOf(today.AddDate(0, 0, 1))
		card := s.mkCard(func(in *models.CardInput) { in.StartDate = &tomorrow })
		err := s.links.ValidateContractLinks(s.ctx, &client.ID, &card.ID)
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"Card invalid: outside validity window"}, apperrors.DetailsOf(err))
	})

	s.Run("window ends today", func() {
		card := s.mkCard(func(in *models.CardInput) {
			in.StartDate = ptr(models.NewDate(2024, 1, 1))
			in.EndDate = ptr(today)
		})
		s.NoError(s.links.ValidateContractLinks(s.ctx, &client.ID, &card.ID))
	})

	s.Run("card deactivated today is inactive", func() {
		card := s.mkCard()
		_, err := s.lifecycle.DeactivateCard(s.ctx, card.ID)
		s.Require().NoError(err)

		err = s.links.ValidateContractLinks(s.ctx, &client.ID, &card.ID)
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"Card invalid: inactive"}, apperrors.DetailsOf(err))
	})
}

func (s *ServiceSuite) TestContractLinksStoreFailure() {
	rv := NewRelationshipValidator(brokenClients{}, s.store.Cards(), s.clock)
	err := rv.ValidateContractLinks(s.ctx, ptr(int64(1)), nil)
	s.requireCode(err, apperrors.CodeInternal)
}
