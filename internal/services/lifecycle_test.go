package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/mock/gomock"

	"cardhub/internal/apperrors"
	"cardhub/internal/models"
	"cardhub/internal/notify"
)

func (s *ServiceSuite) TestActivateClient() {
	s.Run("irregular client fails whatever its state", func() {
		for i, active := range []bool{true, false} {
			c := s.mkClient(fmt.Sprintf("90%d", i))
			c.IDRegular = false
			c.Active = active
			s.setClient(c)

			_, err := s.lifecycle.ActivateClient(s.ctx, c.ID)
			s.requireCode(err, apperrors.CodeInvalidState)
			s.Contains(err.Error(), "irregular")

			got, _ := s.clients.Get(s.ctx, c.ID, models.DetailOptions{})
			s.Equal(active, got.Active)
		}
	})

	s.Run("already active client fails", func() {
		c := s.mkClient("111")
		_, err := s.lifecycle.ActivateClient(s.ctx, c.ID)
		s.requireCode(err, apperrors.CodeInvalidState)
		s.Contains(err.Error(), "no modification performed")
	})

	s.Run("unknown client", func() {
		_, err := s.lifecycle.ActivateClient(s.ctx, 404)
		s.requireCode(err, apperrors.CodeNotFound)
	})
}

func (s *ServiceSuite) TestDeactivateInactiveEntityChangesNothing() {
	client := s.mkClient("111")
	card := s.mkCard()
	contract := s.mkContract(client.ID, card.ID)

	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := s.lifecycle.DeactivateContract(s.ctx, contract.ID)
	s.Require().NoError(err)
	before := s.contract(contract.ID)
	_, err = s.lifecycle.DeactivateContract(s.ctx, contract.ID)
	s.requireCode(err, apperrors.CodeInvalidState)
	s.Equal(before, s.contract(contract.ID))

	// give both cascades an active contract to close
	other := s.mkClient("222")
	s.mkContract(other.ID, card.ID)
	s.mkContract(client.ID, s.mkCard().ID)

	_, err = s.lifecycle.DeactivateClient(s.ctx, client.ID)
	s.Require().NoError(err)
	_, err = s.lifecycle.DeactivateClient(s.ctx, client.ID)
	s.requireCode(err, apperrors.CodeInvalidState)

	_, err = s.lifecycle.DeactivateCard(s.ctx, card.ID)
	s.Require().NoError(err)
	cardBefore, err := s.cards.Get(s.ctx, card.ID, models.DetailOptions{})
	s.Require().NoError(err)
	_, err = s.lifecycle.DeactivateCard(s.ctx, card.ID)
	s.requireCode(err, apperrors.CodeInvalidState)
	cardAfter, err := s.cards.Get(s.ctx, card.ID, models.DetailOptions{})
	s.Require().NoError(err)
	s.Equal(cardBefore, cardAfter)
}

func (s *ServiceSuite) TestDeactivateClientCascades() {
	ana := s.mkClient("111")
	bia := s.mkClient("222")
	gold := s.mkCard()
	black := s.mkCard(func(in *models.CardInput) { in.Name = ptr("Black") })

	c1 := s.mkContract(ana.ID, gold.ID)
	c2 := s.mkContract(ana.ID, black.ID)
	c3 := s.mkContract(bia.ID, gold.ID)
	_, err := s.lifecycle.DeactivateContract(s.ctx, c2.ID)
	s.Require().NoError(err)

	var notice notify.CascadeNotice
	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n notify.CascadeNotice) error {
			notice = n
			return nil
		})

	res, err := s.lifecycle.DeactivateClient(s.ctx, ana.ID)
	s.Require().NoError(err)
	s.False(res.Client.Active)
	s.Require().Len(res.DeactivatedContracts, 1)
	s.Equal(c1.ID, res.DeactivatedContracts[0].ID)

	got := s.contract(c1.ID)
	s.False(got.Active)
	s.Equal(today, got.EndDate)
	s.True(s.contract(c3.ID).Active)
	s.Equal(models.InfiniteDate, s.contract(c3.ID).EndDate)

	s.Equal(models.KindClient, notice.Cause)
	s.Equal(ana.ID, notice.EntityID)
	s.Equal([]string{"client111@example.com"}, notice.Recipients)
	s.Equal(today, notice.EffectiveDate)
}

func (s *ServiceSuite) TestDeactivateCardCascades() {
	ana := s.mkClient("111")
	bia := s.mkClient("222", func(in *models.ClientInput) { in.Email = nil })
	gold := s.mkCard()
	black := s.mkCard(func(in *models.CardInput) { in.Name = ptr("Black") })
	c1 := s.mkContract(ana.ID, gold.ID)
	c2 := s.mkContract(bia.ID, gold.ID)
	c3 := s.mkContract(ana.ID, black.ID)

	var notice notify.CascadeNotice
	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n notify.CascadeNotice) error {
			notice = n
			return nil
		})

	res, err := s.lifecycle.DeactivateCard(s.ctx, gold.ID)
	s.Require().NoError(err)
	s.False(res.Card.Active)
	s.Equal(today, res.Card.EndDate)
	s.Len(res.DeactivatedContracts, 2)
	for _, c := range res.DeactivatedContracts {
		s.Nil(c.Client)
	}

	s.False(s.contract(c1.ID).Active)
	s.False(s.contract(c2.ID).Active)
	s.True(s.contract(c3.ID).Active)

	s.Equal(models.KindCard, notice.Cause)
	s.Equal([]string{"client111@example.com"}, notice.Recipients)
}

func (s *ServiceSuite) TestCascadeFailureRollsBack() {
	client := s.mkClient("111")
	card := s.mkCard()
	c1 := s.mkContract(client.ID, card.ID)
	c2 := s.mkContract(client.ID, card.ID)

	s.wire(&failingContracts{ContractRepository: s.store.Contracts(), failOn: 2})

	_, err := s.lifecycle.DeactivateClient(s.ctx, client.ID)
	s.requireCode(err, apperrors.CodeInternal)
	s.Contains(err.Error(), "disk full")

	got, err := s.clients.Get(s.ctx, client.ID, models.DetailOptions{})
	s.Require().NoError(err)
	s.True(got.Active)
	s.True(s.contract(c1.ID).Active)
	s.True(s.contract(c2.ID).Active)
}

func (s *ServiceSuite) TestNotificationFailureKeepsDeactivation() {
	client := s.mkClient("111")
	card := s.mkCard()
	contract := s.mkContract(client.ID, card.ID)

	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	res, err := s.lifecycle.DeactivateClient(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Len(res.DeactivatedContracts, 1)
	s.False(s.contract(contract.ID).Active)
}

func (s *ServiceSuite) TestNotificationSurvivesCancelledRequest() {
	client := s.mkClient("111")
	card := s.mkCard()
	s.mkContract(client.ID, card.ID)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).
		DoAndReturn(func(nctx context.Context, _ notify.CascadeNotice) error {
			cancel()
			s.NoError(nctx.Err())
			deadline, ok := nctx.Deadline()
			s.True(ok)
			s.WithinDuration(time.Now().Add(defaultNotifyTimeout), deadline, 5*time.Second)
			return nil
		})

	_, err := s.lifecycle.DeactivateClient(ctx, client.ID)
	s.Require().NoError(err)
	s.Error(ctx.Err())
}

func (s *ServiceSuite) TestDeactivateWithoutContractsDoesNotNotify() {
	client := s.mkClient("111")
	s.notifier.EXPECT().NotifyCascade(gomock.Any(), gomock.Any()).Times(0)

	res, err := s.lifecycle.DeactivateClient(s.ctx, client.ID)
	s.Require().NoError(err)
	s.Empty(res.DeactivatedContracts)
}

func (s *ServiceSuite) TestDeactivateUnknown() {
	_, err := s.lifecycle.DeactivateClient(s.ctx, 404)
	s.requireCode(err, apperrors.CodeNotFound)
	_, err = s.lifecycle.DeactivateCard(s.ctx, 404)
	s.requireCode(err, apperrors.CodeNotFound)
	_, err = s.lifecycle.DeactivateContract(s.ctx, 404)
	s.requireCode(err, apperrors.CodeNotFound)
}
