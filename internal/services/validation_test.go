package services

import (
	"time"

	"cardhub/internal/apperrors"
	"cardhub/internal/models"
)

func (s *ServiceSuite) TestValidateCreate() {
	s.Run("client aggregates every missing field", func() {
		err := s.validator.ValidateCreate(s.ctx, models.KindClient, &models.ClientInput{Name: ptr("  ")})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"name", "national_id", "birth_date"}, apperrors.DetailsOf(err))
	})

	s.Run("card reports bad type and negative fee together", func() {
		err := s.validator.ValidateCreate(s.ctx, models.KindCard, &models.CardInput{
			Name: ptr("Gold"), Type: ptr("prepaid"), Network: ptr("Visa"), AnnualFee: fee("-1"),
		})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Len(apperrors.DetailsOf(err), 2)
	})

	s.Run("card missing fields", func() {
		err := s.validator.ValidateCreate(s.ctx, models.KindCard, &models.CardInput{})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"name", "type", "network"}, apperrors.DetailsOf(err))
	})

	s.Run("contract needs both refs", func() {
		err := s.validator.ValidateCreate(s.ctx, models.KindContract, &models.ContractInput{})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"client_id", "card_id"}, apperrors.DetailsOf(err))
	})

	s.Run("payload of the wrong kind is an internal error", func() {
		err := s.validator.ValidateCreate(s.ctx, models.KindCard, &models.ClientInput{})
		s.requireCode(err, apperrors.CodeInternal)
	})
}

func (s *ServiceSuite) TestDuplicateNationalIDConflicts() {
	existing := s.mkClient("111")

	_, err := s.clients.Create(s.ctx, &models.ClientInput{
		Name: ptr("Bia"), NationalID: ptr(" 111 "), BirthDate: ptr(models.NewDate(1985, time.May, 5)),
	})
	s.requireCode(err, apperrors.CodeConflict)
	s.Contains(err.Error(), "client id 1")

	got, err := s.clients.Get(s.ctx, existing.ID, models.DetailOptions{})
	s.Require().NoError(err)
	s.Equal(*existing, *got)
}

func (s *ServiceSuite) TestValidateUpdate() {
	a := s.mkClient("111")
	b := s.mkClient("222")

	s.Run("id is required", func() {
		err := s.validator.ValidateUpdate(s.ctx, models.KindClient, &models.ClientInput{Name: ptr("x")})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"id"}, apperrors.DetailsOf(err))
	})

	s.Run("blank present fields are rejected", func() {
		err := s.validator.ValidateUpdate(s.ctx, models.KindCard, &models.CardInput{ID: ptr(int64(1)), Name: ptr("")})
		s.requireCode(err, apperrors.CodeBadRequest)
		s.Equal([]string{"name"}, apperrors.DetailsOf(err))
	})

	s.Run("taking another client's national id conflicts", func() {
		_, err := s.clients.Update(s.ctx, &models.ClientInput{ID: &b.ID, NationalID: ptr("111")})
		s.requireCode(err, apperrors.CodeConflict)
		s.Contains(err.Error(), "client id 1")
	})

	s.Run("keeping its own national id is fine", func() {
		got, err := s.clients.Update(s.ctx, &models.ClientInput{ID: &a.ID, NationalID: ptr("111"), Name: ptr("Ana Maria")})
		s.Require().NoError(err)
		s.Equal("Ana Maria", got.Name)
	})

	s.Run("contract update needs a ref", func() {
		err := s.validator.ValidateUpdate(s.ctx, models.KindContract, &models.ContractInput{ID: ptr(int64(1))})
		s.requireCode(err, apperrors.CodeBadRequest)
	})
}

func (s *ServiceSuite) TestNationalIDLookupFailureIsInternal() {
	v := NewValidator(brokenClients{})
	err := v.ValidateCreate(s.ctx, models.KindClient, &models.ClientInput{
		Name: ptr("Ana"), NationalID: ptr("111"), BirthDate: ptr(models.NewDate(1990, 1, 1)),
	})
	s.requireCode(err, apperrors.CodeInternal)
}
