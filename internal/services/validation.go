package services

import (
	"context"
	"strings"

	"cardhub/internal/apperrors"
	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

const msgMissingFields = "missing required fields"

// Validator checks create/update payloads before anything is written.
// Field problems are aggregated into one BadRequest.
type Validator struct {
	clients repositories.ClientRepository
}

func NewValidator(clients repositories.ClientRepository) *Validator {
	return &Validator{clients: clients}
}

func (v *Validator) ValidateCreate(ctx context.Context, kind models.Kind, payload any) error {
	switch in := payload.(type) {
	case *models.ClientInput:
		if kind != models.KindClient {
			break
		}
		var missing []string
		missing = requireString(missing, "name", in.Name)
		missing = requireString(missing, "national_id", in.NationalID)
		if in.BirthDate == nil || in.BirthDate.IsZero() {
			missing = append(missing, "birth_date")
		}
		if err := apperrors.Aggregate(apperrors.CodeBadRequest, msgMissingFields, missing); err != nil {
			return err
		}
		return v.checkNationalID(ctx, strings.TrimSpace(*in.NationalID), 0)

	case *models.CardInput:
		if kind != models.KindCard {
			break
		}
		var missing []string
		missing = requireString(missing, "name", in.Name)
		missing = requireString(missing, "type", in.Type)
		missing = requireString(missing, "network", in.Network)
		if err := apperrors.Aggregate(apperrors.CodeBadRequest, msgMissingFields, missing); err != nil {
			return err
		}
		return validateCardFields(in)

	case *models.ContractInput:
		if kind != models.KindContract {
			break
		}
		var missing []string
		if in.ClientID == nil {
			missing = append(missing, "client_id")
		}
		if in.CardID == nil {
			missing = append(missing, "card_id")
		}
		return apperrors.Aggregate(apperrors.CodeBadRequest, msgMissingFields, missing)
	}
	return apperrors.Newf(apperrors.CodeInternal, "no validation rules for %s payload %T", kind, payload)
}

// ValidateUpdate requires the record id. Fields that are present must not
// be blank.
func (v *Validator) ValidateUpdate(ctx context.Context, kind models.Kind, payload any) error {
	switch in := payload.(type) {
	case *models.ClientInput:
		if kind != models.KindClient {
			break
		}
		var missing []string
		if in.ID == nil {
			missing = append(missing, "id")
		}
		missing = presentNotBlank(missing, "name", in.Name)
		missing = presentNotBlank(missing, "national_id", in.NationalID)
		if in.BirthDate != nil && in.BirthDate.IsZero() {
			missing = append(missing, "birth_date")
		}
		if err := apperrors.Aggregate(apperrors.CodeBadRequest, msgMissingFields, missing); err != nil {
			return err
		}
		if in.NationalID == nil {
			return nil
		}
		return v.checkNationalID(ctx, strings.TrimSpace(*in.NationalID), *in.ID)

	case *models.CardInput:
		if kind != models.KindCard {
			break
		}
		var missing []string
		if in.ID == nil {
			missing = append(missing, "id")
		}
		missing = presentNotBlank(missing, "name", in.Name)
		missing = presentNotBlank(missing, "type", in.Type)
		missing = presentNotBlank(missing, "network", in.Network)
		if err := apperrors.Aggregate(apperrors.CodeBadRequest, msgMissingFields, missing); err != nil {
			return err
		}
		return validateCardFields(in)

	case *models.ContractInput:
		if kind != models.KindContract {
			break
		}
		if in.ID == nil {
			return apperrors.Aggregate(apperrors.CodeBadRequest, msgMissingFields, []string{"id"})
		}
		if in.ClientID == nil && in.CardID == nil {
			return apperrors.New(apperrors.CodeBadRequest, "contract update needs client_id or card_id")
		}
		return nil
	}
	return apperrors.Newf(apperrors.CodeInternal, "no validation rules for %s payload %T", kind, payload)
}

// checkNationalID fails with Conflict when another client already holds
// nationalID. self is the id of the client being updated, 0 on create.
func (v *Validator) checkNationalID(ctx context.Context, nationalID string, self int64) error {
	found, err := v.clients.FindAll(ctx, models.ClientFilter{NationalID: nationalID}, models.IncludeSpec{})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "national id lookup failed")
	}
	for _, c := range found {
		if c.ID != self {
			return apperrors.Newf(apperrors.CodeConflict, "national id already registered for client id %d", c.ID)
		}
	}
	return nil
}

func validateCardFields(in *models.CardInput) error {
	var invalid []string
	if in.Type != nil {
		if _, ok := models.ParseCardType(*in.Type); !ok {
			invalid = append(invalid, "type must be credit or debit")
		}
	}
	if in.AnnualFee != nil && in.AnnualFee.IsNegative() {
		invalid = append(invalid, "annual_fee must not be negative")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(in.StartDate.Time) {
		invalid = append(invalid, "end_date must not be before start_date")
	}
	return apperrors.Aggregate(apperrors.CodeBadRequest, "invalid card fields", invalid)
}

func requireString(missing []string, field string, v *string) []string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return append(missing, field)
	}
	return missing
}

func presentNotBlank(missing []string, field string, v *string) []string {
	if v != nil && strings.TrimSpace(*v) == "" {
		return append(missing, field)
	}
	return missing
}
