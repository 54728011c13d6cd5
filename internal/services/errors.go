package services

import (
	"errors"

	"cardhub/internal/apperrors"
	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

// storeErr translates a store failure for the entity kind/id into a typed
// error. Already typed errors pass through unchanged.
func storeErr(err error, kind models.Kind, id int64) error {
	if err == nil {
		return nil
	}
	var typed *apperrors.Error
	if errors.As(err, &typed) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.Newf(apperrors.CodeNotFound, "%s %d not found", kind, id)
	case repositories.IsUniqueViolation(err):
		return apperrors.Wrap(err, apperrors.CodeConflict, string(kind)+" violates a uniqueness constraint")
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, string(kind)+" store failure")
}

// internalErr keeps typed errors and wraps everything else as Internal.
func internalErr(err error, message string) error {
	var typed *apperrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, message)
}
