package repositories

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"cardhub/internal/models"
)

var (
	// ErrNotFound is returned by FindByID and Save when the id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by stores that enforce uniqueness themselves.
	ErrDuplicate = errors.New("duplicate key")
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id int64, include models.IncludeSpec) (*models.Client, error)
	FindAll(ctx context.Context, filter models.ClientFilter, include models.IncludeSpec) ([]models.Client, error)
	Save(ctx context.Context, client *models.Client) error
}

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	FindByID(ctx context.Context, id int64, include models.IncludeSpec) (*models.Card, error)
	FindAll(ctx context.Context, filter models.CardFilter, include models.IncludeSpec) ([]models.Card, error)
	Save(ctx context.Context, card *models.Card) error
}

type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	FindByID(ctx context.Context, id int64, include models.IncludeSpec) (*models.Contract, error)
	FindAll(ctx context.Context, filter models.ContractFilter, include models.IncludeSpec) ([]models.Contract, error)
	Save(ctx context.Context, contract *models.Contract) error
}

// TxRunner runs fn inside one transaction. Repositories called with the
// context passed to fn take part in it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
