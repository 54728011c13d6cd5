// Package notify delivers cascade deactivation notices to people outside the
// service: affected clients by email and the operations team on Telegram.
package notify

//go:generate mockgen -source=notify.go -destination=mocks/notifier_mock.go -package=mocks Notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"cardhub/internal/models"
)

// CascadeNotice describes contracts deactivated because their client or
// card was deactivated.
type CascadeNotice struct {
	Cause         models.Kind
	EntityID      int64
	EntityName    string
	EffectiveDate models.Date
	Contracts     []models.Contract
	// Recipients are the email addresses of the affected clients.
	Recipients []string
}

type Notifier interface {
	NotifyCascade(ctx context.Context, notice CascadeNotice) error
}

// Multi fans a notice out to every notifier concurrently. A failing channel
// does not cancel the others; all failures are joined.
type Multi []Notifier

func (m Multi) NotifyCascade(ctx context.Context, notice CascadeNotice) error {
	var g errgroup.Group
	errs := make([]error, len(m))
	for i, n := range m {
		g.Go(func() error {
			errs[i] = n.NotifyCascade(ctx, notice)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) NotifyCascade(context.Context, CascadeNotice) error { return nil }

func contractIDs(contracts []models.Contract) string {
	ids := make([]string, len(contracts))
	for i, c := range contracts {
		ids[i] = fmt.Sprintf("#%d", c.ID)
	}
	return strings.Join(ids, ", ")
}
