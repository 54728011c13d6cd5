package services

import (
	"context"
	"fmt"
	"time"

	"cardhub/internal/clock"
	"cardhub/internal/logger"
	"cardhub/internal/metrics"
	"cardhub/internal/models"
	"cardhub/internal/notify"
	"cardhub/internal/repositories"
)

// ClientDeactivation is the result of deactivating a client, including the
// contracts closed by the cascade.
type ClientDeactivation struct {
	Client               *models.Client    `json:"client"`
	DeactivatedContracts []models.Contract `json:"deactivated_contracts"`
}

type CardDeactivation struct {
	Card                 *models.Card      `json:"card"`
	DeactivatedContracts []models.Contract `json:"deactivated_contracts"`
}

// LifecycleManager owns every change of an entity's active flag.
type LifecycleManager struct {
	clients   repositories.ClientRepository
	cards     repositories.CardRepository
	contracts repositories.ContractRepository
	tx        repositories.TxRunner
	clock     clock.Clock
	metrics   *metrics.Metrics
	notifier  notify.Notifier
	log       *logger.Logger

	notifyTimeout time.Duration
}

const defaultNotifyTimeout = 30 * time.Second

type LifecycleDeps struct {
	Clients   repositories.ClientRepository
	Cards     repositories.CardRepository
	Contracts repositories.ContractRepository
	Tx        repositories.TxRunner
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Notifier  notify.Notifier
	Log       *logger.Logger

	// NotifyTimeout bounds cascade notifications. Zero means 30s.
	NotifyTimeout time.Duration
}

func NewLifecycleManager(d LifecycleDeps) *LifecycleManager {
	m := &LifecycleManager{
		clients:   d.Clients,
		cards:     d.Cards,
		contracts: d.Contracts,
		tx:        d.Tx,
		clock:     d.Clock,
		metrics:   d.Metrics,
		notifier:  d.Notifier,
		log:       d.Log,

		notifyTimeout: d.NotifyTimeout,
	}
	if m.clock == nil {
		m.clock = clock.Real()
	}
	if m.notifier == nil {
		m.notifier = notify.Nop{}
	}
	if m.log == nil {
		m.log = logger.NewNop()
	}
	if m.notifyTimeout <= 0 {
		m.notifyTimeout = defaultNotifyTimeout
	}
	return m
}

func (m *LifecycleManager) today() models.Date {
	return models.DateOf(clock.Today(m.clock))
}

// ActivateClient re-enables an inactive client with a regular national id.
// Its contracts stay as they are.
func (m *LifecycleManager) ActivateClient(ctx context.Context, id int64) (*models.Client, error) {
	client, err := m.clients.FindByID(ctx, id, models.IncludeSpec{})
	if err != nil {
		return nil, storeErr(err, models.KindClient, id)
	}
	if err := client.CanActivate(); err != nil {
		return nil, err
	}
	client.Active = true
	if err := m.clients.Save(ctx, client); err != nil {
		return nil, storeErr(err, models.KindClient, id)
	}
	m.metrics.IncTransition(string(models.KindClient), "activate")
	m.log.Info("[client][activate] client activated", "client_id", id)
	return client, nil
}

// DeactivateClient deactivates the client and every active contract it
// holds in one transaction.
func (m *LifecycleManager) DeactivateClient(ctx context.Context, id int64) (*ClientDeactivation, error) {
	today := m.today()
	var res ClientDeactivation

	err := m.tx.RunInTx(ctx, func(ctx context.Context) error {
		client, err := m.clients.FindByID(ctx, id, models.IncludeSpec{})
		if err != nil {
			return storeErr(err, models.KindClient, id)
		}
		if err := client.CanDeactivate(); err != nil {
			return err
		}
		client.Active = false
		if err := m.clients.Save(ctx, client); err != nil {
			return fmt.Errorf("save client %d: %w", id, err)
		}
		closed, err := m.cascade(ctx, models.ContractFilter{ClientID: &id}, today, false)
		if err != nil {
			return err
		}
		res = ClientDeactivation{Client: client, DeactivatedContracts: closed}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "client deactivation failed, no changes were applied")
	}

	m.metrics.IncTransition(string(models.KindClient), "deactivate")
	m.metrics.AddCascade(string(models.KindClient), len(res.DeactivatedContracts))
	m.log.Info("[client][deactivate] client deactivated",
		"client_id", id, "deactivated_contracts", len(res.DeactivatedContracts))

	if len(res.DeactivatedContracts) > 0 {
		var recipients []string
		if res.Client.Email != nil && *res.Client.Email != "" {
			recipients = []string{*res.Client.Email}
		}
		m.notify(ctx, notify.CascadeNotice{
			Cause:         models.KindClient,
			EntityID:      id,
			EntityName:    res.Client.Name,
			EffectiveDate: today,
			Contracts:     res.DeactivatedContracts,
			Recipients:    recipients,
		})
	}
	return &res, nil
}

// DeactivateCard ends the card today and closes its active contracts in one
// transaction.
func (m *LifecycleManager) DeactivateCard(ctx context.Context, id int64) (*CardDeactivation, error) {
	today := m.today()
	var res CardDeactivation
	var recipients []string

	err := m.tx.RunInTx(ctx, func(ctx context.Context) error {
		card, err := m.cards.FindByID(ctx, id, models.IncludeSpec{})
		if err != nil {
			return storeErr(err, models.KindCard, id)
		}
		if err := card.CanDeactivate(); err != nil {
			return err
		}
		card.Active = false
		card.EndDate = today
		if err := m.cards.Save(ctx, card); err != nil {
			return fmt.Errorf("save card %d: %w", id, err)
		}
		closed, err := m.cascade(ctx, models.ContractFilter{CardID: &id}, today, true)
		if err != nil {
			return err
		}
		recipients = clientEmails(closed)
		for i := range closed {
			closed[i].Client = nil
		}
		res = CardDeactivation{Card: card, DeactivatedContracts: closed}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "card deactivation failed, no changes were applied")
	}

	m.metrics.IncTransition(string(models.KindCard), "deactivate")
	m.metrics.AddCascade(string(models.KindCard), len(res.DeactivatedContracts))
	m.log.Info("[card][deactivate] card deactivated",
		"card_id", id, "deactivated_contracts", len(res.DeactivatedContracts))

	if len(res.DeactivatedContracts) > 0 {
		m.notify(ctx, notify.CascadeNotice{
			Cause:         models.KindCard,
			EntityID:      id,
			EntityName:    res.Card.Name,
			EffectiveDate: today,
			Contracts:     res.DeactivatedContracts,
			Recipients:    recipients,
		})
	}
	return &res, nil
}

func (m *LifecycleManager) DeactivateContract(ctx context.Context, id int64) (*models.Contract, error) {
	contract, err := m.contracts.FindByID(ctx, id, models.IncludeSpec{})
	if err != nil {
		return nil, storeErr(err, models.KindContract, id)
	}
	if err := contract.CanDeactivate(); err != nil {
		return nil, err
	}
	contract.ApplyDeactivation(m.today())
	if err := m.contracts.Save(ctx, contract); err != nil {
		return nil, storeErr(err, models.KindContract, id)
	}
	m.metrics.IncTransition(string(models.KindContract), "deactivate")
	m.log.Info("[contract][deactivate] contract deactivated", "contract_id", id)
	return contract, nil
}

// cascade deactivates the active contracts matching filter. It must run
// inside the caller's transaction.
func (m *LifecycleManager) cascade(ctx context.Context, filter models.ContractFilter, day models.Date, withClients bool) ([]models.Contract, error) {
	active := true
	filter.Active = &active
	list, err := m.contracts.FindAll(ctx, filter, models.IncludeSpec{Client: withClients})
	if err != nil {
		return nil, fmt.Errorf("load contracts for cascade: %w", err)
	}
	for i := range list {
		list[i].ApplyDeactivation(day)
		if err := m.contracts.Save(ctx, &list[i]); err != nil {
			return nil, fmt.Errorf("cascade contract %d: %w", list[i].ID, err)
		}
	}
	return list, nil
}

// notify runs after commit. It outlives a cancelled request, up to
// notifyTimeout. Delivery failures are logged and never undo the deactivation.
func (m *LifecycleManager) notify(ctx context.Context, notice notify.CascadeNotice) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.notifyTimeout)
	defer cancel()
	if err := m.notifier.NotifyCascade(ctx, notice); err != nil {
		m.log.Warn("[lifecycle][notify] cascade notification failed",
			"cause", notice.Cause, "entity_id", notice.EntityID, "error", err)
	}
}

func clientEmails(contracts []models.Contract) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range contracts {
		if c.Client == nil || c.Client.Email == nil || *c.Client.Email == "" {
			continue
		}
		if e := *c.Client.Email; !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
