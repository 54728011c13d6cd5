// Package memory is an in-process entity store with the same contract as the
// PostgreSQL repositories. It backs the memory database driver and the tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cardhub/internal/models"
	"cardhub/internal/repositories"
)

type Store struct {
	mu        sync.RWMutex
	clients   map[int64]models.Client
	cards     map[int64]models.Card
	contracts map[int64]models.Contract

	nextClient, nextCard, nextContract int64
}

func New() *Store {
	return &Store{
		clients:   map[int64]models.Client{},
		cards:     map[int64]models.Card{},
		contracts: map[int64]models.Contract{},
	}
}

func (s *Store) Clients() repositories.ClientRepository     { return &clientRepo{s: s} }
func (s *Store) Cards() repositories.CardRepository         { return &cardRepo{s: s} }
func (s *Store) Contracts() repositories.ContractRepository { return &contractRepo{s: s} }

type txKey struct{}

// RunInTx snapshots the store and restores it when fn fails.
// Writes from other goroutines during fn are lost on rollback.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type snapshot struct {
	clients   map[int64]models.Client
	cards     map[int64]models.Card
	contracts map[int64]models.Contract
	ids       [3]int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		clients:   make(map[int64]models.Client, len(s.clients)),
		cards:     make(map[int64]models.Card, len(s.cards)),
		contracts: make(map[int64]models.Contract, len(s.contracts)),
		ids:       [3]int64{s.nextClient, s.nextCard, s.nextContract},
	}
	for k, v := range s.clients {
		snap.clients[k] = v
	}
	for k, v := range s.cards {
		snap.cards[k] = v
	}
	for k, v := range s.contracts {
		snap.contracts[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.clients, s.cards, s.contracts = snap.clients, snap.cards, snap.contracts
	s.nextClient, s.nextCard, s.nextContract = snap.ids[0], snap.ids[1], snap.ids[2]
}

// ---- clients

type clientRepo struct{ s *Store }

func (r *clientRepo) Create(_ context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkNationalID(client.NationalID, 0); err != nil {
		return err
	}
	r.s.nextClient++
	client.ID = r.s.nextClient
	r.s.clients[client.ID] = bareClient(*client)
	return nil
}

func (r *clientRepo) Save(_ context.Context, client *models.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[client.ID]; !ok {
		return repositories.ErrNotFound
	}
	if err := r.s.checkNationalID(client.NationalID, client.ID); err != nil {
		return err
	}
	r.s.clients[client.ID] = bareClient(*client)
	return nil
}

func (r *clientRepo) FindByID(_ context.Context, id int64, include models.IncludeSpec) (*models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	r.s.attachClient(&c, include)
	return &c, nil
}

func (r *clientRepo) FindAll(_ context.Context, filter models.ClientFilter, include models.IncludeSpec) ([]models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Client{}
	for _, id := range sortedKeys(r.s.clients) {
		c := r.s.clients[id]
		if filter.Active != nil && c.Active != *filter.Active {
			continue
		}
		if filter.NationalID != "" && c.NationalID != filter.NationalID {
			continue
		}
		r.s.attachClient(&c, include)
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) checkNationalID(nationalID string, self int64) error {
	for id, c := range s.clients {
		if id != self && c.NationalID == nationalID {
			return fmt.Errorf("national_id %s: %w", nationalID, repositories.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) attachClient(c *models.Client, include models.IncludeSpec) {
	if !include.Contracts {
		return
	}
	c.Contracts = s.contractsWhere(func(k models.Contract) bool { return k.ClientID == c.ID })
	if include.Card {
		for i := range c.Contracts {
			if card, ok := s.cards[c.Contracts[i].CardID]; ok {
				c.Contracts[i].Card = &card
			}
		}
	}
}

// ---- cards

type cardRepo struct{ s *Store }

func (r *cardRepo) Create(_ context.Context, card *models.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextCard++
	card.ID = r.s.nextCard
	r.s.cards[card.ID] = bareCard(*card)
	return nil
}

func (r *cardRepo) Save(_ context.Context, card *models.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[card.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.cards[card.ID] = bareCard(*card)
	return nil
}

func (r *cardRepo) FindByID(_ context.Context, id int64, include models.IncludeSpec) (*models.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	r.s.attachCard(&c, include)
	return &c, nil
}

func (r *cardRepo) FindAll(_ context.Context, filter models.CardFilter, include models.IncludeSpec) ([]models.Card, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Card{}
	for _, id := range sortedKeys(r.s.cards) {
		c := r.s.cards[id]
		if filter.Active != nil && c.Active != *filter.Active {
			continue
		}
		r.s.attachCard(&c, include)
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) attachCard(c *models.Card, include models.IncludeSpec) {
	if !include.Contracts {
		return
	}
	c.Contracts = s.contractsWhere(func(k models.Contract) bool { return k.CardID == c.ID })
	if include.Client {
		for i := range c.Contracts {
			if client, ok := s.clients[c.Contracts[i].ClientID]; ok {
				c.Contracts[i].Client = &client
			}
		}
	}
}

// ---- contracts

type contractRepo struct{ s *Store }

func (r *contractRepo) Create(_ context.Context, contract *models.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkRefs(contract); err != nil {
		return err
	}
	r.s.nextContract++
	contract.ID = r.s.nextContract
	r.s.contracts[contract.ID] = bareContract(*contract)
	return nil
}

func (r *contractRepo) Save(_ context.Context, contract *models.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[contract.ID]; !ok {
		return repositories.ErrNotFound
	}
	if err := r.s.checkRefs(contract); err != nil {
		return err
	}
	r.s.contracts[contract.ID] = bareContract(*contract)
	return nil
}

func (r *contractRepo) FindByID(_ context.Context, id int64, include models.IncludeSpec) (*models.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	r.s.attachContract(&c, include)
	return &c, nil
}

func (r *contractRepo) FindAll(_ context.Context, filter models.ContractFilter, include models.IncludeSpec) ([]models.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.s.contractsWhere(func(c models.Contract) bool {
		if filter.Active != nil && c.Active != *filter.Active {
			return false
		}
		if filter.ClientID != nil && c.ClientID != *filter.ClientID {
			return false
		}
		if filter.CardID != nil && c.CardID != *filter.CardID {
			return false
		}
		return true
	})
	for i := range out {
		r.s.attachContract(&out[i], include)
	}
	return out, nil
}

// checkRefs mirrors the foreign keys of the SQL schema.
func (s *Store) checkRefs(c *models.Contract) error {
	if _, ok := s.clients[c.ClientID]; !ok {
		return fmt.Errorf("contract client %d: %w", c.ClientID, repositories.ErrNotFound)
	}
	if _, ok := s.cards[c.CardID]; !ok {
		return fmt.Errorf("contract card %d: %w", c.CardID, repositories.ErrNotFound)
	}
	return nil
}

func (s *Store) attachContract(c *models.Contract, include models.IncludeSpec) {
	if include.Client {
		if client, ok := s.clients[c.ClientID]; ok {
			c.Client = &client
		}
	}
	if include.Card {
		if card, ok := s.cards[c.CardID]; ok {
			c.Card = &card
		}
	}
}

func (s *Store) contractsWhere(match func(models.Contract) bool) []models.Contract {
	out := []models.Contract{}
	for _, id := range sortedKeys(s.contracts) {
		if c := s.contracts[id]; match(c) {
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func bareClient(c models.Client) models.Client {
	c.Contracts = nil
	return c
}

func bareCard(c models.Card) models.Card {
	c.Contracts = nil
	return c
}

func bareContract(c models.Contract) models.Contract {
	c.Client, c.Card = nil, nil
	return c
}
