package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cardhub/internal/models"
)

const contractColumns = `id, client_id, card_id, active, start_date, end_date`

type contractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	const q = `
		INSERT INTO contracts (client_id, card_id, active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, q,
		contract.ClientID, contract.CardID, contract.Active, contract.StartDate, contract.EndDate,
	).Scan(&contract.ID)
	if err != nil {
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (r *contractRepository) Save(ctx context.Context, contract *models.Contract) error {
	const q = `
		UPDATE contracts
		SET client_id=$1, card_id=$2, active=$3, start_date=$4, end_date=$5
		WHERE id=$6
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		contract.ClientID, contract.CardID, contract.Active, contract.StartDate, contract.EndDate, contract.ID,
	)
	if err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	return expectOneRow(res, "contract")
}

func (r *contractRepository) FindByID(ctx context.Context, id int64, include models.IncludeSpec) (*models.Contract, error) {
	q := conn(ctx, r.db)
	c, err := scanContract(q.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if err := attachRefs(ctx, q, []*models.Contract{c}, include); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contractRepository) FindAll(ctx context.Context, filter models.ContractFilter, include models.IncludeSpec) ([]models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`
	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argID))
		args = append(args, *filter.Active)
		argID++
	}
	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argID))
		args = append(args, *filter.ClientID)
		argID++
	}
	if filter.CardID != nil {
		conditions = append(conditions, fmt.Sprintf("card_id = $%d", argID))
		args = append(args, *filter.CardID)
		argID++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	q := conn(ctx, r.db)
	res, err := queryContracts(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Contract, len(res))
	for i := range res {
		ptrs[i] = &res[i]
	}
	if err := attachRefs(ctx, q, ptrs, include); err != nil {
		return nil, err
	}
	return res, nil
}

func scanContract(s rowScanner) (*models.Contract, error) {
	var c models.Contract
	if err := s.Scan(&c.ID, &c.ClientID, &c.CardID, &c.Active, &c.StartDate, &c.EndDate); err != nil {
		return nil, err
	}
	return &c, nil
}

func queryContracts(ctx context.Context, q querier, query string, args ...any) ([]models.Contract, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	res := []models.Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

// contractsBy loads the contracts of many parents in one query, grouped by parent id.
// column is either client_id or card_id.
func contractsBy(ctx context.Context, q querier, column string, ids []int64) (map[int64][]models.Contract, error) {
	if column != "client_id" && column != "card_id" {
		return nil, fmt.Errorf("contracts by %s: unsupported column", column)
	}
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE ` + column + ` = ANY($1) ORDER BY id`
	list, err := queryContracts(ctx, q, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]models.Contract, len(ids))
	for _, c := range list {
		key := c.ClientID
		if column == "card_id" {
			key = c.CardID
		}
		out[key] = append(out[key], c)
	}
	return out, nil
}

func attachRefs(ctx context.Context, q querier, contracts []*models.Contract, include models.IncludeSpec) error {
	if include.Client {
		if err := attachClients(ctx, q, contracts); err != nil {
			return err
		}
	}
	if include.Card {
		if err := attachCards(ctx, q, contracts); err != nil {
			return err
		}
	}
	return nil
}

func attachClients(ctx context.Context, q querier, contracts []*models.Contract) error {
	if len(contracts) == 0 {
		return nil
	}
	ids := uniqueIDs(contracts, func(c *models.Contract) int64 { return c.ClientID })
	rows, err := q.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load contract clients: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Client, len(ids))
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return fmt.Errorf("scan client: %w", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load contract clients: %w", err)
	}
	for _, c := range contracts {
		c.Client = byID[c.ClientID]
	}
	return nil
}

func attachCards(ctx context.Context, q querier, contracts []*models.Contract) error {
	if len(contracts) == 0 {
		return nil
	}
	ids := uniqueIDs(contracts, func(c *models.Contract) int64 { return c.CardID })
	rows, err := q.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load contract cards: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Card, len(ids))
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return fmt.Errorf("scan card: %w", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load contract cards: %w", err)
	}
	for _, c := range contracts {
		c.Card = byID[c.CardID]
	}
	return nil
}

func uniqueIDs(contracts []*models.Contract, key func(*models.Contract) int64) []int64 {
	seen := make(map[int64]struct{}, len(contracts))
	ids := make([]int64, 0, len(contracts))
	for _, c := range contracts {
		id := key(c)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
