package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cardhub/internal/models"
)

const cardColumns = `id, name, type, network, annual_fee, active, start_date, end_date`

type cardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	const q = `
		INSERT INTO cards (name, type, network, annual_fee, active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, q,
		card.Name, card.Type, card.Network, card.AnnualFee, card.Active, card.StartDate, card.EndDate,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	return nil
}

func (r *cardRepository) Save(ctx context.Context, card *models.Card) error {
	const q = `
		UPDATE cards
		SET name=$1, type=$2, network=$3, annual_fee=$4, active=$5, start_date=$6, end_date=$7
		WHERE id=$8
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		card.Name, card.Type, card.Network, card.AnnualFee, card.Active, card.StartDate, card.EndDate, card.ID,
	)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return expectOneRow(res, "card")
}

func (r *cardRepository) FindByID(ctx context.Context, id int64, include models.IncludeSpec) (*models.Card, error) {
	q := conn(ctx, r.db)
	c, err := scanCard(q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	list := []models.Card{*c}
	if err := r.attach(ctx, q, list, include); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *cardRepository) FindAll(ctx context.Context, filter models.CardFilter, include models.IncludeSpec) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards`
	args := []interface{}{}
	if filter.Active != nil {
		query += " WHERE active = $1"
		args = append(args, *filter.Active)
	}
	query += " ORDER BY id"

	q := conn(ctx, r.db)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	res := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		res = append(res, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if err := r.attach(ctx, q, res, include); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *cardRepository) attach(ctx context.Context, q querier, cards []models.Card, include models.IncludeSpec) error {
	if !include.Contracts || len(cards) == 0 {
		return nil
	}
	ids := make([]int64, len(cards))
	for i := range cards {
		ids[i] = cards[i].ID
	}
	byCard, err := contractsBy(ctx, q, "card_id", ids)
	if err != nil {
		return err
	}
	for i := range cards {
		cards[i].Contracts = byCard[cards[i].ID]
	}
	if include.Client {
		var all []*models.Contract
		for i := range cards {
			for j := range cards[i].Contracts {
				all = append(all, &cards[i].Contracts[j])
			}
		}
		return attachClients(ctx, q, all)
	}
	return nil
}

func scanCard(s rowScanner) (*models.Card, error) {
	var c models.Card
	if err := s.Scan(&c.ID, &c.Name, &c.Type, &c.Network, &c.AnnualFee, &c.Active, &c.StartDate, &c.EndDate); err != nil {
		return nil, err
	}
	return &c, nil
}
