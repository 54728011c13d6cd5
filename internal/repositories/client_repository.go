package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cardhub/internal/models"
)

const clientColumns = `id, name, national_id, email, birth_date, id_regular, active`

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	const q = `
		INSERT INTO clients (name, national_id, email, birth_date, id_regular, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, q,
		client.Name, client.NationalID, client.Email, client.BirthDate, client.IDRegular, client.Active,
	).Scan(&client.ID)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Save(ctx context.Context, client *models.Client) error {
	const q = `
		UPDATE clients
		SET name=$1, national_id=$2, email=$3, birth_date=$4, id_regular=$5, active=$6
		WHERE id=$7
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		client.Name, client.NationalID, client.Email, client.BirthDate, client.IDRegular, client.Active, client.ID,
	)
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return expectOneRow(res, "client")
}

func (r *clientRepository) FindByID(ctx context.Context, id int64, include models.IncludeSpec) (*models.Client, error) {
	q := conn(ctx, r.db)
	row := q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	list := []models.Client{*c}
	if err := r.attach(ctx, q, list, include); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *clientRepository) FindAll(ctx context.Context, filter models.ClientFilter, include models.IncludeSpec) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argID))
		args = append(args, *filter.Active)
		argID++
	}
	if filter.NationalID != "" {
		conditions = append(conditions, fmt.Sprintf("national_id = $%d", argID))
		args = append(args, filter.NationalID)
		argID++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	q := conn(ctx, r.db)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	res := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		res = append(res, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if err := r.attach(ctx, q, res, include); err != nil {
		return nil, err
	}
	return res, nil
}

// attach loads contracts (and their cards) for all clients with one query per relation.
func (r *clientRepository) attach(ctx context.Context, q querier, clients []models.Client, include models.IncludeSpec) error {
	if !include.Contracts || len(clients) == 0 {
		return nil
	}
	ids := make([]int64, len(clients))
	for i := range clients {
		ids[i] = clients[i].ID
	}
	byClient, err := contractsBy(ctx, q, "client_id", ids)
	if err != nil {
		return err
	}
	for i := range clients {
		clients[i].Contracts = byClient[clients[i].ID]
	}
	if include.Card {
		var all []*models.Contract
		for i := range clients {
			for j := range clients[i].Contracts {
				all = append(all, &clients[i].Contracts[j])
			}
		}
		return attachCards(ctx, q, all)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(s rowScanner) (*models.Client, error) {
	var c models.Client
	if err := s.Scan(&c.ID, &c.Name, &c.NationalID, &c.Email, &c.BirthDate, &c.IDRegular, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}

func expectOneRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save %s: %w", entity, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
