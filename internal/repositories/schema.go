package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id          BIGSERIAL PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		national_id VARCHAR(20)  NOT NULL,
		email       VARCHAR(100),
		birth_date  DATE         NOT NULL,
		id_regular  BOOLEAN      NOT NULL DEFAULT TRUE,
		active      BOOLEAN      NOT NULL DEFAULT TRUE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS clients_national_id_key ON clients (national_id)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(50)  NOT NULL,
		type       VARCHAR(20)  NOT NULL,
		network    VARCHAR(20)  NOT NULL,
		annual_fee NUMERIC(7,2) NOT NULL DEFAULT 0 CHECK (annual_fee >= 0),
		active     BOOLEAN      NOT NULL DEFAULT TRUE,
		start_date DATE         NOT NULL DEFAULT CURRENT_DATE,
		end_date   DATE         NOT NULL DEFAULT DATE '9999-12-31'
	)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id         BIGSERIAL PRIMARY KEY,
		client_id  BIGINT  NOT NULL REFERENCES clients (id) ON UPDATE CASCADE ON DELETE RESTRICT,
		card_id    BIGINT  NOT NULL REFERENCES cards (id) ON UPDATE CASCADE ON DELETE RESTRICT,
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		start_date DATE    NOT NULL DEFAULT CURRENT_DATE,
		end_date   DATE    NOT NULL DEFAULT DATE '9999-12-31'
	)`,
	`CREATE INDEX IF NOT EXISTS contracts_client_id_idx ON contracts (client_id) WHERE active`,
	`CREATE INDEX IF NOT EXISTS contracts_card_id_idx ON contracts (card_id) WHERE active`,
}

// EnsureSchema creates the tables and indexes when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
