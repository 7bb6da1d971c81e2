package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrClientNotFound = errors.New("client not found")

type Repository interface {
	Store(ctx context.Context, client Client) (int, error)
	Get(ctx context.Context, id int) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, client Client) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, client Client) (int, error) {
	query := `INSERT INTO client (name, reference) VALUES ($1, $2) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query, client.Name, nullableString(client.Reference)).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store client: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (Client, error) {
	query := `SELECT id, name, reference FROM client WHERE id = $1`

	var (
		client    Client
		reference sql.NullString
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&client.Id, &client.Name, &reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrClientNotFound
		}
		err := fmt.Errorf("could not get client %d: %w", id, err)
		log.Error(err)
		return Client{}, err
	}
	client.Reference = reference.String
	return client, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Client, error) {
	query := `SELECT id, name, reference FROM client ORDER BY name, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query clients: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var (
			client    Client
			reference sql.NullString
		)
		if err := rows.Scan(&client.Id, &client.Name, &reference); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		client.Reference = reference.String
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return clients, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, client Client) (bool, error) {
	query := `UPDATE client SET name = $1, reference = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, client.Name, nullableString(client.Reference), client.Id)
	if err != nil {
		err := fmt.Errorf("could not update client: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.Exec(ctx, "DELETE FROM client WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete client: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
