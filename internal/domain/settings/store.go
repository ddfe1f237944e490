package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("config key not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Value(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRow(ctx, "SELECT value FROM system_config WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value, description string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO system_config (key, value, description)
    VALUES ($1,$2,$3)
    ON CONFLICT (key)
    DO UPDATE SET value = EXCLUDED.value, updated_at = now()
  `, key, value, description)
	return err
}

func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, "SELECT key, value, COALESCE(description, ''), updated_at FROM system_config ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.Description, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
