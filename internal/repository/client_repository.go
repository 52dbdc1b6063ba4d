package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stock-manager/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrClientAlreadyExists = errors.New("client with this email or phone already exists")
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	// FindByRef resolves a client by exact name, email, or phone. Sales are
	// posted against whatever key the operator typed in.
	FindByRef(ctx context.Context, ref string) (*domain.Client, error)
	ListAll(ctx context.Context) ([]*domain.Client, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Client, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Client, error)
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = "id, name, email, phone, address, created_at"

// Create inserts a new client into the database using parameterized queries
func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// Update updates an existing client using parameterized queries
func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, address = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, client.ID, client.Name, client.Email, client.Phone, client.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

// Delete removes a client from the database
func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

// FindByID retrieves a client by ID using parameterized queries
func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients WHERE id = $1", clientColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByRef resolves a client by exact name, email, or phone
func (r *clientRepository) FindByRef(ctx context.Context, ref string) (*domain.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE name = $1 OR email = $1 OR phone = $1
		LIMIT 1
	`, clientColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, ref))
}

// ListAll retrieves every client ordered by name
func (r *clientRepository) ListAll(ctx context.Context) ([]*domain.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients ORDER BY name ASC", clientColumns)
	return r.queryClients(ctx, query)
}

// ListRecent retrieves the most recently added clients
func (r *clientRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients ORDER BY created_at DESC, id DESC LIMIT $1", clientColumns)
	return r.queryClients(ctx, query, limit)
}

// Search matches clients by name, email, or phone, case-insensitive
func (r *clientRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Client, error) {
	searchPattern := "%" + query + "%"
	sqlQuery := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, clientColumns)
	return r.queryClients(ctx, sqlQuery, searchPattern, limit)
}

func (r *clientRepository) scanOne(row *sql.Row) (*domain.Client, error) {
	client := &domain.Client{}
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

func (r *clientRepository) queryClients(ctx context.Context, query string, args ...interface{}) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []*domain.Client{}
	for rows.Next() {
		client := &domain.Client{}
		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Email,
			&client.Phone,
			&client.Address,
			&client.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}
