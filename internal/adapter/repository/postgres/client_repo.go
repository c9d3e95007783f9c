package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/postgres/generated"
	"github.com/iho/ledgerbook/internal/usecase"
)

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct{}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{}
}

// Create inserts a client. A zero ID is assigned by the database; an explicit
// ID moves the identity sequence past it.
func (r *ClientRepository) Create(ctx context.Context, uow usecase.UnitOfWork, client *domain.Client) error {
	queries := queriesFor(uow)

	var (
		row generated.Client
		err error
	)
	if client.ID == 0 {
		row, err = queries.CreateClient(ctx, generated.CreateClientParams{
			Name:      client.Name,
			CreatedAt: timeToPgTimestamptz(client.CreatedAt),
		})
	} else {
		row, err = queries.CreateClientWithID(ctx, generated.CreateClientWithIDParams{
			ID:        client.ID,
			Name:      client.Name,
			CreatedAt: timeToPgTimestamptz(client.CreatedAt),
		})
		if err == nil {
			err = queries.SyncClientIDSequence(ctx)
		}
	}
	if err != nil {
		return translateError(err)
	}

	client.ID = row.ID
	client.CreatedAt = row.CreatedAt.Time

	return nil
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, uow usecase.UnitOfWork, id int64) (*domain.Client, error) {
	row, err := queriesFor(uow).GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}

		return nil, translateError(err)
	}

	return rowToClient(row), nil
}

// List lists all clients ordered by ID.
func (r *ClientRepository) List(ctx context.Context, uow usecase.UnitOfWork) ([]*domain.Client, error) {
	rows, err := queriesFor(uow).ListClients(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, rowToClient(row))
	}

	return clients, nil
}

// Delete deletes a client. Its accounts must be deleted first.
func (r *ClientRepository) Delete(ctx context.Context, uow usecase.UnitOfWork, id int64) error {
	n, err := queriesFor(uow).DeleteClient(ctx, id)
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

func rowToClient(row generated.Client) *domain.Client {
	return &domain.Client{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
	}
}
