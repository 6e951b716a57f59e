package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lacarte/orderdesk/internal/dal/interfaces/iorderrepo"
	"github.com/lacarte/orderdesk/internal/dal/interfaces/ioutboxrepo"
	"github.com/lacarte/orderdesk/internal/dal/postgres"
	orderrepo "github.com/lacarte/orderdesk/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/lacarte/orderdesk/internal/dal/repositories/outbox/postgres"
)

// unitOfWork binds the order and outbox repositories to a single pgx
// transaction so an order mutation and its outbox event commit or roll back
// together.
type unitOfWork struct {
	client     *postgres.Client
	tx         pgx.Tx
	orderRepo  iorderrepo.IOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work. Until Begin is called the
// repositories run directly on the pool.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:     client,
		orderRepo:  orderrepo.NewPostgresOrderRepository(client.Pool()),
		outboxRepo: outboxrepo.NewPostgresOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// Begin opens a transaction and rebinds the repositories to it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
