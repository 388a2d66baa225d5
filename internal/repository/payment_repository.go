package repository

import (
	"context"
	"errors"
	"fmt"

	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type paymentRepository struct {
	baseRepository
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{baseRepository: newBase(pool, logger, "payment")}
}

const paymentSelect = `
	SELECT pm.id, pm.order_id, o.order_number, o.user_id, pm.payment_method, pm.amount,
		pm.status, pm.transaction_id, pm.created_at, pm.updated_at
	FROM payments pm
	JOIN orders o ON o.id = pm.order_id
`

func scanPayment(row pgx.Row, p *model.Payment) error {
	return row.Scan(
		&p.ID,
		&p.OrderID,
		&p.OrderNumber,
		&p.UserID,
		&p.PaymentMethod,
		&p.Amount,
		&p.Status,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, payment_method, amount, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query, p.ID, p.OrderID, p.PaymentMethod, p.Amount, p.Status, p.TransactionID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrPaymentExists
		}
		r.logger.Error().Err(err).Str("order_id", p.OrderID.String()).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, r.pool, paymentSelect+` WHERE pm.id = $1`, id)
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, tx, paymentSelect+` WHERE pm.order_id = $1`, orderID)
}

func (r *paymentRepository) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	return r.getOne(ctx, tx, paymentSelect+` WHERE pm.id = $1 FOR UPDATE OF pm`, id)
}

func (r *paymentRepository) getOne(ctx context.Context, q DBTX, query string, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	if err := scanPayment(q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE o.user_id = $1 ORDER BY pm.created_at DESC, pm.id`, userID)
}

func (r *paymentRepository) ListAll(ctx context.Context) ([]model.Payment, error) {
	return r.list(ctx, paymentSelect+` ORDER BY pm.created_at DESC, pm.id`)
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payments")
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := scanPayment(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment row")
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating payment rows")
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus, transactionID *string) error {
	query := `
		UPDATE payments
		SET status = $2, transaction_id = COALESCE($3, transaction_id), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, status, transactionID)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to update payment status")
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	return nil
}
