package repositories

import (
	"context"
	"fmt"
	"time"

	"garage_backend/internal/models"
)

// PaymentRepository is the append-only payment ledger. There is no update
// path; payments are removed only together with their job card.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, q SQLExecutor, p *models.Payment) (int64, error)
	GetPaymentsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) ([]models.Payment, error)
	DeletePaymentsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) error
}

type paymentRepository struct{}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) CreatePayment(ctx context.Context, q SQLExecutor, p *models.Payment) (int64, error) {
	query := `INSERT INTO payments (job_card_id, amount, payment_method, transaction_ref, date_paid, recorded_by)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if p.DatePaid.IsZero() {
		p.DatePaid = time.Now().UTC()
	}
	err := q.QueryRowContext(ctx, query,
		p.JobCardID, p.Amount, p.PaymentMethod, p.TransactionRef, p.DatePaid, p.RecordedBy,
	).Scan(&p.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating payment")
	}
	return p.ID, nil
}

// GetPaymentsByJobCardID returns payments oldest first.
func (r *paymentRepository) GetPaymentsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) ([]models.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, job_card_id, amount, payment_method, transaction_ref, date_paid, recorded_by
		 FROM payments WHERE job_card_id = $1 ORDER BY date_paid ASC, id ASC`, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting payments for job card %d: %v", ErrDatabaseError, jobCardID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.JobCardID, &p.Amount, &p.PaymentMethod, &p.TransactionRef, &p.DatePaid, &p.RecordedBy); err != nil {
			return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payments: %v", ErrDatabaseError, err)
	}
	return payments, nil
}

func (r *paymentRepository) DeletePaymentsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM payments WHERE job_card_id = $1`, jobCardID); err != nil {
		return fmt.Errorf("%w: deleting payments for job card %d: %v", ErrDatabaseError, jobCardID, err)
	}
	return nil
}
