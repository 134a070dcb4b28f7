package repository

import (
	"context"
	"database/sql"

	"github.com/myhometech/backend/internal/model"
)

// HelpTicketRepo provides access to the help_tickets table.
type HelpTicketRepo struct {
	db *sql.DB
}

func NewHelpTicketRepo(db *sql.DB) *HelpTicketRepo { return &HelpTicketRepo{db: db} }

const ticketColumns = `id, user_id, subject, message, status, created_at, updated_at`

func scanTicket(row interface {
	Scan(dest ...interface{}) error
}) (model.HelpTicket, error) {
	var t model.HelpTicket
	err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts an open ticket and returns the stored row.
func (r *HelpTicketRepo) Create(ctx context.Context, t *model.HelpTicket) error {
	const q = `INSERT INTO help_tickets (user_id, subject, message, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.UserID, t.Subject, t.Message, model.TicketOpen)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT ` + ticketColumns + ` FROM help_tickets WHERE id = ?`
	stored, err := scanTicket(r.db.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = stored
	return nil
}

// ListByUser returns the caller's tickets, newest first.
func (r *HelpTicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.HelpTicket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM help_tickets WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.HelpTicket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close marks an open ticket as closed. sql.ErrNoRows is returned when the
// ticket does not exist, ErrForbidden when it belongs to someone else, and
// ErrConflict when it is already closed.
func (r *HelpTicketRepo) Close(ctx context.Context, id, userID uint64) (model.HelpTicket, error) {
	const check = `SELECT user_id, status FROM help_tickets WHERE id = ?`
	var ownerID uint64
	var status string
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&ownerID, &status); err != nil {
		return model.HelpTicket{}, err
	}
	if ownerID != userID {
		return model.HelpTicket{}, ErrForbidden
	}
	if status != model.TicketOpen {
		return model.HelpTicket{}, ErrConflict
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE help_tickets SET status = ? WHERE id = ?`, model.TicketClosed, id); err != nil {
		return model.HelpTicket{}, err
	}
	const sel = `SELECT ` + ticketColumns + ` FROM help_tickets WHERE id = ?`
	return scanTicket(r.db.QueryRowContext(ctx, sel, id))
}
