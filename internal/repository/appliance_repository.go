package repository

import (
	"context"
	"database/sql"

	"github.com/myhometech/backend/internal/model"
)

// ApplianceRepo provides CRUD access to a client's appliance catalog.
// Ownership is enforced in SQL: every mutating statement filters on
// client_id, so a request against someone else's appliance matches zero
// rows and surfaces as sql.ErrNoRows.
type ApplianceRepo struct {
	db *sql.DB
}

func NewApplianceRepo(db *sql.DB) *ApplianceRepo { return &ApplianceRepo{db: db} }

const applianceColumns = `id, client_id, name, brand, model, notes, created_at, updated_at`

func scanAppliance(row interface {
	Scan(dest ...interface{}) error
}) (model.Appliance, error) {
	var a model.Appliance
	err := row.Scan(&a.ID, &a.ClientID, &a.Name, &a.Brand, &a.Model, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an appliance and returns the stored row.
func (r *ApplianceRepo) Create(ctx context.Context, a *model.Appliance) error {
	const q = `INSERT INTO appliances (client_id, name, brand, model, notes) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.ClientID, a.Name, a.Brand, a.Model, a.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	// Query back to populate DB-side timestamps.
	const sel = `SELECT ` + applianceColumns + ` FROM appliances WHERE id = ?`
	stored, err := scanAppliance(r.db.QueryRowContext(ctx, sel, a.ID))
	if err != nil {
		return err
	}
	*a = stored
	return nil
}

// GetForClient returns one appliance owned by the given client.
func (r *ApplianceRepo) GetForClient(ctx context.Context, id, clientID uint64) (model.Appliance, error) {
	const q = `SELECT ` + applianceColumns + ` FROM appliances WHERE id = ? AND client_id = ?`
	return scanAppliance(r.db.QueryRowContext(ctx, q, id, clientID))
}

// ListByClient returns the client's full catalog, newest first.
func (r *ApplianceRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.Appliance, error) {
	const q = `SELECT ` + applianceColumns + ` FROM appliances WHERE client_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Appliance, 0)
	for rows.Next() {
		a, err := scanAppliance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the descriptive fields of an appliance owned by the
// client. sql.ErrNoRows is returned when the appliance does not exist or
// belongs to someone else.
func (r *ApplianceRepo) Update(ctx context.Context, a *model.Appliance) error {
	const q = `UPDATE appliances SET name = ?, brand = ?, model = ?, notes = ? WHERE id = ? AND client_id = ?`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.Brand, a.Model, a.Notes, a.ID, a.ClientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no change" from "not yours": re-check existence.
		if _, err := r.GetForClient(ctx, a.ID, a.ClientID); err != nil {
			return err
		}
	}
	stored, err := r.GetForClient(ctx, a.ID, a.ClientID)
	if err != nil {
		return err
	}
	*a = stored
	return nil
}

// Delete removes an appliance owned by the client. sql.ErrNoRows is
// returned when nothing was deleted.
func (r *ApplianceRepo) Delete(ctx context.Context, id, clientID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appliances WHERE id = ? AND client_id = ?`, id, clientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
