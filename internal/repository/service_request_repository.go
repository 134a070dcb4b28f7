package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/myhometech/backend/internal/model"
)

// ServiceRequestRepo provides data access to the service_requests table.
// Rows are never deleted; cancellation is a status. All timestamp fields
// are stored in UTC, and the expiry of pending requests is evaluated at
// query time rather than by a background sweep.
type ServiceRequestRepo struct {
	db *sql.DB
}

// NewServiceRequestRepo returns a repo bound to the given database.
func NewServiceRequestRepo(db *sql.DB) *ServiceRequestRepo { return &ServiceRequestRepo{db: db} }

const requestColumns = `id, client_id, appliance_id, description, client_price_cents,
       technician_price_cents, status, technician_id, created_at, expires_at,
       accepted_at, scheduled_at, completed_at, cancelled_at, version`

// scanRequest reads one row laid out as requestColumns into a model value.
func scanRequest(row interface {
	Scan(dest ...interface{}) error
}) (model.ServiceRequest, error) {
	var (
		req       model.ServiceRequest
		techPrice sql.NullInt64
		techID    sql.NullInt64
		expires   sql.NullTime
		accepted  sql.NullTime
		scheduled sql.NullTime
		completed sql.NullTime
		cancelled sql.NullTime
	)
	err := row.Scan(
		&req.ID, &req.ClientID, &req.ApplianceID, &req.Description, &req.ClientPriceCents,
		&techPrice, &req.Status, &techID, &req.CreatedAt, &expires,
		&accepted, &scheduled, &completed, &cancelled, &req.Version,
	)
	if err != nil {
		return model.ServiceRequest{}, err
	}
	if techPrice.Valid {
		p := uint32(techPrice.Int64)
		req.TechnicianPriceCents = &p
	}
	if techID.Valid {
		t := uint64(techID.Int64)
		req.TechnicianID = &t
	}
	req.ExpiresAt = nullableTime(expires)
	req.AcceptedAt = nullableTime(accepted)
	req.ScheduledAt = nullableTime(scheduled)
	req.CompletedAt = nullableTime(completed)
	req.CancelledAt = nullableTime(cancelled)
	return req, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

// Insert persists a freshly created request and populates the generated ID.
// The caller supplies created_at and expires_at; version starts at zero.
func (r *ServiceRequestRepo) Insert(ctx context.Context, req *model.ServiceRequest) error {
	const q = `INSERT INTO service_requests
	           (client_id, appliance_id, description, client_price_cents, status, created_at, expires_at, version)
	           VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q,
		req.ClientID, req.ApplianceID, req.Description, req.ClientPriceCents,
		req.Status, req.CreatedAt, req.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	return nil
}

// FindByID returns a single request by id, with no status filtering.
// sql.ErrNoRows is returned when the id does not exist.
func (r *ServiceRequestRepo) FindByID(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM service_requests WHERE id = ?`
	return scanRequest(r.db.QueryRowContext(ctx, q, id))
}

// FindPending returns all requests that are still pending and whose expiry
// window has not passed at the supplied instant. This query is the only
// place expiry is enforced; expired rows simply drop out of the pool while
// remaining reachable through FindByID/FindByClient/FindByTechnician.
func (r *ServiceRequestRepo) FindPending(ctx context.Context, now time.Time) ([]model.ServiceRequest, error) {
	const q = `SELECT ` + requestColumns + `
	           FROM service_requests
	           WHERE status = ? AND expires_at IS NOT NULL AND expires_at > ?
	           ORDER BY created_at ASC`
	return r.queryRequests(ctx, q, model.StatusPending, now.UTC())
}

// FindByClient returns all requests created by the given client, newest
// first, regardless of status.
func (r *ServiceRequestRepo) FindByClient(ctx context.Context, clientID uint64) ([]model.ServiceRequest, error) {
	const q = `SELECT ` + requestColumns + `
	           FROM service_requests WHERE client_id = ? ORDER BY created_at DESC`
	return r.queryRequests(ctx, q, clientID)
}

// FindByTechnician returns all requests associated with the given
// technician, newest first, regardless of status.
func (r *ServiceRequestRepo) FindByTechnician(ctx context.Context, technicianID uint64) ([]model.ServiceRequest, error) {
	const q = `SELECT ` + requestColumns + `
	           FROM service_requests WHERE technician_id = ? ORDER BY created_at DESC`
	return r.queryRequests(ctx, q, technicianID)
}

func (r *ServiceRequestRepo) queryRequests(ctx context.Context, q string, args ...interface{}) ([]model.ServiceRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ServiceRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTransition writes the mutable lifecycle fields of req guarded by an
// optimistic version check. The UPDATE only matches when the row still
// carries expectedVersion, so two callers racing on the same request cannot
// both win: the first write bumps the version and the second affects zero
// rows, reported here as swapped=false. On success req.Version reflects the
// stored value.
func (r *ServiceRequestRepo) ApplyTransition(ctx context.Context, req *model.ServiceRequest, expectedVersion uint64) (bool, error) {
	const q = `UPDATE service_requests
	           SET status = ?, technician_id = ?, technician_price_cents = ?,
	               accepted_at = ?, scheduled_at = ?, completed_at = ?, cancelled_at = ?,
	               version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q,
		req.Status, req.TechnicianID, req.TechnicianPriceCents,
		req.AcceptedAt, req.ScheduledAt, req.CompletedAt, req.CancelledAt,
		req.ID, expectedVersion)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	req.Version = expectedVersion + 1
	return true, nil
}
