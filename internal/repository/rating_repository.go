package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/myhometech/backend/internal/model"
)

// RatingRepo provides access to the ratings table. The table carries a
// unique index on request_id so a request can only ever be rated once.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Create inserts a rating. ErrAlreadyRated is returned when the request
// already has one (MySQL duplicate-key error 1062 on the request_id index).
func (r *RatingRepo) Create(ctx context.Context, rating *model.Rating) error {
	const q = `INSERT INTO ratings (request_id, client_id, technician_id, score, comment) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rating.RequestID, rating.ClientID, rating.TechnicianID, rating.Score, rating.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyRated
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rating.ID = uint64(id)
	const sel = `SELECT id, request_id, client_id, technician_id, score, comment, created_at FROM ratings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, rating.ID).Scan(
		&rating.ID, &rating.RequestID, &rating.ClientID, &rating.TechnicianID,
		&rating.Score, &rating.Comment, &rating.CreatedAt)
}

// ListByTechnician returns all ratings received by a technician, newest
// first, along with the average score across them. The average is zero
// when the technician has no ratings yet.
func (r *RatingRepo) ListByTechnician(ctx context.Context, technicianID uint64) ([]model.Rating, float64, error) {
	const q = `SELECT id, request_id, client_id, technician_id, score, comment, created_at
	           FROM ratings WHERE technician_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, technicianID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Rating, 0)
	var sum uint64
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.RequestID, &rt.ClientID, &rt.TechnicianID,
			&rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, 0, err
		}
		sum += uint64(rt.Score)
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	avg := 0.0
	if len(out) > 0 {
		avg = float64(sum) / float64(len(out))
	}
	return out, avg, nil
}
