package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/logger"
	"bloodbridge-backend/internal/repository"
)

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) repository.RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, requester_name, requester_email, recipient_name, blood_group, recipient_district, recipient_upazila, hospital_name, full_address, donation_date, donation_time, request_message, status, COALESCE(donor_name, ''), COALESCE(donor_email, ''), created_on, updated_on`

func scanRequest(row interface{ Scan(...any) error }) (*domain.DonationRequest, error) {
	dr := &domain.DonationRequest{}
	var createdOn, updatedOn time.Time
	err := row.Scan(&dr.ID, &dr.RequesterName, &dr.RequesterEmail, &dr.RecipientName, &dr.BloodGroup,
		&dr.RecipientDistrict, &dr.RecipientUpazila, &dr.HospitalName, &dr.FullAddress,
		&dr.DonationDate, &dr.DonationTime, &dr.RequestMessage, &dr.Status,
		&dr.DonorName, &dr.DonorEmail, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	dr.CreatedOn = createdOn.Format(time.RFC3339)
	dr.UpdatedOn = updatedOn.Format(time.RFC3339)
	return dr, nil
}

func (r *requestRepository) Create(ctx context.Context, dr *domain.DonationRequest) error {
	query := `INSERT INTO donation_requests (requester_name, requester_email, recipient_name, blood_group, recipient_district, recipient_upazila, hospital_name, full_address, donation_date, donation_time, request_message, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, dr.RequesterName, dr.RequesterEmail, dr.RecipientName, dr.BloodGroup,
		dr.RecipientDistrict, dr.RecipientUpazila, dr.HospitalName, dr.FullAddress,
		dr.DonationDate, dr.DonationTime, dr.RequestMessage, dr.Status, now, now).Scan(&dr.ID)
	if err != nil {
		return domain.Transientf("insert donation request: %v", err)
	}
	dr.CreatedOn = now.Format(time.RFC3339)
	dr.UpdatedOn = now.Format(time.RFC3339)
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests WHERE id = $1`
	dr, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Transientf("get donation request: %v", err)
	}
	return dr, nil
}

// UpdateFields rewrites the editable fields, keyed on the stored status still
// being pending so a concurrent assignment wins over a stale edit.
func (r *requestRepository) UpdateFields(ctx context.Context, dr *domain.DonationRequest) error {
	query := `UPDATE donation_requests
	          SET recipient_name=$1, blood_group=$2, recipient_district=$3, recipient_upazila=$4, hospital_name=$5, full_address=$6, donation_date=$7, donation_time=$8, request_message=$9, updated_on=$10
	          WHERE id=$11 AND status=$12`
	res, err := r.db.ExecContext(ctx, query, dr.RecipientName, dr.BloodGroup, dr.RecipientDistrict, dr.RecipientUpazila,
		dr.HospitalName, dr.FullAddress, dr.DonationDate, dr.DonationTime, dr.RequestMessage, time.Now(),
		dr.ID, domain.RequestStatusPending)
	if err != nil {
		return domain.Transientf("update donation request: %v", err)
	}
	return r.resolveNoRows(ctx, res, dr.ID)
}

// Transition is the only writer of status and donor fields. The WHERE clause
// carries the expected prior status; a concurrent writer that got there first
// leaves zero rows affected and the caller sees ErrInvalidState.
func (r *requestRepository) Transition(ctx context.Context, id int64, from, to domain.RequestStatus, donorName, donorEmail string) error {
	logger.DatabaseCall("UPDATE", "donation_requests.status", "id", id, "from", from, "to", to)

	var res sql.Result
	var err error
	if donorName != "" || donorEmail != "" {
		query := `UPDATE donation_requests SET status=$1, donor_name=$2, donor_email=$3, updated_on=$4 WHERE id=$5 AND status=$6`
		res, err = r.db.ExecContext(ctx, query, to, donorName, donorEmail, time.Now(), id, from)
	} else {
		query := `UPDATE donation_requests SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`
		res, err = r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	}
	if err != nil {
		return domain.Transientf("transition donation request: %v", err)
	}
	return r.resolveNoRows(ctx, res, id)
}

// resolveNoRows distinguishes a missing row from a failed status
// precondition after a conditional write touched nothing.
func (r *requestRepository) resolveNoRows(ctx context.Context, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Transientf("rows affected: %v", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM donation_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return domain.Transientf("check donation request: %v", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidState
}

func (r *requestRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM donation_requests WHERE id = $1`, id)
	if err != nil {
		return domain.Transientf("delete donation request: %v", err)
	}
	return requireRow(res)
}

func (r *requestRepository) ListAll(ctx context.Context, status domain.RequestStatus, search string) ([]domain.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests`
	var args []any
	var where []string
	idx := 1
	if status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, status)
		idx++
	}
	if search != "" {
		where = append(where, fmt.Sprintf("(requester_name ILIKE $%d OR recipient_name ILIKE $%d OR requester_email ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+search+"%")
		idx++
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY id"
	return r.queryRequests(ctx, query, args...)
}

func (r *requestRepository) ListByRequester(ctx context.Context, email string) ([]domain.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests WHERE LOWER(requester_email) = LOWER($1) ORDER BY id`
	return r.queryRequests(ctx, query, email)
}

func (r *requestRepository) ListPending(ctx context.Context, limit int) ([]domain.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests WHERE status = $1 ORDER BY id LIMIT $2`
	return r.queryRequests(ctx, query, domain.RequestStatusPending, limit)
}

func (r *requestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM donation_requests GROUP BY status`)
	if err != nil {
		return nil, domain.Transientf("count donation requests: %v", err)
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int64)
	for rows.Next() {
		var status domain.RequestStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.Transientf("scan counts: %v", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Transientf("count donation requests: %v", err)
	}
	return counts, nil
}

func (r *requestRepository) ListStalePending(ctx context.Context, beforeDate string) ([]domain.DonationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM donation_requests WHERE status = $1 AND donation_date < $2 ORDER BY id`
	return r.queryRequests(ctx, query, domain.RequestStatusPending, beforeDate)
}

func (r *requestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]domain.DonationRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Transientf("list donation requests: %v", err)
	}
	defer rows.Close()

	var out []domain.DonationRequest
	for rows.Next() {
		dr, err := scanRequest(rows)
		if err != nil {
			return nil, domain.Transientf("scan donation request: %v", err)
		}
		out = append(out, *dr)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Transientf("list donation requests: %v", err)
	}
	return out, nil
}
