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

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `email, name, blood_group, district, upazila, role, status, COALESCE(avatar_url, ''), created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var createdOn, updatedOn time.Time
	err := row.Scan(&u.Email, &u.Name, &u.BloodGroup, &u.District, &u.Upazila, &u.Role, &u.Status, &u.AvatarURL, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	u.CreatedOn = createdOn.Format("2006-01-02")
	u.UpdatedOn = updatedOn.Format("2006-01-02")
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, name, blood_group, district, upazila, role, status, avatar_url, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query, u.Email, u.Name, u.BloodGroup, u.District, u.Upazila, u.Role, u.Status, u.AvatarURL, now, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.Validationf("an account already exists for %s", u.Email)
		}
		return domain.Transientf("insert user: %v", err)
	}
	u.CreatedOn = now.Format("2006-01-02")
	u.UpdatedOn = now.Format("2006-01-02")
	return nil
}

func (r *userRepository) CreateIfAbsent(ctx context.Context, u *domain.User) (bool, error) {
	query := `INSERT INTO users (email, name, blood_group, district, upazila, role, status, avatar_url, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (email) DO NOTHING`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, u.Email, u.Name, u.BloodGroup, u.District, u.Upazila, u.Role, u.Status, u.AvatarURL, now, now)
	if err != nil {
		return false, domain.Transientf("insert user: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.Transientf("insert user: %v", err)
	}
	return n == 1, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Transientf("get user: %v", err)
	}
	return u, nil
}

func (r *userRepository) GetRoleStatus(ctx context.Context, email string) (*domain.RoleStatus, error) {
	rs := &domain.RoleStatus{}
	query := `SELECT role, status FROM users WHERE LOWER(email) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&rs.Role, &rs.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Transientf("get role/status: %v", err)
	}
	return rs, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_on, email`
	return r.queryUsers(ctx, query)
}

func (r *userRepository) SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND status = $2`
	args := []any{domain.RoleDonor, domain.AccountStatusActive}
	idx := 3
	if bloodGroup != "" {
		query += fmt.Sprintf(" AND blood_group = $%d", idx)
		args = append(args, bloodGroup)
		idx++
	}
	if district != "" {
		query += fmt.Sprintf(" AND district ILIKE $%d", idx)
		args = append(args, district)
		idx++
	}
	if upazila != "" {
		query += fmt.Sprintf(" AND upazila ILIKE $%d", idx)
		args = append(args, upazila)
		idx++
	}
	query += " ORDER BY created_on, email"
	return r.queryUsers(ctx, query, args...)
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Transientf("list users: %v", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.Transientf("scan user: %v", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Transientf("list users: %v", err)
	}
	return users, nil
}

// UpdateProfile rewrites the self-service fields only. Email, role and
// status are untouchable through this path.
func (r *userRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, blood_group=$2, district=$3, upazila=$4, avatar_url=$5, updated_on=$6 WHERE LOWER(email) = LOWER($7)`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.BloodGroup, u.District, u.Upazila, u.AvatarURL, time.Now(), u.Email)
	if err != nil {
		return domain.Transientf("update profile: %v", err)
	}
	return requireRow(res)
}

func (r *userRepository) UpdateStatus(ctx context.Context, email string, status domain.AccountStatus) error {
	logger.DatabaseCall("UPDATE", "users.status", "email", email, "status", status)
	query := `UPDATE users SET status=$1, updated_on=$2 WHERE LOWER(email) = LOWER($3)`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), email)
	if err != nil {
		return domain.Transientf("update status: %v", err)
	}
	return requireRow(res)
}

func (r *userRepository) UpdateRole(ctx context.Context, email string, role domain.Role) error {
	logger.DatabaseCall("UPDATE", "users.role", "email", email, "role", role)
	query := `UPDATE users SET role=$1, updated_on=$2 WHERE LOWER(email) = LOWER($3)`
	res, err := r.db.ExecContext(ctx, query, role, time.Now(), email)
	if err != nil {
		return domain.Transientf("update role: %v", err)
	}
	return requireRow(res)
}

func (r *userRepository) ListBlockedEmails(ctx context.Context) ([]string, error) {
	query := `SELECT email FROM users WHERE status = $1`
	rows, err := r.db.QueryContext(ctx, query, domain.AccountStatusBlocked)
	if err != nil {
		return nil, domain.Transientf("list blocked: %v", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, domain.Transientf("scan blocked: %v", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Transientf("list blocked: %v", err)
	}
	return emails, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, domain.Transientf("count users: %v", err)
	}
	return count, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Transientf("rows affected: %v", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
