package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"autodocs/internal/models"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	u.id, u.email, u.password_hash, u.student_id,
	COALESCE(u.username,''), COALESCE(u.full_name,''), COALESCE(u.name_father,''), COALESCE(u.name_mother,''),
	COALESCE(u.mobile_number,''), u.date_of_birth, COALESCE(u.blood_group,''), u.session,
	COALESCE(u.passed_year,''), u.cgpa,
	u.role_id, u.department_id, u.gender_id, COALESCE(r.name,''),
	u.is_active, u.is_eligible, u.is_rejected, u.created_at, u.updated_at,
	u.refresh_token, u.refresh_expires_at, u.refresh_revoked`

const userFrom = `FROM users u LEFT JOIN roles r ON r.id = u.role_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		dob    sql.NullTime
		cgpa   sql.NullFloat64
		roleID sql.NullInt64
		deptID sql.NullInt64
		gendID sql.NullInt64
		rt     sql.NullString
		rte    sql.NullTime
		rr     sql.NullBool
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.StudentID,
		&u.Username, &u.FullName, &u.NameFather, &u.NameMother,
		&u.MobileNumber, &dob, &u.BloodGroup, &u.Session,
		&u.PassedYear, &cgpa,
		&roleID, &deptID, &gendID, &u.RoleName,
		&u.IsActive, &u.IsEligible, &u.IsRejected, &u.CreatedAt, &u.UpdatedAt,
		&rt, &rte, &rr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if dob.Valid {
		t := dob.Time
		u.DateOfBirth = &t
	}
	if cgpa.Valid {
		v := cgpa.Float64
		u.CGPA = &v
	}
	u.RoleID = intPtr(roleID)
	u.DepartmentID = intPtr(deptID)
	u.GenderID = intPtr(gendID)
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (
			email, password_hash, student_id,
			username, full_name, name_father, name_mother,
			mobile_number, date_of_birth, blood_group, session, passed_year, cgpa,
			role_id, department_id, gender_id,
			is_active, is_eligible, is_rejected
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.Email, user.PasswordHash, user.StudentID,
		nullString(user.Username), nullString(user.FullName), nullString(user.NameFather), nullString(user.NameMother),
		nullString(user.MobileNumber), user.DateOfBirth, nullString(user.BloodGroup), user.Session,
		nullString(user.PassedYear), user.CGPA,
		user.RoleID, user.DepartmentID, user.GenderID,
		user.IsActive, user.IsEligible, user.IsRejected,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", mapPQError(err))
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	q := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE ` + where
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, `u.id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `u.email = $1`, email)
}

func (r *userRepository) GetByStudentID(ctx context.Context, studentID int64) (*models.User, error) {
	return r.getOne(ctx, `u.student_id = $1`, studentID)
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, `u.refresh_token = $1`, token)
}

func (r *userRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	return ok, err
}

func (r *userRepository) ExistsStudentID(ctx context.Context, studentID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE student_id = $1)`, studentID).Scan(&ok)
	return ok, err
}

// Update — профиль и пароль; флаги меняются только через UpdateFlags / активацию.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	const q = `
		UPDATE users
		SET
			email=$1, password_hash=$2, student_id=$3,
			username=$4, full_name=$5, name_father=$6, name_mother=$7,
			mobile_number=$8, date_of_birth=$9, blood_group=$10, session=$11,
			passed_year=$12, cgpa=$13,
			role_id=$14, department_id=$15, gender_id=$16,
			updated_at=NOW()
		WHERE id=$17
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.Email, user.PasswordHash, user.StudentID,
		nullString(user.Username), nullString(user.FullName), nullString(user.NameFather), nullString(user.NameMother),
		nullString(user.MobileNumber), user.DateOfBirth, nullString(user.BloodGroup), user.Session,
		nullString(user.PassedYear), user.CGPA,
		user.RoleID, user.DepartmentID, user.GenderID,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("user update: %w", mapPQError(err))
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("user delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateFlags(ctx context.Context, studentID int64, fn func(u *models.User) error) (*models.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("user flags begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE u.student_id = $1 FOR UPDATE OF u`
	u, err := scanUser(tx.QueryRowContext(ctx, q, studentID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("user flags select: %w", err)
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	err = tx.QueryRowContext(ctx, `
		UPDATE users SET is_eligible=$1, is_rejected=$2, updated_at=NOW()
		WHERE id=$3
		RETURNING updated_at
	`, u.IsEligible, u.IsRejected, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("user flags update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("user flags commit: %w", err)
	}
	return u, nil
}

func (r *userRepository) ListRequests(ctx context.Context, f models.UserRequestFilter) ([]*models.User, error) {
	var (
		conds []string
		args  []any
	)
	switch f.Status {
	case "pending":
		conds = append(conds, "u.is_active = FALSE AND u.is_rejected = FALSE")
	case "verified":
		conds = append(conds, "u.is_active = TRUE")
	case "rejected":
		conds = append(conds, "u.is_rejected = TRUE")
	}
	if len(f.RoleNames) > 0 {
		args = append(args, pq.Array(f.RoleNames))
		conds = append(conds, fmt.Sprintf("r.name = ANY($%d)", len(args)))
	}
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		conds = append(conds, fmt.Sprintf("u.student_id = $%d", len(args)))
	}

	q := `SELECT ` + userColumns + ` ` + userFrom
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY u.id`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("user list requests: %w", err)
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user list scan: %w", err)
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) CountByRole(ctx context.Context, roleName string) (int, error) {
	var c int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users u JOIN roles r ON r.id = u.role_id WHERE r.name = $1
	`, roleName).Scan(&c)
	return c, err
}

// ===== refresh helpers =====

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	_, err := r.DB.ExecContext(ctx, q, token, expiresAt, userID)
	return err
}

func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	var id int
	err := r.DB.QueryRowContext(ctx, `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3
		RETURNING id
	`, newToken, newExpiresAt, oldToken).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user rotate refresh: %w", err)
	}
	return r.GetByID(ctx, id)
}
