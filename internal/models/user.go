package models

import "time"

// AccountState — производное состояние аккаунта из флагов.
type AccountState string

const (
	AccountPending  AccountState = "pending"
	AccountActive   AccountState = "active"
	AccountEligible AccountState = "eligible"
	AccountRejected AccountState = "rejected"
)

type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // не отдаём наружу
	StudentID    int64  `json:"student_id"`

	Username     string     `json:"username,omitempty"`
	FullName     string     `json:"full_name,omitempty"`
	NameFather   string     `json:"name_father,omitempty"`
	NameMother   string     `json:"name_mother,omitempty"`
	MobileNumber string     `json:"mobile_number,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	BloodGroup   string     `json:"blood_group,omitempty"`
	Session      string     `json:"session"`
	PassedYear   string     `json:"passed_year,omitempty"`
	CGPA         *float64   `json:"cgpa,omitempty"`

	RoleID       *int `json:"role,omitempty"`
	DepartmentID *int `json:"department,omitempty"`
	GenderID     *int `json:"gender,omitempty"`

	// заполняется при чтении (JOIN roles)
	RoleName string `json:"role_name,omitempty"`

	IsActive   bool `json:"is_active"`
	IsEligible bool `json:"is_eligible"`
	IsRejected bool `json:"is_rejected"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

// State: rejected > eligible > active > pending.
func (u *User) State() AccountState {
	switch {
	case u.IsRejected:
		return AccountRejected
	case u.IsEligible:
		return AccountEligible
	case u.IsActive:
		return AccountActive
	default:
		return AccountPending
	}
}

// UserProfile — входные данные регистрации и self-service обновления.
// Указатели означают "поле передано" (partial update).
type UserProfile struct {
	Email        *string    `json:"email"`
	StudentID    *int64     `json:"student_id"`
	Username     *string    `json:"username"`
	FullName     *string    `json:"full_name"`
	NameFather   *string    `json:"name_father"`
	NameMother   *string    `json:"name_mother"`
	MobileNumber *string    `json:"mobile_number"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	BloodGroup   *string    `json:"blood_group"`
	Session      *string    `json:"session"`
	PassedYear   *string    `json:"passed_year"`
	CGPA         *float64   `json:"cgpa"`
	Role         *int       `json:"role"`
	Department   *int       `json:"department"`
	Gender       *int       `json:"gender"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserRequestFilter — фильтр списка заявок на аккаунт (admin).
type UserRequestFilter struct {
	Status    string // all | pending | verified | rejected
	RoleNames []string
	StudentID *int64
}
