// internal/domain/auth/entity.go
package auth

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBusiness Role = "business"
	RoleCustomer Role = "customer"
)

// User is a platform account. Merchant quota fields are only meaningful for RoleBusiness.
type User struct {
	ID                 int64      `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	FullName           string     `json:"full_name" db:"full_name"`
	Phone              *string    `json:"phone,omitempty" db:"phone"`
	Role               Role       `json:"role" db:"role"`
	BusinessName       *string    `json:"business_name,omitempty" db:"business_name"`
	SubscriptionPlan   *string    `json:"subscription_plan,omitempty" db:"subscription_plan"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty" db:"subscription_expiry"`
	OfferLimit         int        `json:"offer_limit" db:"offer_limit"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsMerchant() bool { return u.Role == RoleBusiness }

// DefaultOfferLimit is granted to merchants without an active plan.
const DefaultOfferLimit = 3

// Principal is the authenticated caller as seen by services.
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanAccess reports whether the caller may read a resource owned by ownerID.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
