package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kazi/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Manager (branch-level supervision)
	RoleManager = "manager:"

	// Agent (field rep)
	RoleAgent = "agent:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	ManagerRoles = []string{RoleManager}
	AgentRoles   = []string{RoleAgent}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Managers: 20 - 11
		RoleManager: 11,

		// Agents: 10 - 1
		RoleAgent: 1,
	}

	Roles = []Role{
		{Name: "Agent", Value: RoleAgent},
		{Name: "Manager", Value: RoleManager},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 4)
	all = append(all, AdminRoles...)
	all = append(all, ManagerRoles...)
	all = append(all, AgentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID            int          `json:"id" db:"id"`
	OrgID         int          `json:"org_id" db:"org_id"`
	BranchID      null.Int     `json:"branch_id,omitempty" db:"branch_id"`
	Name          string       `json:"name" db:"name"`
	Username      string       `json:"username" db:"username"`
	Email         string       `json:"email" db:"email"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	Roles         []string     `json:"roles" db:"-"` // text[]; scanned via pq.Array
	PasswordHash  []byte       `json:"-" db:"password_hash"`
	MonthlyTarget null.Float64 `json:"monthly_target,omitempty" db:"monthly_target"` // sales target
	LastLogin     time.Time    `json:"last_login" db:"last_login"`                   // UTC
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`                   // UTC
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`                   // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool   { return u.RoleStartsWith(RoleAdmin) }
func (u *User) IsManager() bool { return u.RoleStartsWith(RoleManager) }
func (u *User) IsAgent() bool   { return u.RoleStartsWith(RoleAgent) }

// NewUser contains information needed to create a new User.
type NewUser struct {
	OrgID           int          `json:"-"`
	BranchID        null.Int     `json:"branch_id"`
	Name            string       `json:"name" validate:"required"`
	Username        string       `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string       `json:"email" validate:"required,email"`
	Password        string       `json:"password" validate:"required,min=8"`
	PasswordConfirm string       `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string     `json:"roles" validate:"omitempty,allroles"`
	MonthlyTarget   null.Float64 `json:"monthly_target" validate:"omitempty,min=0"`
}

func (nu *NewUser) Validate(svc ServiceInterface) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	BranchID        null.Int     `json:"branch_id"`
	Name            string       `json:"name"`
	Username        string       `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string       `json:"email" validate:"omitempty,email"`
	IsActive        *bool        `json:"is_active"`
	Roles           []string     `json:"roles" validate:"omitempty,allroles"`
	MonthlyTarget   null.Float64 `json:"monthly_target" validate:"omitempty,min=0"`
	Password        string       `json:"password" validate:"omitempty,min=8"`
	PasswordConfirm string       `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, svc ServiceInterface) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Roles == nil {
		uu.Roles = origUsr.Roles
	}
	if !uu.BranchID.Valid {
		uu.BranchID = origUsr.BranchID
	}
	if !uu.MonthlyTarget.Valid {
		uu.MonthlyTarget = origUsr.MonthlyTarget
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	OrgID       int       `query:"-"`
	BranchID    null.Int  `query:"branch_id"`
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil &&
		!qf.BranchID.Valid && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
