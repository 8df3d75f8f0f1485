package domain

import "time"

// Role clasifica el nivel de acceso de un usuario.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Plan identifica el nivel de suscripcion del usuario.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// User representa la identidad autenticada tal como la expone la API.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Company       string    `json:"company,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Role          Role      `json:"role"`
	Plan          Plan      `json:"plan"`
	UsageLimit    int       `json:"usageLimit"`
	UsageCount    int       `json:"usageCount"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DisplayName devuelve el nombre presentable del usuario.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// IsAdmin indica si el usuario tiene rol de administrador.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserPatch contiene campos opcionales para actualizaciones parciales.
// Un puntero nil deja el campo original intacto.
type UserPatch struct {
	FirstName     *string
	LastName      *string
	Company       *string
	Bio           *string
	Plan          *Plan
	UsageLimit    *int
	UsageCount    *int
	EmailVerified *bool
}

// Apply mezcla los campos presentes del patch sobre el usuario.
func (p UserPatch) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Company != nil {
		u.Company = *p.Company
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Plan != nil {
		u.Plan = *p.Plan
	}
	if p.UsageLimit != nil {
		u.UsageLimit = *p.UsageLimit
	}
	if p.UsageCount != nil {
		u.UsageCount = *p.UsageCount
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	u.UpdatedAt = time.Now().UTC()
	return u
}

// Session agrupa el usuario autenticado con su credencial bearer.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
