package models

// UserRole: роль аккаунта из JWT. Сами аккаунты живут во внешнем сервисе.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Account string   `json:"account"`
	Role    UserRole `json:"role"`
}
