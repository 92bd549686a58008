package identity

// Role роль пользователя в маркетплейсе
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
	RoleService  Role = "service" // внутренние сервисы (платежи)
)

// Principal аутентифицированный пользователь
type Principal struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}
