package businesses

import "time"

// Role — отношение пользователя к бизнесу. Owner не хранится в membership,
// он вычисляется по businesses.owner_id.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAccountant Role = "accountant"
	RoleStaff      Role = "staff"
	RoleNone       Role = ""
)

// MemberRole проверяет, что роль допустима для membership-записи
// (владельцем через membership стать нельзя).
func MemberRole(r Role) bool {
	return r == RoleAccountant || r == RoleStaff
}

type Business struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	ID         int64  `json:"id"`
	BusinessID int64  `json:"business_id"`
	UserID     int64  `json:"user_id"`
	Username   string `json:"username,omitempty"`
	Role       Role   `json:"role"`
}

// BusinessWithRole — бизнес вместе с ролью конкретного пользователя,
// для списка "мои бизнесы".
type BusinessWithRole struct {
	Business
	Role Role `json:"role"`
}
