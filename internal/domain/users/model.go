package users

import "time"

// User — учётная запись. Аутентификацию выполняет внешний identity-провайдер,
// здесь храним только идентификатор и имя для membership-связей.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
