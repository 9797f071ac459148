package model

// Коды ролей в системе. Роль определяет, какие операции доступны
// вызывающему; сам движок ролями не занимается, их читает транспорт.
const (
	RoleClient = "Client"
	RoleMaster = "Master"
)

// roles
type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex"`
}
