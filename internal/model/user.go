package model

// User 控制台用户 — 对应 users
//
// 权限只来自这里存储的 Permissions，不对任何身份做特殊处理。
type User struct {
	UserID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"userId"`
	Email       string      `gorm:"type:varchar(255);not null"                     json:"email"`
	Name        string      `gorm:"type:varchar(120);not null"                     json:"name"`
	Permissions StringArray `gorm:"type:text[];not null;default:'{}'"              json:"permissions"`
	Active      bool        `gorm:"not null;default:true"                          json:"active"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
