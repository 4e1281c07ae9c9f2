package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email       string          `json:"email"       binding:"required,email"`
	Name        string          `json:"name"        binding:"required,min=2,max=120"`
	Permissions map[string]bool `json:"permissions"`
}

// UpdatePermissionsRequest 更新权限请求，未出现的键视为 false
type UpdatePermissionsRequest struct {
	Permissions map[string]bool `json:"permissions" binding:"required"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions"`
	Active      bool            `json:"active"`
	CreatedAt   string          `json:"createdAt"`
}
