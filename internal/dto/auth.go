package dto

// ── 认证模块 DTO ──

// TokenResponse 签发的访问令牌
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int          `json:"expiresIn"` // 秒
	User        UserResponse `json:"user"`
}

// MeResponse 当前会话信息（GET /auth/me）
type MeResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Permissions map[string]bool `json:"permissions"`
}
