package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/admVeloHub/front-console-sub000/internal/dto"
	"github.com/admVeloHub/front-console-sub000/internal/permission"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
	"github.com/admVeloHub/front-console-sub000/pkg/jwt"
)

var (
	ErrUserInactive = errors.New("usuário desativado")
)

// AuthService 认证业务接口
//
// 令牌中的权限完全来自数据库中存储的用户权限。
type AuthService interface {
	IssueToken(ctx context.Context, email string) (*dto.TokenResponse, error)
	Bootstrap(ctx context.Context, email, name string, permissions []string) (*dto.TokenResponse, error)
	Me(claims *jwt.Claims) *dto.MeResponse
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, logger: logger}
}

func (s *authService) IssueToken(ctx context.Context, email string) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	// 2. 只保留合法的权限键
	perms := permission.FromTrusted(user.Permissions)

	// 3. 签发 Token
	token, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Email, perms.Strings())
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("签发访问令牌", zap.String("user_id", user.UserID))
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

// Bootstrap 登记用户并立即签发令牌，用于空库时创建首个管理员
//
// 权限键必须全部已登记；邮箱已存在时返回 ErrEmailExists，不覆盖原有权限。
func (s *authService) Bootstrap(ctx context.Context, email, name string, permissions []string) (*dto.TokenResponse, error) {
	perms, err := permission.ParseList(permissions)
	if err != nil {
		return nil, err
	}

	users := &userService{repo: s.repo, logger: s.logger}
	created, err := users.CreateUser(ctx, &dto.CreateUserRequest{
		Email:       email,
		Name:        name,
		Permissions: perms.Map(),
	}, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("初始用户已登记", zap.String("user_id", created.ID), zap.Strings("permissions", perms.Strings()))
	return s.IssueToken(ctx, created.Email)
}

func (s *authService) Me(claims *jwt.Claims) *dto.MeResponse {
	return &dto.MeResponse{
		ID:          claims.UserID,
		Email:       claims.Email,
		Permissions: permission.FromTrusted(claims.Permissions).Map(),
	}
}
