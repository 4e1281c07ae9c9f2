package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/admVeloHub/front-console-sub000/internal/dto"
	"github.com/admVeloHub/front-console-sub000/internal/model"
	"github.com/admVeloHub/front-console-sub000/internal/permission"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound   = errors.New("usuário não encontrado")
	ErrEmailExists    = errors.New("e-mail já cadastrado")
	ErrUserSelfDelete = errors.New("não é possível excluir o próprio usuário")
	ErrSelfLockout    = errors.New("não é possível remover a própria permissão de usuários")
)

// UserService 用户业务接口
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	UpdatePermissions(ctx context.Context, id string, req *dto.UpdatePermissionsRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	perms, err := permission.ParseMap(req.Permissions)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Email:       email,
		Name:        strings.TrimSpace(req.Name),
		Permissions: model.StringArray(perms.Strings()),
		Active:      true,
	}
	if callerID != "" {
		user.CreatedBy = &callerID
		user.UpdatedBy = &callerID
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户已创建",
		zap.String("user_id", user.UserID),
		zap.String("created_by", callerID),
		zap.Strings("permissions", perms.Strings()),
	)
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── 权限 ──────────────────────

func (s *userService) UpdatePermissions(ctx context.Context, id string, req *dto.UpdatePermissionsRequest, callerID string) (*dto.UserResponse, error) {
	perms, err := permission.ParseMap(req.Permissions)
	if err != nil {
		return nil, err
	}
	if id == callerID && !perms.Has(permission.Usuarios) {
		return nil, ErrSelfLockout
	}

	if err := s.repo.User.UpdatePermissions(ctx, id, perms.Strings(), callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("更新权限失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户权限已更新",
		zap.String("user_id", id),
		zap.String("updated_by", callerID),
		zap.Strings("permissions", perms.Strings()),
	)
	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("用户已删除", zap.String("user_id", id), zap.String("deleted_by", callerID))
	return nil
}

// ── 辅助函数 ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.UserID,
		Email:       u.Email,
		Name:        u.Name,
		Permissions: permission.FromTrusted(u.Permissions).Map(),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
