//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/admVeloHub/front-console-sub000/internal/model"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=velohub password=velohub_password dbname=velohub_test sslmode=disable TimeZone=America/Sao_Paulo"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.User{}, &model.CapacityParameters{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func createTestUser(t *testing.T) (*model.User, func()) {
	t.Helper()
	user := &model.User{
		Email:       fmt.Sprintf("Teste%d@velotax.com.br", time.Now().UnixNano()),
		Name:        "Usuário de Teste",
		Permissions: model.StringArray{"capacity"},
		Active:      true,
	}
	if err := testDB.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user, func() {
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})
	}
}

// ═══════════════════════════════════════════════════════════
// Users
// ═══════════════════════════════════════════════════════════

func TestUserRepo_GetByEmailCaseInsensitive(t *testing.T) {
	user, cleanup := createTestUser(t)
	defer cleanup()

	repo := repository.NewUserRepo(testDB)
	found, err := repo.GetByEmail(context.Background(), "  "+user.Email+" ")
	if err != nil {
		t.Fatalf("按邮箱查询失败: %v", err)
	}
	if found.UserID != user.UserID {
		t.Errorf("ID 不匹配: expected %s, got %s", user.UserID, found.UserID)
	}
	if len(found.Permissions) != 1 || found.Permissions[0] != "capacity" {
		t.Errorf("权限读取错误: %v", found.Permissions)
	}
}

func TestUserRepo_UpdatePermissionsAndDelete(t *testing.T) {
	user, cleanup := createTestUser(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewUserRepo(testDB)

	if err := repo.UpdatePermissions(ctx, user.UserID, []string{"capacity", "usuarios"}, user.UserID); err != nil {
		t.Fatalf("更新权限失败: %v", err)
	}
	found, _ := repo.GetByID(ctx, user.UserID)
	if len(found.Permissions) != 2 {
		t.Errorf("期望 2 个权限，实际 %v", found.Permissions)
	}

	if err := repo.Delete(ctx, user.UserID, user.UserID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := repo.GetByID(ctx, user.UserID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("软删除后应查不到用户，err=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Capacity parameters
// ═══════════════════════════════════════════════════════════

func TestCapacityParameterRepo_Upsert(t *testing.T) {
	user, cleanup := createTestUser(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewCapacityParameterRepo(testDB)

	if _, err := repo.GetByOwner(ctx, user.UserID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("新用户不应有参数，err=%v", err)
	}

	p := &model.CapacityParameters{OwnerID: user.UserID, WeekdaysHoursWorked: 8, WeekdaysSafeCapacity: 11.25}
	if err := repo.Upsert(ctx, p); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	p.WeekdaysHoursWorked = 9
	if err := repo.Upsert(ctx, p); err != nil {
		t.Fatalf("覆盖写入失败: %v", err)
	}

	found, err := repo.GetByOwner(ctx, user.UserID)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if found.WeekdaysHoursWorked != 9 {
		t.Errorf("期望 9，实际 %v", found.WeekdaysHoursWorked)
	}
}
