// token 为已登记的用户签发访问令牌，用于运维与接口联调。
// 加 -create 时先登记用户，空库时用它创建首个管理员。
//
//	go run ./cmd/token -email ana@velotax.com.br
//	go run ./cmd/token -create -email admin@velotax.com.br -name Admin -permissions usuarios,capacity
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/admVeloHub/front-console-sub000/config"
	"github.com/admVeloHub/front-console-sub000/internal/dto"
	"github.com/admVeloHub/front-console-sub000/internal/permission"
	"github.com/admVeloHub/front-console-sub000/internal/repository"
	"github.com/admVeloHub/front-console-sub000/internal/service"
	"github.com/admVeloHub/front-console-sub000/pkg/database"
	"github.com/admVeloHub/front-console-sub000/pkg/jwt"
	applogger "github.com/admVeloHub/front-console-sub000/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	email := flag.String("email", "", "用户邮箱")
	create := flag.Bool("create", false, "先登记用户再签发")
	name := flag.String("name", "", "用户姓名（-create 时必填）")
	perms := flag.String("permissions", string(permission.Usuarios), "逗号分隔的权限键（-create 时使用）")
	flag.Parse()

	if *email == "" || (*create && strings.TrimSpace(*name) == "") {
		fmt.Fprintln(os.Stderr, "uso: token -email <e-mail> [-create -name <nome> -permissions <chaves>] [-config <arquivo>]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log, "velohub-token")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()

	// 只需要用户表，文档库集合留空
	repo := repository.NewRepository(db, nil, nil)
	authSvc := service.NewAuthService(repo, jwt.NewManager(&cfg.Auth), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var token *dto.TokenResponse
	if *create {
		token, err = authSvc.Bootstrap(ctx, *email, *name, splitList(*perms))
	} else {
		token, err = authSvc.IssueToken(ctx, *email)
	}
	if err != nil {
		logger.Error("签发令牌失败", zap.String("email", *email), zap.Error(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(token); err != nil {
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
