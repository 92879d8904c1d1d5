package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
	"github.com/krunal16-c/saskhack/internal/api/handler"
	"github.com/krunal16-c/saskhack/internal/api/middleware"
	"github.com/krunal16-c/saskhack/internal/api/router"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/database"
	"github.com/krunal16-c/saskhack/pkg/jwt"
	applogger "github.com/krunal16-c/saskhack/pkg/logger"
	"github.com/krunal16-c/saskhack/pkg/mailer"
	"github.com/krunal16-c/saskhack/pkg/messaging"
	"github.com/krunal16-c/saskhack/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Policy.Location().String()),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 可选依赖：连接失败时降级运行，不中断启动
	opts := service.Options{}
	var limiter middleware.RateLimiter

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，提交限流与通知去重将不可用", zap.Error(err))
		rdb = nil
	} else {
		limiter = rdb
		opts.Guard = rdb
	}

	var bus *messaging.Client
	if cfg.NATS.URL != "" {
		bus, err = messaging.NewClient(&cfg.NATS, logger)
		if err != nil {
			logger.Warn("NATS 连接失败，风险事件将不会发布", zap.Error(err))
			bus = nil
		} else {
			opts.Publisher = bus
		}
	}

	if m := mailer.NewSMTPMailer(&cfg.Mail, logger); m != nil {
		opts.Mailer = m
	} else {
		logger.Warn("未配置 SMTP，通知邮件不可用")
	}

	opts.Scorer = service.NewScorerClient(&cfg.Scorer, logger)
	if opts.Scorer == nil {
		logger.Info("未配置外部评分服务，仅使用规则评分")
	}

	// 5. 初始化 Token 校验器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, opts, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	// 写超时需覆盖外部评分服务的超时
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Scorer.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}
	if bus != nil {
		bus.Close()
	}

	logger.Info("服务器已关闭")
}
