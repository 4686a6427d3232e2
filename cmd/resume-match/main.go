package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	appCoreLogger "resume-match-go/internal/logger"
	"resume-match-go/internal/normalizer"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
)

func main() {
	// .env存在时加载，敏感配置(数据库口令等)通过环境变量覆盖
	if err := godotenv.Load(); err == nil {
		log.Println("已加载.env环境变量")
	}

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	pipeline, err := processor.NewPipelineFromConfig(ctx, cfg,
		processor.WithDebug(cfg.Logger.Level == "debug"),
		processor.WithPipelineLogger(log.New(appCoreLogger.Logger, "[Pipeline] ", log.LstdFlags)))
	if err != nil {
		glog.Fatalf("初始化处理流水线失败: %v", err)
	}
	glog.Info("处理流水线初始化成功")

	norm := normalizer.NewNormalizer(
		normalizer.WithIdentityStore(storageManager.MySQL),
		normalizer.WithJobStore(storageManager.MySQL),
		normalizer.WithLookupTimeout(config.GetDuration(cfg.Normalizer.LookupTimeout, normalizer.DefaultLookupTimeout)),
	)

	applicationHandler := handler.NewApplicationHandler(cfg, storageManager, pipeline, norm)
	glog.Info("ApplicationHandler初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, applicationHandler, storageManager)
	glog.Info("HTTP路由注册成功")

	go func() {
		glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化全局zerolog并把Hertz的日志也接到同一套输出上
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
}
