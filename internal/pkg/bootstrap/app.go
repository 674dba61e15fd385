// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"itemservice/internal/pkg/config"
	"itemservice/internal/pkg/logger"
	"itemservice/internal/pkg/nacos"
	"itemservice/internal/pkg/utils"
	"itemservice/internal/tracing"

	zlog "github.com/rs/zerolog/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo 包含启动一个服务实例所需的信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己的 HTTP 路由
	OnShutdown       []func(ctx context.Context) error
}

// Init 加载配置并初始化日志，必须在 StartService 之前调用
func Init() {
	if err := config.Load(""); err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
}

// StartService 封装通用的启动和优雅关停逻辑：
// tracer、nacos 注册、HTTP server（healthz + metrics），以及按序清理。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)
	cfg := config.GetCurrentConfig()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	namingClient, err := nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := utils.GetOutboundIP()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to get outbound IP address")
	}

	if err := namingClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		zlog.Fatal().Err(err).Msg("failed to register service with nacos")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}

	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		zlog.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Str("addr", server.Addr).Msg("http server failed")
		}
	}()

	// 阻塞直到收到退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msgf("shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 清理按注册的反序执行（后进先出）
	if err := namingClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		zlog.Error().Err(err).Msg("error deregistering from nacos")
	}

	runShutdownHooks(ctx, info.OnShutdown)

	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down http server")
	}

	zlog.Info().Msgf("service %s gracefully shut down", info.ServiceName)
}

// runShutdownHooks 按注册的反序执行清理钩子（后进先出）。
// 调用方必须按资源创建顺序注册，持有依赖的一方先于被依赖的资源被清理。
func runShutdownHooks(ctx context.Context, hooks []func(ctx context.Context) error) {
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			zlog.Error().Err(err).Msg("error running shutdown hook")
		}
	}
}
