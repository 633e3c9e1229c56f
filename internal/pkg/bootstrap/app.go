// internal/pkg/bootstrap/app.go

// Package bootstrap 封装服务的通用启动与优雅关停流程。
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"orderflow/internal/pkg/config"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/nacos"
	"orderflow/internal/pkg/tracing"
)

// AppCtx 传递给业务方用于注册路由。
type AppCtx struct {
	Mux    *http.ServeMux
	Config *config.Config
}

// AppInfo 描述启动一个服务所需的信息。
type AppInfo struct {
	Config           *config.Config
	RegisterHandlers func(appCtx AppCtx)
	// OnStart 在 HTTP 服务就绪后调用，用于启动摄入等后台任务
	OnStart func(ctx context.Context)
	// OnShutdown 在关停流程中调用，先于 tracer 和 HTTP 服务关闭
	OnShutdown func(ctx context.Context)
}

// StartService 启动服务并阻塞到收到退出信号。
// 关停按后进先出执行：后台任务、Nacos 注销、tracer、HTTP 服务。
func StartService(info AppInfo) {
	cfg := info.Config
	serviceName := cfg.Service.Name
	log := logger.Logger()

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	var registry *nacos.Client
	var ip string
	if cfg.Nacos.Enabled {
		registry, err = nacos.NewClient(cfg.Nacos.Addrs, cfg.Nacos.Namespace, cfg.Nacos.Group)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = outboundIP()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := registry.Register(serviceName, ip, cfg.Service.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Config: cfg})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.Service.Port), Handler: mux}
	go func() {
		log.Info().Str("addr", server.Addr).Msgf("%s listening", serviceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	runCtx, cancelRun := context.WithCancel(context.Background())
	if info.OnStart != nil {
		info.OnStart(runCtx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msgf("shutting down %s", serviceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cancelRun()
	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}

	if registry != nil {
		if err := registry.Deregister(serviceName, ip, cfg.Service.Port); err != nil {
			log.Error().Err(err).Msg("error deregistering from nacos")
		}
	}

	// 关闭 TracerProvider，把缓冲中的 span 全部发出去
	if err := tp.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}

	log.Info().Msgf("%s gracefully shut down", serviceName)
}

// outboundIP 取本机对外通信使用的 IP，用于服务注册。
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
