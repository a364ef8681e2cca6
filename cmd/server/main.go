// Command server runs the MOBA match gateway: it loads content and
// simulation configuration, starts the WebSocket transport, and serves
// rooms until told to shut down.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/riftforge/moba-server/internal/config"
	"github.com/riftforge/moba-server/internal/content"
	"github.com/riftforge/moba-server/internal/gateway"
	"github.com/riftforge/moba-server/internal/priority"
	"github.com/riftforge/moba-server/internal/reliable"
	"github.com/riftforge/moba-server/internal/room"
	"github.com/riftforge/moba-server/internal/simulation"
	"github.com/riftforge/moba-server/internal/spatial"
)

func main() {
	appCfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config load failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := buildLogger(appCfg.Server.LogLevel)
	defer logger.Sync()

	sources := content.DefaultSources()
	if path := os.Getenv("CONTENT_CONFIG_PATH"); path != "" {
		overlay, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("content override load failed", zap.String("path", path), zap.Error(err))
		}
		sources = append(sources, string(overlay))
	}
	registry, err := content.Load(sources...)
	if err != nil {
		logger.Fatal("content registry load failed", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("champions", len(registry.Champions)),
		zap.Int("abilities", len(registry.Abilities)),
		zap.Int("items", len(registry.Items)))

	bushes := spatial.NewBushMap(nil)

	roomCfg := room.Config{
		Sim:              simulation.Config{TickRateHz: appCfg.Sim.TickRateHz},
		Serializer:       appCfg.Serializer.StaleTickThreshold,
		Priority:         toPriorityConfig(appCfg.Priority),
		Reliable:         toReliableConfig(appCfg.Reliable),
		RateLimits:       appCfg.InputRates.Limits,
		DefaultRateLimit: appCfg.InputRates.Default,
		WorldWidth:       appCfg.Spatial.WorldWidth,
		WorldHeight:      appCfg.Spatial.WorldHeight,
	}
	manager := room.NewManager(logger, registry, bushes, roomCfg)

	limiter := gateway.NewIPRateLimiter(gateway.DefaultRateLimitConfig)
	defer limiter.Stop()
	ws := gateway.NewWSTransport(limiter)
	gwServer := gateway.NewServer(logger, manager, ws, appCfg.Sim.TickRateHz)

	router := gateway.NewRouter(gateway.RouterConfig{
		Manager:     manager,
		WS:          ws,
		RateLimiter: limiter,
		StartedAt:   time.Now(),
	})

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(appCfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go gwServer.Run(ctx)

	go func() {
		logger.Info("gateway listening", zap.Int("port", appCfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listener failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	manager.StopAll()
	cancel()
	ws.Close()

	<-shutdownCtx.Done()
	logger.Info("shutdown complete")
}

func buildLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	var l zap.AtomicLevel
	if err := l.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = l
	}
	logger, err := cfg.Build()
	if err != nil {
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	return logger
}

func toPriorityConfig(c config.PriorityConfig) priority.Config {
	return priority.Config{
		CriticalDistance:      c.CriticalDistance,
		HighDistance:          c.HighDistance,
		MediumDistance:        c.MediumDistance,
		HighCadenceTicks:      c.HighCadenceTicks,
		MediumCadenceTicks:    c.MediumCadenceTicks,
		LowCadenceTicks:       c.LowCadenceTicks,
		MaxTicksWithoutUpdate: c.MaxTicksWithoutUpdate,
	}
}

func toReliableConfig(c config.ReliableConfig) reliable.Config {
	return reliable.Config{
		RetryIntervalTicks: c.RetryIntervalTicks,
		MaxRetries:         c.MaxRetries,
		QueueCapacity:      c.QueueCapacity,
	}
}

