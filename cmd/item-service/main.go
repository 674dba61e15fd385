// cmd/item-service/main.go
package main

import (
	"context"
	"time"

	"itemservice/internal/lock"
	"itemservice/internal/lock/locallock"
	"itemservice/internal/lock/redislock"
	"itemservice/internal/lock/zklock"
	"itemservice/internal/pkg/bootstrap"
	"itemservice/internal/pkg/config"
	"itemservice/internal/pkg/mq"
	pkgredis "itemservice/internal/pkg/redis"
	"itemservice/internal/service/item/application"
	"itemservice/internal/service/item/infrastructure"
	"itemservice/internal/service/item/interfaces"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

const serviceName = "item-service"

// main 是应用的组装根：创建并组装所有依赖，然后启动
func main() {
	bootstrap.Init()
	cfg := config.GetCurrentConfig()

	db, err := infrastructure.NewDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to init mysql")
	}

	lockProvider, lockCleanup, err := buildLockProvider(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to init lock provider")
	}

	rules, err := application.NewAdmissionRules(cfg.Stock.AdmissionRules)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to compile admission rules")
	}

	itemRepo := infrastructure.NewGormItemRepository(db)
	shopRepo := infrastructure.NewGormShopRepository(db)
	logRepo := infrastructure.NewGormUpdateLogRepository(db)

	engine := application.NewStockUpdateService(
		itemRepo, logRepo, lockProvider, rules,
		cfg.Stock.LockWaitTimeout.Std(), cfg.Stock.LockHoldTimeout.Std(),
		otel.Tracer(serviceName),
	)
	catalog := application.NewCatalogService(itemRepo, shopRepo)

	kafkaCfg := cfg.Infra.Kafka
	reader := mq.NewReader(kafkaCfg.Brokers, kafkaCfg.GroupID, kafkaCfg.RequestTopic)
	resultWriter := mq.NewWriter(kafkaCfg.Brokers, kafkaCfg.ResultTopic)
	dltWriter := mq.NewWriter(kafkaCfg.Brokers, kafkaCfg.DLTTopic)

	publisher := infrastructure.NewResultProducerAdapter(resultWriter)
	consumer := infrastructure.NewOrderItemConsumerAdapter(
		reader, engine, publisher,
		mq.NewFailureHandler(dltWriter),
		cfg.Stock.LockRetryMax, cfg.Stock.LockRetryBackoff.Std(),
	)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.Service.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			interfaces.NewCatalogHandler(catalog).RegisterRoutes(appCtx.Mux)
			// tracer 与 propagator 在此刻已就绪，消费者随服务启动
			consumer.Start(consumerCtx)
		},
		// 钩子按资源创建顺序注册，LIFO 执行：先停消费者，再关它依赖的 writer 和锁
		OnShutdown: []func(ctx context.Context) error{
			func(ctx context.Context) error { lockCleanup(); return nil },
			func(ctx context.Context) error { return resultWriter.Close() },
			func(ctx context.Context) error { return dltWriter.Close() },
			func(ctx context.Context) error {
				cancelConsumer()
				consumer.Stop(ctx)
				return nil
			},
		},
	})
}

// buildLockProvider 根据配置选择锁实现，三种实现满足同一个契约
func buildLockProvider(cfg *config.Config) (lock.Provider, func(), error) {
	switch cfg.Stock.LockProvider {
	case "zookeeper":
		provider, err := zklock.NewProvider(cfg.Infra.Zookeeper.Servers, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return provider, provider.Close, nil

	case "local":
		// 单机部署/本地调试用，不提供跨进程互斥
		return locallock.NewProvider(), func() {}, nil

	default:
		redisCfg := cfg.Infra.Redis
		client, err := pkgredis.NewClient(context.Background(), redisCfg.Addr, redisCfg.Password, redisCfg.DB)
		if err != nil {
			return nil, nil, err
		}
		provider, err := redislock.NewProvider(client)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return provider, func() { client.Close() }, nil
	}
}
