package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"

	"manabi/internal/pkg/bootstrap"
	"manabi/internal/pkg/httpclient"
	"manabi/internal/pkg/logger"
	"manabi/internal/pkg/mq"
	redisclient "manabi/internal/pkg/redis"
	"manabi/internal/service/booking/application"
	"manabi/internal/service/booking/domain/port"
	"manabi/internal/service/booking/infrastructure"
	"manabi/internal/service/booking/infrastructure/adapter"
	"manabi/internal/service/booking/interfaces"
	"manabi/internal/zookeeper"
)

const serviceName = "booking-service"

func main() {
	consumerCtx, stopConsumers := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(consumerCtx)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8092,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := bootstrap.GetCurrentConfig()
			tracer := otel.Tracer(serviceName)

			db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
			if err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
			}
			if err := db.AutoMigrate(
				&infrastructure.ClassSessionModel{},
				&infrastructure.EnrollmentModel{},
			); err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to migrate booking tables")
			}

			enrollmentRepo := infrastructure.NewGormEnrollmentRepository(db)
			sessionRepo := infrastructure.NewGormSessionRepository(db)

			// 座位预占：数据库 CAS 是权威，可选的 Redis 热路径在前面挡流量
			var seats port.SeatReserver = adapter.NewCASSeatAdapter(db)
			if cfg.App.FeatureFlags.EnableRedisSeatHold {
				rdb, err := redisclient.NewClient(groupCtx, cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
				if err != nil {
					logger.Logger().Fatal().Err(err).Msg("failed to connect to redis")
				}
				seats, err = adapter.NewRedisSeatAdapter(rdb, seats)
				if err != nil {
					logger.Logger().Fatal().Err(err).Msg("failed to initialize redis seat adapter")
				}
			}

			// 可选的 ZooKeeper 锁，用于多实例下的容量调整
			var locker port.SessionLocker
			if servers := cfg.Infra.Zookeeper.Servers; len(servers) > 0 {
				zkConn, err := zookeeper.Connect(servers, 10*time.Second)
				if err != nil {
					logger.Logger().Fatal().Err(err).Msg("failed to connect to zookeeper")
				}
				locker = adapter.NewZkSessionLocker(zkConn)
			}

			brokers := cfg.Infra.Kafka.Brokers
			enrollmentWriter := mq.NewWriter(brokers, cfg.Infra.Kafka.EnrollmentTopic)
			notificationWriter := mq.NewWriter(brokers, cfg.Infra.Kafka.NotificationTopic)
			seatEventWriter := mq.NewWriter(brokers, cfg.Infra.Kafka.SeatEventTopic)
			timeoutWriter := mq.NewWriter(brokers, cfg.Infra.Kafka.PaymentTimeoutTopic)

			quoteClient := httpclient.NewClient(tracer)

			service := application.NewBookingService(
				enrollmentRepo,
				sessionRepo,
				adapter.NewEnrollmentProducerAdapter(enrollmentWriter),
				seats,
				adapter.NewCatalogQuoteAdapter(quoteClient, cfg.App.CatalogBaseURL),
				adapter.NewNotificationKafkaAdapter(notificationWriter),
				adapter.NewSeatEventKafkaAdapter(seatEventWriter, sessionRepo),
				adapter.NewPaymentTimeoutSchedulerAdapter(timeoutWriter),
				locker,
				tracer,
			)
			interfaces.NewBookingHandler(service).RegisterRoutes(appCtx.Mux)

			// 消费侧：报名请求 + 支付超时检查
			enrollmentReader := mq.NewReader(brokers, cfg.Infra.Kafka.EnrollmentConsumerGroup, cfg.Infra.Kafka.EnrollmentTopic)
			timeoutReader := mq.NewReader(brokers, cfg.Infra.Kafka.EnrollmentConsumerGroup, cfg.Infra.Kafka.PaymentTimeoutTopic)

			enrollmentConsumer := adapter.NewEnrollmentConsumer(enrollmentReader, service, tracer)
			timeoutConsumer := adapter.NewPaymentTimeoutConsumer(timeoutReader, service, tracer)
			group.Go(func() error {
				defer enrollmentConsumer.Close()
				return enrollmentConsumer.Start(groupCtx)
			})
			group.Go(func() error {
				defer timeoutConsumer.Close()
				return timeoutConsumer.Start(groupCtx)
			})
		},
		OnShutdown: func(ctx context.Context) {
			stopConsumers()
			if err := group.Wait(); err != nil && err != context.Canceled {
				logger.Logger().Error().Err(err).Msg("consumer group exited with error")
			}
		},
	})
}
