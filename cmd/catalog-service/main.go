package main

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"

	"manabi/internal/pkg/bootstrap"
	"manabi/internal/pkg/logger"
	"manabi/internal/service/catalog/application"
	"manabi/internal/service/catalog/infrastructure"
	"manabi/internal/service/catalog/infrastructure/rule"
	"manabi/internal/service/catalog/interfaces"
)

const serviceName = "catalog-service"

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8091,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := bootstrap.GetCurrentConfig()

			db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
			if err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
			}
			if err := db.AutoMigrate(
				&infrastructure.PricingPatternModel{},
				&infrastructure.CourseSeriesModel{},
				&infrastructure.CourseTermModel{},
			); err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to migrate catalog tables")
			}

			ruleEngine, err := rule.NewCELRuleEngineAdapter()
			if err != nil {
				logger.Logger().Fatal().Err(err).Msg("failed to initialize rule engine")
			}

			tracer := otel.Tracer(serviceName)
			service := application.NewCatalogService(
				infrastructure.NewGormPatternRepository(db),
				infrastructure.NewGormSeriesRepository(db),
				infrastructure.NewGormTermRepository(db),
				ruleEngine,
				tracer,
			)
			interfaces.NewCatalogHandler(service).RegisterRoutes(appCtx.Mux)
		},
	})
}
