// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Config 是整个平台共享的配置结构。
// 所有服务读同一份 YAML，按需取自己关心的部分。
type Config struct {
	App struct {
		Env string `yaml:"env"` // dev / staging / prod
		// 各服务的监听端口与依赖地址，booking 通过 CatalogBaseURL 调用报价接口
		CatalogBaseURL string `yaml:"catalogBaseURL"`
		FeatureFlags   struct {
			// 打开后，预占座位优先走 Redis 热路径，数据库 CAS 作为回退
			EnableRedisSeatHold bool `yaml:"enableRedisSeatHold"`
		} `yaml:"featureFlags"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers                []string `yaml:"brokers"`
			EnrollmentTopic        string   `yaml:"enrollmentTopic"`
			NotificationTopic      string   `yaml:"notificationTopic"`
			SeatEventTopic         string   `yaml:"seatEventTopic"`
			PaymentTimeoutTopic    string   `yaml:"paymentTimeoutTopic"`
			EnrollmentConsumerGroup string  `yaml:"enrollmentConsumerGroup"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// LoadConfig 从 CONFIG_PATH 指定的 YAML 文件加载配置。
// 文件不存在时回落到内置默认值，保证本地直接 go run 也能启动。
func LoadConfig() error {
	var loadErr error
	configOnce.Do(func() {
		applyDefaults(&currentConfig)

		path := getEnv("CONFIG_PATH", "configs/config.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return // 使用默认值
			}
			loadErr = fmt.Errorf("read config %s: %w", path, err)
			return
		}
		if err := yaml.Unmarshal(data, &currentConfig); err != nil {
			loadErr = fmt.Errorf("parse config %s: %w", path, err)
			return
		}
		applyEnvOverrides(&currentConfig)

		// DSN 写错是最常见的部署事故，启动期就拦下来
		if _, err := mysql.ParseDSN(currentConfig.Infra.Mysql.DSN); err != nil {
			loadErr = fmt.Errorf("invalid mysql dsn: %w", err)
		}
	})
	return loadErr
}

// GetCurrentConfig 返回当前生效的配置。
func GetCurrentConfig() *Config {
	return &currentConfig
}

func applyDefaults(c *Config) {
	c.App.Env = "dev"
	c.App.CatalogBaseURL = "http://localhost:8091"
	c.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/manabi?charset=utf8mb4&parseTime=True&loc=Local"
	c.Infra.Redis.Addr = "localhost:6379"
	c.Infra.Kafka.Brokers = []string{"localhost:9092"}
	c.Infra.Kafka.EnrollmentTopic = "enrollment-requested"
	c.Infra.Kafka.NotificationTopic = "enrollment-notifications"
	c.Infra.Kafka.SeatEventTopic = "seat-events"
	c.Infra.Kafka.PaymentTimeoutTopic = "payment-timeout-check"
	c.Infra.Kafka.EnrollmentConsumerGroup = "booking-service"
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
}

// applyEnvOverrides 允许用环境变量覆盖少数部署相关的配置项，
// 与 YAML 的关系是：YAML 描述形态，环境变量描述环境。
func applyEnvOverrides(c *Config) {
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		c.Infra.Mysql.DSN = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		c.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		c.Infra.Jaeger.Endpoint = v
	}
	if v, ok := os.LookupEnv("CATALOG_BASE_URL"); ok {
		c.App.CatalogBaseURL = v
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
