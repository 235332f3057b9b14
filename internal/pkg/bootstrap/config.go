// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 描述了所有服务共享的基础设施配置。
// 配置来源优先级: 环境变量 > yaml 配置文件 > 默认值。
type Config struct {
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Infra struct {
		Mysql struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`

	Weather struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"weather"`

	Geocode struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"geocode"`
}

var currentConfig *Config

// Init 加载配置文件并应用环境变量覆盖。必须在 StartService 或任何
// GetCurrentConfig 调用之前执行；加载失败视为致命的配置错误。
func Init() {
	cfg, err := loadConfig(getEnv("CONFIG_PATH", "configs/config.yaml"))
	if err != nil {
		// 缺失连接信息属于配置错误，直接终止进程，交给调度方处理
		panic(fmt.Sprintf("FATAL: failed to load config: %v", err))
	}
	currentConfig = cfg
}

// GetCurrentConfig 返回已加载的全局配置。
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		panic("bootstrap.Init must be called before GetCurrentConfig")
	}
	return currentConfig
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	// 默认值
	cfg.Log.Level = "info"
	cfg.Infra.Mysql.Host = "localhost"
	cfg.Infra.Mysql.Port = 3306
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	cfg.Weather.BaseURL = "https://api.openweathermap.org/data/2.5/weather"

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.Infra.Mysql.User == "" || cfg.Infra.Mysql.Database == "" {
		return nil, fmt.Errorf("mysql connection info is missing (user=%q database=%q)",
			cfg.Infra.Mysql.User, cfg.Infra.Mysql.Database)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("MYSQL_USER"); ok {
		cfg.Infra.Mysql.User = v
	}
	if v, ok := os.LookupEnv("MYSQL_PASSWORD"); ok {
		cfg.Infra.Mysql.Password = v
	}
	if v, ok := os.LookupEnv("MYSQL_DATABASE"); ok {
		cfg.Infra.Mysql.Database = v
	}
	if v, ok := os.LookupEnv("MYSQL_HOST"); ok {
		cfg.Infra.Mysql.Host = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v, ok := os.LookupEnv("ZOOKEEPER_SERVERS"); ok {
		cfg.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("OPENWEATHER_API_KEY"); ok {
		cfg.Weather.APIKey = v
	}
	if v, ok := os.LookupEnv("GEOCODE_BASE_URL"); ok {
		cfg.Geocode.BaseURL = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
