// internal/pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是整个服务的配置树，从 yaml 文件加载，允许环境变量覆盖关键项
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Infra      InfraConfig      `yaml:"infra"`
	Stock      StockConfig      `yaml:"stock"`
	StockWatch StockWatchConfig `yaml:"stockWatch"`
}

type ServiceConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

// InfraConfig 集中所有中间件的连接信息
type InfraConfig struct {
	Mysql     MysqlConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	Nacos     NacosConfig     `yaml:"nacos"`
}

type MysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	RequestTopic string   `yaml:"requestTopic"`
	ResultTopic  string   `yaml:"resultTopic"`
	DLTTopic     string   `yaml:"dltTopic"`
	GroupID      string   `yaml:"groupId"`
}

type ZookeeperConfig struct {
	Servers []string `yaml:"servers"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type NacosConfig struct {
	ServerAddrs string `yaml:"serverAddrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

// StockConfig 是库存更新引擎自身的参数
type StockConfig struct {
	// 锁的实现: "redis" | "zookeeper" | "local"
	LockProvider string `yaml:"lockProvider"`
	// 等待获取租约的上限
	LockWaitTimeout Duration `yaml:"lockWaitTimeout"`
	// 租约的持有上限，由锁服务强制过期
	LockHoldTimeout Duration `yaml:"lockHoldTimeout"`
	// 锁超时后消费侧的重试次数与退避基数
	LockRetryMax     int      `yaml:"lockRetryMax"`
	LockRetryBackoff Duration `yaml:"lockRetryBackoff"`
	// 准入规则（CEL 表达式），为空则跳过规则校验
	AdmissionRules []string `yaml:"admissionRules"`
}

// StockWatchConfig 是 stock-watch 推送网关的参数
type StockWatchConfig struct {
	Port int `yaml:"port"`
}

// Duration 让 yaml 里可以写 "3s"、"500ms" 这样的时长
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std 转回标准库类型
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var current atomic.Pointer[Config]

// Load 读取 yaml 配置文件并应用环境变量覆盖，结果存入全局指针。
// path 为空时使用 CONFIG_PATH 环境变量，仍为空则使用默认值启动。
func Load(path string) error {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	current.Store(cfg)
	return nil
}

// GetCurrentConfig 返回当前配置。未调用 Load 时返回默认配置，方便测试。
func GetCurrentConfig() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	c := defaultConfig()
	applyEnvOverrides(c)
	current.Store(c)
	return c
}

func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{Name: "item-service", Port: 8085},
		Infra: InfraConfig{
			Mysql:     MysqlConfig{DSN: "root:root@tcp(localhost:3306)/itemservice?charset=utf8mb4&parseTime=True&loc=Local"},
			Redis:     RedisConfig{Addr: "localhost:6379"},
			Kafka:     KafkaConfig{Brokers: []string{"localhost:9092"}, RequestTopic: "order-item-requests", ResultTopic: "item-update-results", DLTTopic: "order-item-requests.dlt", GroupID: "item-service"},
			Zookeeper: ZookeeperConfig{Servers: []string{"localhost:2181"}},
			Jaeger:    JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			Nacos:     NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
		},
		Stock: StockConfig{
			LockProvider:     "redis",
			LockWaitTimeout:  Duration(3 * time.Second),
			LockHoldTimeout:  Duration(5 * time.Second),
			LockRetryMax:     3,
			LockRetryBackoff: Duration(200 * time.Millisecond),
		},
		StockWatch: StockWatchConfig{Port: 8087},
	}
}

// applyEnvOverrides 让容器环境可以不改文件直接覆盖连接串
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = []string{v}
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Infra.Nacos.Group = v
	}
	if v := os.Getenv("LOCK_PROVIDER"); v != "" {
		cfg.Stock.LockProvider = v
	}
}
