package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var configSingleton *ConfigSingleton
var muonce sync.Once

var ErrMissingTokenKey = errors.New("AUTH_TOKEN_KEY is required")

type ConfigSingleton struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENV"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DbName        string `mapstructure:"POSTGRES_DB"`
	DbHost        string `mapstructure:"POSTGRES_HOST"`
	DbPort        string `mapstructure:"POSTGRES_PORT"`
	DbUser        string `mapstructure:"POSTGRES_USER"`
	DbPas         string `mapstructure:"POSTGRES_PASSWORD"`
	DbAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	BookCacheTTL  time.Duration `mapstructure:"BOOK_CACHE_TTL"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	AuthTokenKey        string        `mapstructure:"AUTH_TOKEN_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`

	CheckoutTimeout      time.Duration `mapstructure:"CHECKOUT_TIMEOUT"`
	CheckoutRateCapacity int           `mapstructure:"CHECKOUT_RATE_CAPACITY"`
	CheckoutRateRefill   time.Duration `mapstructure:"CHECKOUT_RATE_REFILL"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

// Brokers 拆分 KAFKA_BROKERS，空字串回傳 nil
func (c *Config) Brokers() []string {
	if strings.TrimSpace(c.KafkaBrokers) == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c *Config) Validate() error {
	if c.AuthTokenKey == "" {
		return ErrMissingTokenKey
	}
	return nil
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleton{}
		cf, err := loadConfig(viper.GetViper())
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		configSingleton.set(cf)

		if viper.ConfigFileUsed() == "" {
			return
		}
		viper.OnConfigChange(func(e fsnotify.Event) {
			cf, err := loadConfig(viper.GetViper())
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			configSingleton.set(cf)
		})
		viper.WatchConfig()
	})
}

func (s *ConfigSingleton) set(cf *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config = cf
}

/*
單純回傳錯誤  由外部決定要不要Fatal
設定檔不存在不算錯誤，全部改由環境變數提供
*/
func loadConfig(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	file := os.Getenv("CONFIG_FILE")
	if file == "" {
		file = ".env"
	}
	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		v.SetConfigFile("")
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

// Load 不經過singleton，直接用傳入的viper讀取，測試使用
func Load(v *viper.Viper) (*Config, error) {
	return loadConfig(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_DB", "bookstore")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BOOK_CACHE_TTL", 5*time.Minute)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_ORDER_TOPIC", "bookstore.orders")
	v.SetDefault("AUTH_TOKEN_KEY", "")
	v.SetDefault("ACCESS_TOKEN_DURATION", 24*time.Hour)
	v.SetDefault("CHECKOUT_TIMEOUT", 10*time.Second)
	v.SetDefault("CHECKOUT_RATE_CAPACITY", 5)
	v.SetDefault("CHECKOUT_RATE_REFILL", 2*time.Second)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}
