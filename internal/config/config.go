package config

import (
	"log"
	"os"
	"time"

	"github.com/hunter4ass/OWLD/pkg/utils"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"ENV" env-default:"local"`
	HTTP        HTTP        `yaml:"http"`
	Postgres    PG          `yaml:"postgres"`
	Redis       Redis       `yaml:"redis"`
	Kafka       Kafka       `yaml:"kafka"`
	Catalog     Catalog     `yaml:"catalog"`
	Identity    Identity    `yaml:"identity"`
	Progression Progression `yaml:"progression"`
	Limiter     Limiter     `yaml:"limiter"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	OrderEvents string   `yaml:"order_events_topic" env-default:"order_events"`
}

type Catalog struct {
	BaseURL string        `yaml:"base_url" env:"CATALOG_URL" env-default:"https://fakestoreapi.com"`
	Timeout time.Duration `yaml:"timeout" env-default:"6s"`
}

type Identity struct {
	BaseURL string        `yaml:"base_url" env:"IDENTITY_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"3s"`
}

// Progression holds the dwell time before each status advances to the
// next one. Defaults reproduce the showcase timings.
type Progression struct {
	Pending    time.Duration `yaml:"pending" env-default:"5s"`
	Preparing  time.Duration `yaml:"preparing" env-default:"10s"`
	Collecting time.Duration `yaml:"collecting" env-default:"15s"`
	Delivering time.Duration `yaml:"delivering" env-default:"20s"`
}

type Limiter struct {
	Max        int           `yaml:"max" env-default:"20"`
	Expiration time.Duration `yaml:"expiration" env-default:"5s"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
