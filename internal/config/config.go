package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

// Параметры класса по умолчанию: занятий в год, вызовов за занятие, учеников.
const (
	DefaultK = 30
	DefaultL = 5
	DefaultN = 40
)

// Config объединяет все аспекты настройки приложения.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Logging   LoggingConfig   `yaml:"logging"`
	Swagger   SwaggerConfig   `yaml:"swagger"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	LoadTests LoadTestConfig  `yaml:"load_tests"`
}

// HTTPConfig описывает HTTP-сервер.
type HTTPConfig struct {
	Port         string        `yaml:"port" env:"HTTP_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL"`
	MigrationsPath  string        `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	MaxConnections  int32         `yaml:"max_connections" env:"DB_MAX_CONNECTIONS"`
	MinConnections  int32         `yaml:"min_connections" env:"DB_MIN_CONNECTIONS"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME"`
}

// TimeoutConfig содержит таймауты разного уровня.
type TimeoutConfig struct {
	Operation     time.Duration `yaml:"operation" env:"OPERATION_TIMEOUT"`
	LongOperation time.Duration `yaml:"long_operation" env:"LONG_OPERATION_TIMEOUT"`
	Shutdown      time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig описывает формат и место логов.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// SwaggerConfig задаёт путь до OpenAPI-спецификации.
type SwaggerConfig struct {
	SpecPath string `yaml:"spec_path" env:"SWAGGER_SPEC_PATH"`
}

// SchedulerConfig задаёт пространство поиска плана и перемешивание пула.
// Уменьшение SeedMax или увеличение SeedStep сокращает время поиска.
type SchedulerConfig struct {
	SeedStep      uint64 `yaml:"seed_step" env:"SCHEDULER_SEED_STEP"`
	SeedMax       uint64 `yaml:"seed_max" env:"SCHEDULER_SEED_MAX"`
	KeepPoolOrder bool   `yaml:"keep_pool_order" env:"SCHEDULER_KEEP_POOL_ORDER"`
	ShuffleSeed   int64  `yaml:"shuffle_seed" env:"SCHEDULER_SHUFFLE_SEED"`
}

// DefaultsConfig содержит параметры новых классов.
type DefaultsConfig struct {
	K       int      `yaml:"k" env:"DEFAULT_K"`
	L       int      `yaml:"l" env:"DEFAULT_L"`
	N       int      `yaml:"n" env:"DEFAULT_N"`
	Classes []string `yaml:"classes" env:"DEFAULT_CLASSES" envSeparator:","`
}

// LoadTestConfig хранит параметры нагрузочного тестирования (load/cli).
type LoadTestConfig struct {
	BaseURL     string        `yaml:"base_url" env:"LOAD_TEST_URL"`
	Rate        int           `yaml:"rate" env:"LOAD_TEST_RATE"`
	Duration    time.Duration `yaml:"duration" env:"LOAD_TEST_DURATION"`
	ClassName   string        `yaml:"class_name" env:"LOAD_TEST_CLASS"`
	ResultsPath string        `yaml:"results_path" env:"LOAD_TEST_RESULTS"`
}

// MustLoad загружает конфигурацию и паникует при ошибке.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load читает YAML (путь из CONFIG_PATH или config/config.yaml), накладывает ENV и проставляет умолчания.
func Load() (Config, error) {
	path, ok := os.LookupEnv("CONFIG_PATH")
	if !ok || path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	if err := cfg.readFile(path); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("config: file %s not found", path)
	case err != nil:
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func orDefault[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

func positiveOr[T int | int32 | time.Duration](dst *T, def T) {
	if *dst <= 0 {
		*dst = def
	}
}

// normalize заполняет незаданные поля значениями по умолчанию.
func (c *Config) normalize() {
	orDefault(&c.HTTP.Port, "8080")
	positiveOr(&c.HTTP.ReadTimeout, 5*time.Second)
	// ответ на /plan/prepare может готовиться до long_operation
	positiveOr(&c.HTTP.WriteTimeout, 90*time.Second)
	positiveOr(&c.HTTP.IdleTimeout, 5*time.Minute)

	orDefault(&c.Database.MigrationsPath, "migrations")

	positiveOr(&c.Timeouts.Operation, 30*time.Second)
	positiveOr(&c.Timeouts.LongOperation, 60*time.Second)
	positiveOr(&c.Timeouts.Shutdown, 10*time.Second)

	orDefault(&c.Logging.Level, "info")
	orDefault(&c.Logging.Output, "stdout")
	orDefault(&c.Swagger.SpecPath, "openapi.yml")

	orDefault(&c.Scheduler.SeedStep, 100)
	orDefault(&c.Scheduler.SeedMax, 1_000_000)

	positiveOr(&c.Defaults.K, DefaultK)
	positiveOr(&c.Defaults.L, DefaultL)
	positiveOr(&c.Defaults.N, DefaultN)
	if len(c.Defaults.Classes) == 0 {
		c.Defaults.Classes = []string{"クラスA", "クラスB", "クラスC"}
	}

	orDefault(&c.LoadTests.BaseURL, "http://localhost:8080")
	positiveOr(&c.LoadTests.Rate, 5)
	positiveOr(&c.LoadTests.Duration, 60*time.Second)
	orDefault(&c.LoadTests.ClassName, "load-class")
	orDefault(&c.LoadTests.ResultsPath, "load/artifacts/results.bin")
}

func (c *Config) validate() error {
	if c.Scheduler.SeedStep > c.Scheduler.SeedMax {
		return fmt.Errorf("config: scheduler.seed_step %d exceeds seed_max %d", c.Scheduler.SeedStep, c.Scheduler.SeedMax)
	}
	if c.Timeouts.LongOperation < c.Timeouts.Operation {
		return fmt.Errorf("config: timeouts.long_operation %s is shorter than operation %s", c.Timeouts.LongOperation, c.Timeouts.Operation)
	}
	return nil
}
