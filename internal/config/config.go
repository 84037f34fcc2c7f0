package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App              App              `mapstructure:",squash"`
	Server           Server           `mapstructure:",squash"`
	Database         Database         `mapstructure:",squash"`
	Ingest           Ingest           `mapstructure:",squash"`
	Cors             Cors             `mapstructure:",squash"`
	StoreMaintenance StoreMaintenance `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Database struct {
	DSN          string `mapstructure:"-"`
	Driver       string `mapstructure:"database_driver"`
	Password     string `mapstructure:"database_password"`
	URL          string `mapstructure:"database_url"`
	User         string `mapstructure:"database_user"`
	MaxOpenConns int    `mapstructure:"database_max_open_conns"`
}

type Ingest struct {
	BatchSize   int   `mapstructure:"ingest_batch_size"`
	MaxUploadMB int64 `mapstructure:"ingest_max_upload_mb"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type StoreMaintenance struct {
	CronSchedule string `mapstructure:"store_maintenance_cron"`
	Enabled      bool   `mapstructure:"store_maintenance_enabled"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "localhost")
	v.SetDefault("PORT", 8000)
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	// Banco local em arquivo por padrão; postgres via DATABASE_DRIVER ou DATABASE_URL
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_URL", "sales.db")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "root")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)

	v.SetDefault("INGEST_BATCH_SIZE", 1000)
	v.SetDefault("INGEST_MAX_UPLOAD_MB", 50)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("STORE_MAINTENANCE_CRON", "0 2 * * *") // Todos os dias às 2h da manhã
	v.SetDefault("STORE_MAINTENANCE_ENABLED", false)

	v.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	SetDefaults(v)

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	return Load(v)
}

// Load decodifica a configuração a partir de uma instância do viper já populada
func Load(v *viper.Viper) (*Config, error) {
	config := &Config{}

	// AutomaticEnv só resolve chaves conhecidas; garantimos que todas as chaves com default sejam lidas
	settings := make(map[string]any)
	for _, key := range v.AllKeys() {
		settings[key] = v.Get(key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("config: erro ao decodificar configuração: %w", err)
	}

	if err := config.Database.resolve(); err != nil {
		return nil, err
	}

	if config.Ingest.BatchSize <= 0 {
		return nil, fmt.Errorf("config: INGEST_BATCH_SIZE deve ser positivo, recebido %d", config.Ingest.BatchSize)
	}

	return config, nil
}

// resolve define Driver e DSN a partir de DATABASE_URL ou das partes individuais
func (d *Database) resolve() error {
	url := strings.TrimSpace(d.URL)

	switch {
	case strings.HasPrefix(url, "sqlite://"):
		// Como no SQLAlchemy: sqlite:///sales.db é relativo e sqlite:////var/sales.db é absoluto
		d.Driver = DriverSQLite
		d.DSN = strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "/")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		d.Driver = DriverPostgres
		d.DSN = url
	case d.Driver == DriverSQLite:
		d.DSN = url
	case d.Driver == DriverPostgres:
		d.DSN = fmt.Sprintf("%s://%s:%s@%s", d.Driver, d.User, d.Password, url)
	default:
		return fmt.Errorf("config: driver de banco não suportado: %q", d.Driver)
	}

	if d.DSN == "" {
		return fmt.Errorf("config: DATABASE_URL vazio")
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
