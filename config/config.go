package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string   `mapstructure:"http_address"`
	RPCAddress     string   `mapstructure:"rpc_address"`
	GRPCAddress    string   `mapstructure:"grpc_address"`
	MetricsAddress string   `mapstructure:"metrics_address"`
	StaticDir      string   `mapstructure:"static_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	SendQueueSize  int      `mapstructure:"send_queue_size"`
}

type GameConfig struct {
	MinPlayers    int         `mapstructure:"min_players"`
	ChatMaxLength int         `mapstructure:"chat_max_length"`
	NameMaxLength int         `mapstructure:"name_max_length"`
	DefaultName   string      `mapstructure:"default_name"`
	Phases        PhaseConfig `mapstructure:"phases"`
}

// PhaseConfig holds how long each timed phase lasts before it auto-advances.
type PhaseConfig struct {
	Night   time.Duration `mapstructure:"night"`
	Day     time.Duration `mapstructure:"day"`
	Vote    time.Duration `mapstructure:"vote"`
	Resolve time.Duration `mapstructure:"resolve"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // gorm | pq
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":9090")
	v.SetDefault("server.grpc_address", ":9091")
	v.SetDefault("server.metrics_address", ":2112")
	v.SetDefault("server.static_dir", "./public")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.send_queue_size", 64)

	v.SetDefault("game.min_players", 4)
	v.SetDefault("game.chat_max_length", 300)
	v.SetDefault("game.name_max_length", 24)
	v.SetDefault("game.default_name", "Player")
	v.SetDefault("game.phases.night", 35*time.Second)
	v.SetDefault("game.phases.day", 75*time.Second)
	v.SetDefault("game.phases.vote", 35*time.Second)
	v.SetDefault("game.phases.resolve", 3*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "gorm")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "nightfall")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from path. A missing file is not an error:
// defaults and NIGHTFALL_* environment variables still apply.
func LoadConfig(path string) (config *Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("nightfall")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	return
}
