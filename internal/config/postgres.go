package config

import (
	"fmt"
	"net/url"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host          string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port          int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User          string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password      string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Database      string `yaml:"database" env:"POSTGRES_DB" env-default:"notespace"`
	MinConn       int32  `yaml:"min_conn" env:"POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn       int32  `yaml:"max_conn" env:"POSTGRES_MAX_CONN" env-default:"10"`
	MigrationsDir string `yaml:"migrations_dir" env:"MIGRATIONS_DIR" env-default:"migrations"`
}

// GetDSN возвращает строку подключения для pgxpool.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL возвращает URL подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
