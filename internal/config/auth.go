package config

import "time"

// AuthConfig содержит настройки токенов и хеширования паролей.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"super-secret-key-change-me-in-production"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"168h"`
	BCryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// SMTPConfig - настройки почтового сервера для писем сброса пароля.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER" env-default:""`
	Password string `yaml:"password" env:"SMTP_PASS" env-default:""`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@notespace.local"`
}

// AppConfig - прикладные настройки.
type AppConfig struct {
	FrontendURL  string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	DefaultTitle string `yaml:"default_title" env:"NOTES_DEFAULT_TITLE" env-default:"Untitled"`
}
