// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env              string `yaml:"env"`
	AppURL           string `yaml:"app_url"` // Базовый адрес приложения для ссылок сброса пароля
	RedisConnection  `yaml:"redis_connection"`
	RabbitConnection `yaml:"rabbit_connection"`
	HTTPServer       `yaml:"http_server"`
	JWTToken         `yaml:"jwttoken"`
	SMTP             `yaml:"smtp"`
	IdentityBackend  `yaml:"identity_backend"`
	AdminCredentials `yaml:"admin_credentials"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitConnection структура для настройки подключения к rabbitmq
type RabbitConnection struct {
	RabbitURL      string `yaml:"rabbit_url"`
	ProvisionQueue string `yaml:"provision_queue" env-default:"identity.provision"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey  string        `yaml:"jwt_secret_key"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl" env-default:"15m"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// IdentityBackend структура для настройки клиента внешнего бэкенда идентичности.
// Пустой Address означает, что бэкенд не сконфигурирован и включается демо-режим.
type IdentityBackend struct {
	IdentityAddress string `yaml:"identity_address"`
	IdentityAPIKey  string `yaml:"identity_api_key"`
}

// AdminCredentials фиксированная пара учётных данных администратора
type AdminCredentials struct {
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
