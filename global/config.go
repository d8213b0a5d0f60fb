package global

import (
	"crypto/ed25519"

	"github.com/go-redis/redis_rate/v10"
	cfg "github.com/mailio/go-web3-kit/config"
)

// Conf global config
var Conf Config

// Public and Private key of the server (loaded from session.serverKeysPath in conf.yaml),
// used for signing and validating session tokens
var PublicKey ed25519.PublicKey
var PrivateKey ed25519.PrivateKey
var ServerKeysCreated int64

// Global rate limiter
var RateLimiter *redis_rate.Limiter

type Config struct {
	cfg.YamlConfig `yaml:",inline"`
	CouchDB        CouchDBConfig    `yaml:"couchdb"`
	Redis          RedisConfig      `yaml:"redis"`
	Prometheus     PrometheusConfig `yaml:"prometheus"`
	Otp            OtpConfig        `yaml:"otp"`
	Session        SessionConfig    `yaml:"session"`
	Email          EmailConfig      `yaml:"email"`
	Storage        StorageConfig    `yaml:"storage"`
}

type CouchDBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Scheme   string `yaml:"scheme"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Username string `yaml:"username"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type OtpConfig struct {
	CodeLength     int `yaml:"codeLength"`     // number of digits, default 6
	ExpiresMinutes int `yaml:"expiresMinutes"` // challenge time to live, default 10
	MaxAttempts    int `yaml:"maxAttempts"`    // verification attempts per challenge, default 5
}

type SessionConfig struct {
	ServerKeysPath string `yaml:"serverKeysPath"`
	TTLMinutes     int    `yaml:"ttlMinutes"` // session token time to live, default 30
}

type EmailConfig struct {
	Provider string `yaml:"provider"` // currently only sendgrid
	From     string `yaml:"from"`
	FromName string `yaml:"fromName"`
	ApiKey   string `yaml:"apikey"`
}

type StorageConfig struct {
	Type   string `yaml:"type"`
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

// CodeLength with the default applied
func (o OtpConfig) Length() int {
	if o.CodeLength <= 0 {
		return 6
	}
	return o.CodeLength
}

// ExpiresMinutes with the default applied
func (o OtpConfig) Expiry() int {
	if o.ExpiresMinutes <= 0 {
		return 10
	}
	return o.ExpiresMinutes
}

// MaxAttempts with the default applied
func (o OtpConfig) Attempts() int {
	if o.MaxAttempts <= 0 {
		return 5
	}
	return o.MaxAttempts
}

// TTLMinutes with the default applied
func (s SessionConfig) TTL() int {
	if s.TTLMinutes <= 0 {
		return 30
	}
	return s.TTLMinutes
}
