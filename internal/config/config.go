package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

func (a *AppConfig) PortString() string { return fmt.Sprintf(":%d", a.Port) }

type MongoConfig struct {
	URI string `mapstructure:"uri"`
	DB  string `mapstructure:"db"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers             []string `mapstructure:"brokers"`
	TopicMessageCreated string   `mapstructure:"topic_message_created"`
	GroupID             string   `mapstructure:"group_id"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

type S3Config struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

type SupportConfig struct {
	SendRateLimitPerHour int `mapstructure:"send_rate_limit_per_hour"`
}

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	S3      S3Config      `mapstructure:"s3"`
	Support SupportConfig `mapstructure:"support"`

	// derived
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.JWT.AccessTTLMinutes == 0 {
		c.JWT.AccessTTLMinutes = 15
	}
	if c.JWT.RefreshTTLDays == 0 {
		c.JWT.RefreshTTLDays = 30
	}
	if c.Kafka.TopicMessageCreated == "" {
		c.Kafka.TopicMessageCreated = "support.message.created"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "portal-server"
	}
	if c.Support.SendRateLimitPerHour == 0 {
		c.Support.SendRateLimitPerHour = 120
	}
	c.AccessTTL = time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
	c.RefreshTTL = time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
	return &c, nil
}
