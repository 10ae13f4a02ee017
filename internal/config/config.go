package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"subsidyledger/pkg/config"
)

// StaticUser 静态账号（演示/后备登录），密码为 bcrypt 哈希
type StaticUser struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	OTPTTLMinutes int          `yaml:"otp_ttl_minutes"`
	StaticUsers   []StaticUser `yaml:"static_users"`
}

type Config struct {
	DB     config.DBConfig     `yaml:"db"`
	Redis  config.RedisConfig  `yaml:"redis"`
	MQ     config.MQConfig     `yaml:"mq"`
	JWT    config.JWTConfig    `yaml:"jwt"`
	Server config.ServerConfig `yaml:"server"`
	SMTP   config.SMTPConfig   `yaml:"smtp"`
	Chain  config.ChainConfig  `yaml:"chain"`
	Auth   AuthConfig          `yaml:"auth"`
}

func Load() *Config {
	// 使用统一配置中心
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 转换为 Config 结构
	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideSMTPFromEnv(&cfg.SMTP)
	config.OverrideChainFromEnv(&cfg.Chain)

	if cfg.Auth.OTPTTLMinutes == 0 {
		cfg.Auth.OTPTTLMinutes = 10
	}

	return &cfg
}
