package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Secret    string `yaml:"secret"`
	PublicURL string `yaml:"public_url"`
}

// DBConfig describes the remote relational store. An empty or placeholder
// host leaves the service in local-cache-only mode.
type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	To      string `yaml:"to"`
	Subject string `yaml:"subject"`
	Timeout int    `yaml:"timeout"`
}

type SmtpConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Database DBConfig      `yaml:"database"`
	Logger   LogConfig     `yaml:"logger"`
	Webhook  WebhookConfig `yaml:"webhook"`
	Smtp     SmtpConfig    `yaml:"smtp"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=America/Sao_Paulo",
		c.Host, c.Port, c.User, c.Passwd, c.Name)
}

// Configured reports whether the remote store credentials look real.
// Placeholder values from config templates count as not configured.
func (c DBConfig) Configured() bool {
	host := strings.TrimSpace(c.Host)
	if host == "" || c.Name == "" {
		return false
	}
	if strings.Contains(host, "placeholder") || strings.Contains(host, "example.com") {
		return false
	}
	return true
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "orderport",
		Location: "America/Sao_Paulo",
		Workdir:  "/var/orderport",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-orderport-b712-1816-secret",
		PublicURL: "http://127.0.0.1:1816",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "orderport",
		User:     "postgres",
		Passwd:   "orderport",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/orderport/orderport.log",
	},
	Webhook: WebhookConfig{
		Subject: "ORDER RECEIVED",
		Timeout: 10,
	},
	Smtp: SmtpConfig{
		Port: 587,
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		f(v)
	}
}

func setEnvBoolValue(name string, val *bool) {
	setEnvValue(name, func(v string) { *val = cast.ToBool(v) })
}

func setEnvIntValue(name string, val *int) {
	setEnvValue(name, func(v string) { *val = cast.ToInt(v) })
}

// LoadConfig reads the YAML config file and applies environment overrides.
// A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig

	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("ORDERPORT_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("ORDERPORT_SYSTEM_LOCATION", func(v string) { cfg.System.Location = v })
	setEnvBoolValue("ORDERPORT_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("ORDERPORT_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("ORDERPORT_WEB_PORT", &cfg.Web.Port)
	setEnvValue("ORDERPORT_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("ORDERPORT_WEB_PUBLIC_URL", func(v string) { cfg.Web.PublicURL = v })

	setEnvValue("ORDERPORT_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("ORDERPORT_DB_PORT", &cfg.Database.Port)
	setEnvValue("ORDERPORT_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("ORDERPORT_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("ORDERPORT_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvBoolValue("ORDERPORT_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("ORDERPORT_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })
	setEnvBoolValue("ORDERPORT_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("ORDERPORT_LOGGER_FILENAME", func(v string) { cfg.Logger.Filename = v })

	setEnvBoolValue("ORDERPORT_WEBHOOK_ENABLED", &cfg.Webhook.Enabled)
	setEnvValue("ORDERPORT_WEBHOOK_URL", func(v string) { cfg.Webhook.URL = v })
	setEnvValue("ORDERPORT_WEBHOOK_TO", func(v string) { cfg.Webhook.To = v })

	setEnvBoolValue("ORDERPORT_SMTP_ENABLED", &cfg.Smtp.Enabled)
	setEnvValue("ORDERPORT_SMTP_HOST", func(v string) { cfg.Smtp.Host = v })
	setEnvIntValue("ORDERPORT_SMTP_PORT", &cfg.Smtp.Port)
	setEnvValue("ORDERPORT_SMTP_USERNAME", func(v string) { cfg.Smtp.Username = v })
	setEnvValue("ORDERPORT_SMTP_PASSWORD", func(v string) { cfg.Smtp.Password = v })
	setEnvValue("ORDERPORT_SMTP_FROM", func(v string) { cfg.Smtp.From = v })

	return cfg
}
