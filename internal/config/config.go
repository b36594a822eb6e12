// Package config 从 .env 文件和环境变量读取运行配置。
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config 运行配置
type Config struct {
	WorkDir           string `mapstructure:"work_dir"`
	ListenAddr        string `mapstructure:"listen_addr"`
	Port              string `mapstructure:"port"`
	LogLevel          string `mapstructure:"log_level"`
	LogPretty         bool   `mapstructure:"log_pretty"`
	InboxDir          string `mapstructure:"inbox_dir"`
	MaxUploadMB       int    `mapstructure:"max_upload_mb"`
	ImportReplaceAll  bool   `mapstructure:"import_replace_all"`
	JoinContinuations bool   `mapstructure:"join_continuations"`
	DayFirst          bool   `mapstructure:"day_first"`
	StaticDir         string `mapstructure:"static_dir"`
	PasswordHash      string `mapstructure:"password_hash"`
	OpenBrowser       bool   `mapstructure:"open_browser"`
}

var defaults = map[string]interface{}{
	"WORK_DIR":           "data",
	"LISTEN_ADDR":        "",
	"PORT":               "",
	"LOG_LEVEL":          "info",
	"LOG_PRETTY":         true,
	"INBOX_DIR":          "",
	"MAX_UPLOAD_MB":      64,
	"IMPORT_REPLACE_ALL": false,
	"JOIN_CONTINUATIONS": false,
	"DAY_FIRST":          true,
	"STATIC_DIR":         "",
	"PASSWORD_HASH":      "",
	"OPEN_BROWSER":       false,
}

// Load 读取 .env 配置文件 (不存在时自动创建) 与同名环境变量
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// 文件不存在，尝试创建默认配置
			if err := viper.SafeWriteConfigAs(path); err != nil {
				log.Warn().Err(err).Msg("无法创建默认 .env 文件")
			} else {
				log.Info().Str("path", path).Msg("已自动创建并初始化 .env 配置文件")
			}
		} else {
			log.Warn().Err(err).Msg("读取 .env 文件出错，将使用默认值或环境变量")
		}
	}

	return decode(viper.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 64
	}
	return &cfg, nil
}

// Addr 监听地址：优先使用 LISTEN_ADDR，其次使用 PORT，最后默认 127.0.0.1:5200
func (c *Config) Addr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	if c.Port != "" {
		return "127.0.0.1:" + c.Port
	}
	return "127.0.0.1:5200"
}

// MaxUploadBytes 上传大小上限
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// PasswordHash 当前的访问密码哈希，为空表示未开启
func PasswordHash() string {
	return viper.GetString("PASSWORD_HASH")
}

// SavePasswordHash 更新访问密码哈希并写回配置文件
func SavePasswordHash(hash string) error {
	viper.Set("PASSWORD_HASH", hash)
	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}
	return nil
}
