package config

import (
	"errors"
	"time"
)

// LogUploadConfig 周期性日志上传配置
type LogUploadConfig struct {
	// Enable 是否启用周期上传
	Enable bool `json:"enable"`

	// Period 两次上传的最小间隔
	Period Duration `json:"period"`

	// CheckInterval 检查上传条件的间隔
	CheckInterval Duration `json:"check_interval"`
}

// DefaultLogUploadConfig 返回默认日志上传配置
func DefaultLogUploadConfig() LogUploadConfig {
	return LogUploadConfig{
		Enable:        true,
		Period:        Duration(5 * time.Minute),
		CheckInterval: Duration(10 * time.Second),
	}
}

// Validate 验证日志上传配置
func (c LogUploadConfig) Validate() error {
	if !c.Enable {
		return nil
	}
	if c.Period <= 0 {
		return errors.New("log upload period must be positive")
	}
	if c.CheckInterval <= 0 {
		return errors.New("log upload check interval must be positive")
	}
	return nil
}
