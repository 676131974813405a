package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/davfile/resource"
)

const (
	defaultBind          = ":8080"
	defaultResourceClass = "file"
	defaultRoot          = "."
)

type WebdavConfig struct {
	Root           string `json:"root"`
	ResourceClass  string `json:"resource_class"`
	BaseURI        string `json:"base_uri"`
	SniffCacheSize int64  `json:"sniff_cache_size"` //内容嗅探缓存的条目上限, 0为不缓存
}

type Config struct {
	Bind    string           `json:"bind"`
	LogInfo logger.LogConfig `json:"log_info"`
	Webdav  WebdavConfig     `json:"webdav"`
}

func Default() *Config {
	return &Config{
		Bind: defaultBind,
		Webdav: WebdavConfig{
			Root:          defaultRoot,
			ResourceClass: defaultResourceClass,
		},
	}
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := Default()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode json failed, err:%w", err)
	}
	return c, nil
}

// ResourceOptions 构建所有请求共享的只读选项
func (c *Config) ResourceOptions() *resource.Options {
	return &resource.Options{
		Root:           c.Webdav.Root,
		ResourceClass:  c.Webdav.ResourceClass,
		BaseURI:        c.Webdav.BaseURI,
		SniffCacheSize: c.Webdav.SniffCacheSize,
	}
}
