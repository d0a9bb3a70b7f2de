// Package config 从 CHRONICLE_* 环境变量读取命令行的默认设置，命令行参数可以覆盖它们。
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ByLCY/chronicle/layout"
)

// Backends 是可选的渲染后端名称。
var Backends = []string{"canvas", "fpdf", "debug"}

// Config 是命令行的运行配置。
type Config struct {
	OutputDir    string        `env:"CHRONICLE_OUTPUT_DIR"    envDefault:"."`
	Theme        string        `env:"CHRONICLE_THEME"         envDefault:"chronicle"`
	ThemeFile    string        `env:"CHRONICLE_THEME_FILE"`
	Backend      string        `env:"CHRONICLE_BACKEND"       envDefault:"canvas"`
	PageSize     string        `env:"CHRONICLE_PAGE_SIZE"     envDefault:"a4"`
	Suffix       string        `env:"CHRONICLE_SUFFIX"        envDefault:"Chronicle"`
	DBPath       string        `env:"CHRONICLE_DB"            envDefault:"chronicle.db"`
	AssetDir     string        `env:"CHRONICLE_ASSET_DIR"`
	FetchTimeout time.Duration `env:"CHRONICLE_FETCH_TIMEOUT" envDefault:"20s"`
	FetchRetries int           `env:"CHRONICLE_FETCH_RETRIES" envDefault:"2"`
	Verbose      bool          `env:"CHRONICLE_VERBOSE"`
	OTelEndpoint string        `env:"CHRONICLE_OTEL_ENDPOINT"`
}

// Load 解析环境变量并校验结果。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查取值范围。命令行覆盖参数之后应再次调用。
func (c Config) Validate() error {
	if !slices.Contains(Backends, strings.ToLower(c.Backend)) {
		return fmt.Errorf("未知的渲染后端 %q（可选 %s）", c.Backend, strings.Join(Backends, ", "))
	}
	if _, ok := layout.PageSize(c.PageSize); !ok {
		return fmt.Errorf("未知的纸张尺寸 %q", c.PageSize)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("插图下载超时必须为正数: %s", c.FetchTimeout)
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("插图下载重试次数不能为负数: %d", c.FetchRetries)
	}
	return nil
}

// Size 返回横向的页面尺寸。
func (c Config) Size() layout.Size {
	size, ok := layout.PageSize(c.PageSize)
	if !ok {
		size = layout.A4
	}
	return size.Landscape()
}
