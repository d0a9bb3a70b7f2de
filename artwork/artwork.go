// Package artwork 负责获取并解码故事插图，并提供 cover 裁切与重采样。
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnsupportedSource 表示插图地址的协议无法识别。
var ErrUnsupportedSource = errors.New("unsupported artwork source")

// ErrTooLarge 表示插图超过字节数或像素数上限。
var ErrTooLarge = errors.New("artwork too large")

// DefaultMaxPixels 约为 A4 横向半页在 600 dpi 下的像素数。
const DefaultMaxPixels = 40_000_000

// Loader 根据页面上的插图地址返回解码后的图片。
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Options 配置 Source。
type Options struct {
	// BaseDir 用于解析相对路径；为空时使用当前目录。
	BaseDir string
	// Timeout 是单次 HTTP 请求的超时时间，默认 20s。
	Timeout time.Duration
	// Retries 是 HTTP 请求失败后的重试次数；0 取默认值 2，负数表示不重试。
	Retries int
	// MaxBytes 限制单张插图的大小，默认 32MiB。下载与读取文件时超出即停止。
	MaxBytes int64
	// MaxPixels 限制解码后的像素数（宽×高），默认 40M。解码前按图片头判断。
	MaxPixels int64
	// Client 允许替换底层 HTTP 客户端，主要供测试使用。
	Client *resty.Client
}

// Source 支持 data URL、http(s) 地址、file:// 以及本地路径。
type Source struct {
	baseDir   string
	maxBytes  int64
	maxPixels int64
	client    *resty.Client
}

var _ Loader = (*Source)(nil)

// NewSource 创建插图加载器。
func NewSource(opts Options) *Source {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = 2
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 32 << 20
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	client := opts.Client
	if client == nil {
		client = newClient(opts.Timeout, opts.Retries)
	}
	return &Source{baseDir: opts.BaseDir, maxBytes: opts.MaxBytes, maxPixels: opts.MaxPixels, client: client}
}

// Load 获取并解码 ref 指向的插图。ref 为空时返回 (nil, nil)，表示该页没有插图。
func (s *Source) Load(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	data, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s 超过 %d 字节", ErrTooLarge, describe(ref), s.maxBytes)
	}
	img, _, err := DecodeLimited(data, s.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("插图 %s: %w", describe(ref), err)
	}
	return img, nil
}

func (s *Source) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch scheme := schemeOf(ref); scheme {
	case "data":
		return ParseDataURL(ref)
	case "http", "https":
		return s.download(ctx, ref)
	case "file":
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("无效的文件地址 %s: %w", ref, err)
		}
		return s.readFile(u.Path)
	case "":
		return s.readFile(ref)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, scheme)
	}
}

func (s *Source) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取插图 %s 失败: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取插图 %s 失败: %w", path, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s 超过 %d 字节", ErrTooLarge, path, s.maxBytes)
	}
	return data, nil
}

// schemeOf 返回小写协议名；Windows 盘符和普通路径返回空串。
func schemeOf(ref string) string {
	i := strings.Index(ref, ":")
	if i <= 1 {
		return ""
	}
	scheme := strings.ToLower(ref[:i])
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return ""
		}
	}
	return scheme
}

// describe 缩短 data URL，避免把整段 base64 写进日志。
func describe(ref string) string {
	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		if i := strings.Index(ref, ","); i > 0 {
			return ref[:i] + ",…"
		}
	}
	return ref
}
