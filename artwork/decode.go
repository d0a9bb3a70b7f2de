package artwork

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode 识别并解码 JPEG、PNG、GIF、WebP、BMP 与 TIFF。
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("图片数据为空")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("解码图片失败: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, format, fmt.Errorf("图片尺寸为零")
	}
	return img, format, nil
}

// DecodeLimited 先读取图片头，宽×高超过 maxPixels 时不解码像素并返回 ErrTooLarge。
func DecodeLimited(data []byte, maxPixels int64) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("解码图片失败: %w", err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, format, fmt.Errorf("%w: %dx%d 超过 %d 像素", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return Decode(data)
}

// ParseDataURL 解析 data:[<mediatype>][;base64],<data> 并返回负载字节。
func ParseDataURL(ref string) ([]byte, error) {
	if !strings.HasPrefix(strings.ToLower(ref), "data:") {
		return nil, fmt.Errorf("%w: 不是 data URL", ErrUnsupportedSource)
	}
	comma := strings.Index(ref, ",")
	if comma < 0 {
		return nil, fmt.Errorf("data URL 缺少逗号分隔符")
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]
	isBase64 := false
	for _, param := range strings.Split(meta, ";") {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		out, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("data URL 解码失败: %w", err)
		}
		return []byte(out), nil
	}
	payload = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	out, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		out, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("data URL base64 解码失败: %w", err)
	}
	return out, nil
}
