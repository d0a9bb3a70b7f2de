// Package story 定义插画故事的数据模型，字段与故事存档的 JSON 格式一致。
package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"time"
)

// ErrInvalid 表示故事缺少导出所必需的字段。
var ErrInvalid = errors.New("invalid story")

// CastMember 是故事中的一个角色。
type CastMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Page 是故事中的一页：一段正文加可选的插图与旁白。
type Page struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
	// ImageURL 可以是 data URL、http(s) 地址或本地路径。
	ImageURL string `json:"imageUrl,omitempty"`
	// AudioData 是 base64 编码的旁白音频，导出时不会读取。
	AudioData string `json:"audioData,omitempty"`

	// Image 是已解码的插图；非空时优先于 ImageURL。
	Image image.Image `json:"-"`
}

// Story 是导出器读取的只读快照。
type Story struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Genre      string       `json:"genre"`
	Mood       string       `json:"mood"`
	Style      string       `json:"style"`
	Plot       string       `json:"plot,omitempty"`
	Cast       []CastMember `json:"cast,omitempty"`
	Pages      []Page       `json:"pages"`
	CreatedAt  int64        `json:"createdAt"` // unix 毫秒
	IsFavorite bool         `json:"isFavorite"`
}

// Created 返回创建时间。
func (s *Story) Created() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// Validate 检查导出所需的最少字段。页数不设上下限。
func (s *Story) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: 故事为空", ErrInvalid)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: 标题不能为空", ErrInvalid)
	}
	return nil
}

// Load 从 JSON 读取一个故事。
func Load(r io.Reader) (*Story, error) {
	var s Story
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("解析故事 JSON 失败: %w", err)
	}
	return &s, nil
}

// LoadFile 从文件读取一个故事。
func LoadFile(path string) (*Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开故事文件 %s: %w", path, err)
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Write 以缩进 JSON 输出故事。
func Write(w io.Writer, s *Story) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
