package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(timeout time.Duration, retries int) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout).
		SetLogger(disableLogger{}).
		SetHeader("Accept", "image/*").
		SetHeader("User-Agent", "chronicle/1.0")
	client.SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
					if t, err := http.ParseTime(retryAfter); err == nil {
						return time.Until(t), nil
					}
				}
			}
			return 0, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	return client
}

// download 自行读取响应体，读到 maxBytes 之后立即停止，不把超限的正文整段放进内存。
func (s *Source) download(ctx context.Context, ref string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(ref)
	if err != nil {
		return nil, fmt.Errorf("下载插图 %s 失败: %w", ref, err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return nil, fmt.Errorf("下载插图 %s 失败: HTTP %d", ref, resp.StatusCode())
	}
	if n := resp.RawResponse.ContentLength; n > s.maxBytes {
		return nil, fmt.Errorf("%w: %s 声明 %d 字节，上限 %d", ErrTooLarge, ref, n, s.maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("下载插图 %s 失败: %w", ref, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s 超过 %d 字节", ErrTooLarge, ref, s.maxBytes)
	}
	return data, nil
}

type disableLogger struct{}

func (d disableLogger) Errorf(string, ...interface{}) {}
func (d disableLogger) Warnf(string, ...interface{})  {}
func (d disableLogger) Debugf(string, ...interface{}) {}
