// Package client 是 FridgeChef 後端 REST API 的 HTTP 客戶端。
//
// 每個呼叫只嘗試一次，不重試也不退避；逾時由設定決定，預設不設。
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fridgechef/internal/core/session"
	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Error 後端回報的錯誤，只保留訊息
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsBackendError 檢查是否為後端回報的錯誤
func IsBackendError(err error) bool {
	var be *Error
	return errors.As(err, &be)
}

// Client 後端 API 客戶端
type Client struct {
	http    *resty.Client
	session session.Store
}

// NewClient 創建後端 API 客戶端
func NewClient(cfg config.BackendConfig, store session.Store) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:    httpClient,
		session: store,
	}
}

// call 描述一次 API 呼叫
type call struct {
	method     string
	path       string
	pathParams map[string]string
	query      url.Values
	body       interface{}
	auth       bool
	fallback   string
}

// do 執行呼叫並把成功的 JSON 回應解析到 out
func (c *Client) do(ctx context.Context, in call, out interface{}) error {
	requestID := common.GenerateUUID()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID)

	if in.auth {
		if token := c.token(ctx); token != "" {
			req.SetAuthToken(token)
		}
	}
	if in.pathParams != nil {
		req.SetPathParams(in.pathParams)
	}
	if len(in.query) > 0 {
		req.SetQueryParamsFromValues(in.query)
	}
	if in.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(in.body)
	}

	start := time.Now()
	resp, err := req.Execute(in.method, in.path)
	if err != nil {
		common.LogBackendCall(in.method, in.path, 0, time.Since(start), err, requestID)
		return fmt.Errorf("%s %s: %w", in.method, in.path, err)
	}

	if !resp.IsSuccess() {
		apiErr := parseError(resp.Body(), in.fallback)
		common.LogBackendCall(in.method, in.path, resp.StatusCode(), time.Since(start), apiErr, requestID)
		return apiErr
	}
	common.LogBackendCall(in.method, in.path, resp.StatusCode(), time.Since(start), nil, requestID)

	if out == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}
	if err := common.ParseJSONBytes(resp.Body(), out); err != nil {
		common.LogError("無法解析後端回應",
			zap.String("path", in.path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to parse response from %s: %w", in.path, err)
	}
	return nil
}

// token 每次呼叫都從登入狀態重新讀取
func (c *Client) token(ctx context.Context) string {
	s, err := c.session.Get(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			common.LogWarn("讀取登入狀態失敗", zap.Error(err))
		}
		return ""
	}
	return s.Token
}

// parseError 依序取 message、error 欄位，都沒有時使用預設訊息
func parseError(body []byte, fallback string) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := common.ParseJSONBytes(body, &payload); err == nil {
		if payload.Message != "" {
			return &Error{Message: payload.Message}
		}
		if payload.Error != "" {
			return &Error{Message: payload.Error}
		}
	}
	return &Error{Message: fallback}
}
