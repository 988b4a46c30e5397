package client

import (
	"context"
	"net/http"

	"fridgechef/internal/pkg/common"
)

// Register 註冊新使用者
func (c *Client) Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResponse, error) {
	var resp common.BackendAuthResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     req,
		fallback: "Registration failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toAuthResponse(resp, req.Email), nil
}

// Login 以 email 與密碼登入
func (c *Client) Login(ctx context.Context, req common.LoginRequest) (*common.AuthResponse, error) {
	var resp common.BackendAuthResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     req,
		fallback: "Login failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toAuthResponse(resp, req.Email), nil
}

// Logout 通知後端清除 cookie
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/logout",
		fallback: "Logout failed",
	}, nil)
}

// toAuthResponse 後端回應不含 email，沿用請求中的 email
func toAuthResponse(resp common.BackendAuthResponse, email string) *common.AuthResponse {
	return &common.AuthResponse{
		Token: resp.AccessToken,
		User: common.User{
			ID:       resp.ID,
			Username: resp.Username,
			Email:    email,
		},
	}
}
