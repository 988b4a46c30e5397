package datasync

import (
	"context"
	"strings"

	"fridgechef/internal/core/session"
	"fridgechef/internal/pkg/common"

	"go.uber.org/zap"
)

// Register 註冊並保存登入狀態；錯誤訊息沿用後端回報的內容
func (s *Service) Register(ctx context.Context, req common.RegisterRequest) (*common.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		s.Notifications(ctx).Error(MsgCredentialsRequired)
		return nil, common.NewValidationError(MsgCredentialsRequired)
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.Notifications(ctx).Error(err.Error())
		return nil, err
	}
	if err := s.startSession(ctx, resp); err != nil {
		return nil, err
	}
	s.Notifications(ctx).Success(MsgAccountCreated)
	return resp, nil
}

// Login 登入並保存登入狀態
func (s *Service) Login(ctx context.Context, req common.LoginRequest) (*common.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		s.Notifications(ctx).Error(MsgCredentialsRequired)
		return nil, common.NewValidationError(MsgCredentialsRequired)
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		s.Notifications(ctx).Error(err.Error())
		return nil, err
	}
	if err := s.startSession(ctx, resp); err != nil {
		return nil, err
	}
	s.Notifications(ctx).Success(MsgWelcomeBack)
	return resp, nil
}

// Logout 通知後端（失敗只記錄），清除登入狀態與此瀏覽器的快取
func (s *Service) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		common.LogWarn("後端登出失敗", zap.Error(err))
	}

	s.resetCache(ctx)
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.Notifications(ctx).Info(MsgSignedOut)
	return nil
}

// startSession 換帳號時清空快取，避免看到前一位使用者的資料
func (s *Service) startSession(ctx context.Context, resp *common.AuthResponse) error {
	s.resetCache(ctx)
	if err := s.session.Set(ctx, &session.Session{Token: resp.Token, User: resp.User}); err != nil {
		common.LogError("保存登入狀態失敗", zap.Error(err))
		return err
	}
	common.LogInfo("使用者已登入",
		zap.String("user_id", resp.User.ID),
		zap.String("username", resp.User.Username),
	)
	return nil
}
