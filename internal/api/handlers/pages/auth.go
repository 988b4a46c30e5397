package pages

import (
	"net/http"

	"fridgechef/internal/api/middleware"
	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Landing 首頁，已登入時導向 dashboard
func (h *Handler) Landing(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		redirect(c, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "landing.html", gin.H{"Title": "Fridge Chef"})
}

// LoginForm 登入頁
func (h *Handler) LoginForm(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		redirect(c, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Sign In", "Email": ""})
}

// Login 送出登入表單，失敗時保留 email 重新顯示
func (h *Handler) Login(c *gin.Context) {
	req := common.LoginRequest{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}
	if _, err := h.sync.Login(c.Request.Context(), req); err != nil {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title": "Sign In",
			"Email": req.Email,
		})
		return
	}
	redirect(c, "/dashboard")
}

// RegisterForm 註冊頁
func (h *Handler) RegisterForm(c *gin.Context) {
	if middleware.CurrentSession(c) != nil {
		redirect(c, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":    "Create Account",
		"Email":    "",
		"Username": "",
	})
}

// Register 送出註冊表單
func (h *Handler) Register(c *gin.Context) {
	req := common.RegisterRequest{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Username: c.PostForm("username"),
	}
	if _, err := h.sync.Register(c.Request.Context(), req); err != nil {
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title":    "Create Account",
			"Email":    req.Email,
			"Username": req.Username,
		})
		return
	}
	redirect(c, "/dashboard")
}

// Logout 登出並清除草稿
func (h *Handler) Logout(c *gin.Context) {
	if id := userID(c); id != "" {
		h.recipes.Workbench().Reset(id)
	}
	if err := h.sync.Logout(c.Request.Context()); err != nil {
		_ = c.Error(err)
	}
	redirect(c, "/login")
}
