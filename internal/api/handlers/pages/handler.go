// Package pages 以伺服器端渲染的 HTML 頁面呈現資料同步層。
package pages

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fridgechef/internal/api/middleware"
	"fridgechef/internal/core/datasync"
	"fridgechef/internal/core/markdown"
	"fridgechef/internal/core/mealplan"
	"fridgechef/internal/core/notify"
	"fridgechef/internal/core/recipe"
	"fridgechef/internal/core/session"
	"fridgechef/internal/infrastructure/config"
	"fridgechef/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// previewLength 食譜卡片預覽的字元數
const previewLength = 200

// Handler 頁面處理器
type Handler struct {
	cfg     *config.Config
	sync    *datasync.Service
	recipes *recipe.Service
	now     func() time.Time
}

// NewHandler 創建頁面處理器
func NewHandler(cfg *config.Config, sync *datasync.Service, recipes *recipe.Service) *Handler {
	return &Handler{
		cfg:     cfg,
		sync:    sync,
		recipes: recipes,
		now:     time.Now,
	}
}

// Templates 解析內嵌的頁面模板
func (h *Handler) Templates() (*template.Template, error) {
	return template.New("").Funcs(h.funcMap()).ParseFS(templateFS, "templates/*.html")
}

func (h *Handler) funcMap() template.FuncMap {
	return template.FuncMap{
		"markdown": func(content, style string) template.HTML {
			switch style {
			case "card":
				return markdown.Render(content, markdown.Card)
			case "shared":
				return markdown.Render(content, markdown.Shared)
			default:
				return markdown.Render(content, markdown.Display)
			}
		},
		"preview": func(content string) string {
			return markdown.Preview(content, previewLength)
		},
		"firstN": func(list []string, n int) []string {
			if len(list) > n {
				return list[:n]
			}
			return list
		},
		"moreThan": func(list []string, n int) int {
			if len(list) > n {
				return len(list) - n
			}
			return 0
		},
		"shareURL":    h.shareURL,
		"recipesLink": recipesLink,
		"entryTitle":  mealplan.EntryTitle,
		"mealLabel": func(m common.MealType) string {
			s := string(m)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
	}
}

// shareURL 公開分享頁的完整網址
func (h *Handler) shareURL(token string) string {
	return strings.TrimRight(h.cfg.PublicURL, "/") + "/shared/" + url.PathEscape(token)
}

// render 加上共用欄位；只有帶瀏覽器 session 的請求才取出待顯示的訊息
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	ctx := c.Request.Context()

	var notes []notify.Notification
	if _, ok := session.IDFromContext(ctx); ok {
		notes = h.sync.Notifications(ctx).Drain()
	}

	data["Session"] = middleware.CurrentSession(c)
	data["Path"] = c.Request.URL.Path
	data["AppName"] = "Fridge Chef"
	data["Notes"] = notes
	c.HTML(status, name, data)
}

// redirect 表單送出後一律使用 303
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// userID 草稿以使用者區分；沒有 id 時用 email
func userID(c *gin.Context) string {
	s := middleware.CurrentSession(c)
	if s == nil {
		return ""
	}
	if s.User.ID != "" {
		return s.User.ID
	}
	return s.User.Email
}

// NotFound 找不到頁面
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not_found.html", gin.H{
		"Title":   "Page not found",
		"Message": common.ErrNotFound.Message,
	})
}
