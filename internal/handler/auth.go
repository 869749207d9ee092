package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/centaura/cms/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	sessionUserKey     = "user_id"
	sessionUsernameKey = "username"
	sessionCSRFKey     = "csrf_token"

	// CSRFHeader carries the token on API writes; forms use the csrf_token field.
	CSRFHeader    = "X-CSRFToken"
	csrfFormField = "csrf_token"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// csrfToken 返回会话中的 CSRF token，不存在时生成并保存。
func (a *API) csrfToken(c *gin.Context) string {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionCSRFKey).(string); ok && token != "" {
		return token
	}

	token := uuid.NewString()
	session.Set(sessionCSRFKey, token)
	if err := session.Save(); err != nil {
		a.log.Warn("save csrf token failed", "error", err)
	}
	return token
}

// CSRFToken 返回当前会话的 CSRF token，客户端在写请求中通过 X-CSRFToken 回传。
func (a *API) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrfToken": a.csrfToken(c)})
}

// Login 校验用户名密码并建立会话，接受 JSON 或表单。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		if verr := validationError(err); verr != nil {
			respondValidation(c, verr)
			return
		}
		respondError(c, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := a.authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		a.log.Error("login failed", "error", err)
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := a.startSession(c, user)
	if err != nil {
		a.log.Error("save session failed", "error", err)
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": user.Username, "csrfToken": token})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.log.Warn("clear session failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// Session reports whether the caller is signed in.
func (a *API) Session(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionUserKey) == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      session.Get(sessionUsernameKey),
	})
}

func (a *API) authenticate(username, password string) (*db.User, error) {
	return db.Authenticate(a.db, username, password)
}

// startSession 写入用户信息并轮换 CSRF token。
func (a *API) startSession(c *gin.Context, user *db.User) (string, error) {
	token := uuid.NewString()

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	session.Set(sessionCSRFKey, token)
	if err := session.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// APIAuthRequired 拒绝未登录的 API 请求
func APIAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserKey) == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRequired 是后台页面的认证中间件，未登录时跳转到登录页
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserKey) == nil {
			target := "/dashboard/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFProtected 校验非安全方法携带的 token 与会话中的一致。
func CSRFProtected() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		expected, _ := sessions.Default(c).Get(sessionCSRFKey).(string)
		provided := strings.TrimSpace(c.GetHeader(CSRFHeader))
		if provided == "" {
			provided = strings.TrimSpace(c.PostForm(csrfFormField))
		}

		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			respondError(c, http.StatusForbidden, "CSRF token missing or incorrect")
			c.Abort()
			return
		}
		c.Next()
	}
}

// safeNext 只允许跳转到后台内部路径
func safeNext(raw string) string {
	if strings.HasPrefix(raw, "/dashboard") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	return "/dashboard"
}
