package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/krunal16-c/saskhack/internal/service"
	"github.com/krunal16-c/saskhack/pkg/response"
)

// 由 JWTAuth 中间件注入的上下文键
const (
	CtxExternalID = "external_id"
	CtxEmail      = "email"
	CtxName       = "name"
	CtxRole       = "role"
)

// CtxRequestID 由 RequestID 中间件注入
const CtxRequestID = "request_id"

// MustGetExternalID 从 Gin 上下文中安全提取身份提供方用户 ID。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetExternalID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxExternalID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(CtxRole)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetIdentity 汇总 Token 声明中的身份信息
func MustGetIdentity(c *gin.Context) (service.Identity, bool) {
	externalID, ok := MustGetExternalID(c)
	if !ok {
		return service.Identity{}, false
	}
	return service.Identity{
		ExternalID: externalID,
		Email:      c.GetString(CtxEmail),
		Name:       c.GetString(CtxName),
		Role:       c.GetString(CtxRole),
	}, true
}
