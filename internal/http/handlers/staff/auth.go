package staff

import (
	"github.com/hevea-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 员工登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	staff, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		response.FromServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"staff": gin.H{
			"id":           staff.ID,
			"username":     staff.Username,
			"display_name": staff.DisplayName,
			"role":         staff.Role,
		},
	})
}
