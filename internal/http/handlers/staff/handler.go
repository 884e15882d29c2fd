package staff

import (
	"strconv"

	handlershared "github.com/hevea-next/internal/http/handlers/shared"
	"github.com/hevea-next/internal/http/response"
	"github.com/hevea-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 一线员工端接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建员工端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getStaffID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "staff_id", "员工标识无效", "员工标识类型无效")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "ID 参数无效", err)
		return 0, false
	}
	return uint(id), true
}
