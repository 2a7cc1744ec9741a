package public

import (
	"strconv"

	"github.com/campusbooks/internal/http/handlers/shared"
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

func getSession(c *gin.Context) *service.Session {
	return shared.GetSession(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	shared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	shared.RespondErrorWithMsg(c, code, msg, err)
}

// parseIDParam 解析路径 ID，非法时直接返回 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, ok := shared.ParseUintParam(c, name)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}

// parsePageQuery 读取并归一化分页参数
func parsePageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return shared.NormalizePagination(page, pageSize)
}
