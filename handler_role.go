package board_sdk

import (
	"net/http"

	"github.com/cydxin/board-sdk/response"
	"github.com/cydxin/board-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 角色档案（Setup）相关接口 --------------------

// GinHandleSetupRole 写入角色档案（一次性）
// @Summary 完成账号 setup
// @Description 首次登录后写入 role + full_name；角色写入后不可变
// @Tags 角色
// @Accept json
// @Produce json
// @Param req body service.SetupRoleReq true "请求参数"
// @Success 200 {object} response.Response{data=service.RoleDTO}
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /role/setup [post]
func (c *BoardEngine) GinHandleSetupRole(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	var req service.SetupRoleReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	dto, err := c.RoleService.SetupRole(uid, req)
	if err != nil {
		code := response.CodeInternalError
		switch err.Error() {
		case "full_name is required", "invalid role":
			code = response.CodeParamError
		case "role already set":
			code = response.CodeRoleAlreadySet
		}
		ctx.JSON(http.StatusOK, response.Error(code, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleGetMyRole 查询自己的角色档案
// @Summary 查询角色档案
// @Description 未设置时 data 为空，code=CodeRoleNotSet，前端据此引导 setup
// @Tags 角色
// @Accept json
// @Produce json
// @Success 200 {object} response.Response{data=service.RoleDTO}
// @Security BearerAuth
// @Router /role/me [get]
func (c *BoardEngine) GinHandleGetMyRole(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	dto, err := c.RoleService.GetRole(uid)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	if dto == nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeRoleNotSet, "role not set"))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(dto))
}
