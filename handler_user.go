package board_sdk

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cydxin/board-sdk/response"
	"github.com/cydxin/board-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 用户（User）相关接口 --------------------

// currentUserID 从 gin.Context 取当前登录用户 ID（需配合 GinAuthMiddleware）。
func currentUserID(ctx *gin.Context) (uint64, bool) {
	uidAny, exists := ctx.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := uidAny.(type) {
	case uint64:
		return v, true
	case float64: // 有些 JSON 解析可能会变成 float64
		return uint64(v), true
	case int:
		return uint64(v), true
	}
	return 0, false
}

// GinHandleGetUserInfo 获取用户信息
// @Summary 获取用户信息
// @Description 根据 user_id 查询账号详情，如果不传 user_id 则查询当前登录用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param user_id query uint64 false "用户ID (不传则查自己)"
// @Success 200 {object} response.Response{data=service.UserDTO} "查询成功"
// @Failure 400 {object} response.Response "参数错误"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /user/info [get]
func (c *BoardEngine) GinHandleGetUserInfo(ctx *gin.Context) {
	userIDStr := ctx.Query("user_id")
	var targetUserID uint64

	if userIDStr != "" {
		id, err := strconv.ParseUint(userIDStr, 10, 64)
		if err != nil || id == 0 {
			ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid user_id"))
			return
		}
		targetUserID = id
	} else {
		uid, ok := currentUserID(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found in context"))
			return
		}
		targetUserID = uid
	}

	u, err := c.UserService.GetUser(targetUserID)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeUserNotFound, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(u))
}

// GinHandleUserRegister 用户注册
// @Summary 用户注册
// @Description 创建新账号：username + (phone/email 二选一) + password + code
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.RegisterReq true "注册信息"
// @Success 200 {object} response.Response "注册成功"
// @Failure 400 {object} response.Response "请求错误"
// @Router /user/register [post]
func (c *BoardEngine) GinHandleUserRegister(ctx *gin.Context) {
	var req service.RegisterReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if c.config == nil || c.config.RDB == nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeRedisNotConfigured, "redis not configured"))
		return
	}

	err := c.UserService.Register(ctx.Request.Context(), req)
	if err != nil {
		code := response.CodeInternalError
		switch {
		case strings.Contains(err.Error(), "required"), strings.Contains(err.Error(), "too short"):
			code = response.CodeParamError
		case strings.Contains(err.Error(), "verification code"):
			code = response.CodeVerifyCodeInvalid
		case strings.Contains(err.Error(), "exists"):
			code = response.CodeUserAlreadyExists
		case strings.Contains(err.Error(), "redis"):
			code = response.CodeRedisNotConfigured
		}
		ctx.JSON(http.StatusOK, response.Error(code, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleUserLogin 用户登录
// @Summary 用户登录
// @Description 登录并返回 token（account 支持 username/phone/email）
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.LoginReq true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResp} "登录响应（token + 用户信息）"
// @Failure 401 {object} response.Response "认证失败"
// @Router /user/login [post]
func (c *BoardEngine) GinHandleUserLogin(ctx *gin.Context) {
	var req service.LoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeParamError, err.Error()))
		return
	}

	resp, err := c.UserService.LoginWithToken(ctx.Request.Context(), req)
	if err != nil {
		code := response.CodePasswordError
		if strings.Contains(err.Error(), "required") {
			code = response.CodeParamError
		}
		ctx.JSON(http.StatusOK, response.Error(code, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(resp))
}

// GinHandleSignOut 登出
// @Summary 登出
// @Description 注销当前 token；跳转由前端负责
// @Tags 用户
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /user/signout [post]
func (c *BoardEngine) GinHandleSignOut(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}
	token, _ := ctx.Get("token")
	tokenStr, _ := token.(string)

	if err := c.UserService.SignOut(ctx.Request.Context(), tokenStr, uid); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// --- 验证码 ---

type SendVerifyCodeReq struct {
	Purpose    string `json:"purpose" binding:"required" example:"register"`     // register/forgot_password
	Identifier string `json:"identifier" binding:"required" example:"a@b.edu"` // 手机号或邮箱
}

// GinHandleSendVerifyCode 发送验证码（写入 Redis；实际短信/邮件发送由调用方对接）
// @Summary 发送验证码
// @Description 发送验证码到手机号/邮箱（identifier=手机号/邮箱），purpose=register/forgot_password
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body SendVerifyCodeReq true "发送验证码请求"
// @Success 200 {object} response.Response{data=service.SendCodeResult} "发送成功"
// @Failure 400 {object} response.Response "请求错误"
// @Router /user/code/send [post]
func (c *BoardEngine) GinHandleSendVerifyCode(ctx *gin.Context) {
	var req SendVerifyCodeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}
	if c.config == nil || c.config.RDB == nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeRedisNotConfigured, "redis not configured"))
		return
	}

	purpose := service.VerifyCodePurpose(req.Purpose)
	if purpose != service.VerifyCodePurposeRegister && purpose != service.VerifyCodePurposeForgotPassword {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid purpose"))
		return
	}

	ret, err := service.NewVerifyCodeService(c.config.RDB).SendCode(ctx.Request.Context(), purpose, req.Identifier)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	// Debug 模式下把 code 一并返回，方便联调；线上由发送通道送达
	if !c.config.Service.Debug {
		ret.Code = ""
	}
	ctx.JSON(http.StatusOK, response.Success(ret))
}

// GinHandleForgotPassword 找回密码
// @Summary 找回密码
// @Description 验证码校验通过后重置密码并全端下线
// @Tags 用户
// @Accept json
// @Produce json
// @Param req body service.ForgotPasswordReq true "请求参数"
// @Success 200 {object} response.Response
// @Router /user/password/forgot [post]
func (c *BoardEngine) GinHandleForgotPassword(ctx *gin.Context) {
	var req service.ForgotPasswordReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.UserService.ForgotPassword(ctx.Request.Context(), req); err != nil {
		code := response.CodeInternalError
		switch {
		case strings.Contains(err.Error(), "required"), strings.Contains(err.Error(), "too short"):
			code = response.CodeParamError
		case strings.Contains(err.Error(), "verification code"):
			code = response.CodeVerifyCodeInvalid
		case strings.Contains(err.Error(), "not found"):
			code = response.CodeUserNotFound
		}
		ctx.JSON(http.StatusOK, response.Error(code, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(nil))
}
