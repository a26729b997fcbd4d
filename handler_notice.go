package board_sdk

import (
	"net/http"
	"strconv"

	model "github.com/cydxin/board-sdk/models"
	"github.com/cydxin/board-sdk/response"
	"github.com/cydxin/board-sdk/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 公告（Notice）相关接口 --------------------

// GinHandleListNotices 查询公告列表（带创建者名字冗余）
// @Summary 查询公告列表
// @Description mine=true 只看自己发布的；only_active=true 只看未过期的；
// @Description department/year 是展示端收窄，不影响查询层过滤语义
// @Tags 公告
// @Accept json
// @Produce json
// @Param mine query bool false "只看自己发布的"
// @Param only_active query bool false "只看未过期的"
// @Param department query string false "院系收窄 CSE/IT/ECE/MECH/CIVIL"
// @Param year query string false "年级收窄 1st/2nd/3rd/4th"
// @Success 200 {object} response.Response{data=[]service.EnrichedNotice}
// @Security BearerAuth
// @Router /notice/list [get]
func (c *BoardEngine) GinHandleListNotices(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	var f model.NoticeFilter
	if ctx.DefaultQuery("mine", "false") == "true" {
		f.CreatedBy = uid
	}
	f.OnlyActive = ctx.DefaultQuery("only_active", "false") == "true"

	items, err := c.NoticeService.FetchNotices(f)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	// 展示端收窄（院系/年级），过滤语义仍然只有 mine/only_active
	department := ctx.Query("department")
	year := ctx.Query("year")
	if department != "" || year != "" {
		narrowed := make([]service.EnrichedNotice, 0, len(items))
		for _, it := range items {
			if department != "" && it.Department != department {
				continue
			}
			if year != "" && it.Year != year {
				continue
			}
			narrowed = append(narrowed, it)
		}
		items = narrowed
	}

	ctx.JSON(http.StatusOK, response.Success(items))
}

// GinHandleCreateNotice 发布公告
// @Summary 发布公告
// @Description 仅 faculty；created_by/created_at 由服务端填
// @Tags 公告
// @Accept json
// @Produce json
// @Param req body service.CreateNoticeReq true "公告内容"
// @Success 200 {object} response.Response{data=service.EnrichedNotice}
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /notice/create [post]
func (c *BoardEngine) GinHandleCreateNotice(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	var req service.CreateNoticeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	dto, err := c.NoticeService.CreateNotice(uid, req)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(noticeErrCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleUpdateNotice 更新公告
// @Summary 更新公告
// @Description 仅创建者本人可改
// @Tags 公告
// @Accept json
// @Produce json
// @Param id query uint64 true "公告ID"
// @Param req body service.UpdateNoticeReq true "变更字段"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /notice/update [post]
func (c *BoardEngine) GinHandleUpdateNotice(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	id, err := strconv.ParseUint(ctx.Query("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	var req service.UpdateNoticeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.NoticeService.UpdateNotice(uid, id, req); err != nil {
		ctx.JSON(http.StatusOK, response.Error(noticeErrCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleDeleteNotice 删除公告
// @Summary 删除公告
// @Description 仅创建者本人可删
// @Tags 公告
// @Accept json
// @Produce json
// @Param id query uint64 true "公告ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /notice/delete [delete]
func (c *BoardEngine) GinHandleDeleteNotice(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	id, err := strconv.ParseUint(ctx.Query("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid id"))
		return
	}

	if err := c.NoticeService.DeleteNotice(uid, id); err != nil {
		ctx.JSON(http.StatusOK, response.Error(noticeErrCode(err), err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleNoticeWS 公告 live view 的 WebSocket 入口
// @Summary 公告 live view
// @Description 连接后先推一次全量，之后公告集合每次变化推完整列表
// @Tags 公告
// @Param mine query bool false "只看自己发布的"
// @Param only_active query bool false "只看未过期的"
// @Security QueryToken
// @Router /notice/ws [get]
func (c *BoardEngine) GinHandleNoticeWS(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	var f model.NoticeFilter
	if ctx.DefaultQuery("mine", "false") == "true" {
		f.CreatedBy = uid
	}
	f.OnlyActive = ctx.DefaultQuery("only_active", "false") == "true"

	c.WsServer.ServeWS(ctx.Writer, ctx.Request, uid, f)
}

func noticeErrCode(err error) int {
	switch err.Error() {
	case "notice not found":
		return response.CodeNoticeNotFound
	case "permission denied":
		return response.CodePermissionDeny
	case "actor_id is required", "notice_id is required",
		"title is required", "description is required",
		"invalid department", "invalid year",
		"invalid expiry_date, want YYYY-MM-DD":
		return response.CodeParamError
	}
	return response.CodeInternalError
}
