package board_sdk

import (
	"net/http"
	"strconv"

	"github.com/cydxin/board-sdk/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 公告事件（Event）相关接口 --------------------

// GinHandleListNoticeEvents 拉取公告事件（默认近 2 天）
// @Summary 拉取公告事件
// @Tags 事件
// @Accept json
// @Produce json
// @Param days query int false "近 N 天(默认2)"
// @Param cursor query uint64 false "游标(上一页最小id)"
// @Param limit query int false "条数(默认50,最大200)"
// @Param unread_only query bool false "只看未读"
// @Success 200 {object} response.Response{data=map[string]interface{}} "data.items + data.next_cursor"
// @Security BearerAuth
// @Router /event/list [get]
func (c *BoardEngine) GinHandleListNoticeEvents(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "2"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	cursor, _ := strconv.ParseUint(ctx.DefaultQuery("cursor", "0"), 10, 64)
	unreadOnly := ctx.DefaultQuery("unread_only", "false") == "true"

	items, nextCursor, err := c.EventService.ListUserEvents(uid, days, cursor, limit, unreadOnly)
	if err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(map[string]any{
		"items":       items,
		"next_cursor": nextCursor,
	}))
}

type MarkEventsReadReq struct {
	IDs []uint64 `json:"ids" binding:"required"`
}

// GinHandleMarkEventsRead 标记公告事件已读
// @Summary 标记事件已读
// @Tags 事件
// @Accept json
// @Produce json
// @Param req body MarkEventsReadReq true "请求参数"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /event/read [post]
func (c *BoardEngine) GinHandleMarkEventsRead(ctx *gin.Context) {
	uid, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return
	}

	var req MarkEventsReadReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, err.Error()))
		return
	}

	if err := c.EventService.MarkReadByIDs(uid, req.IDs); err != nil {
		ctx.JSON(http.StatusOK, response.Error(response.CodeInternalError, err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, response.Success(nil))
}
