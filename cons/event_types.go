package cons

// 统一的公告变更事件类型（event_type）
const (
	EventNoticeCreated = "notice.created" // 公告发布
	EventNoticeUpdated = "notice.updated" // 公告更新
	EventNoticeDeleted = "notice.deleted" // 公告删除
)

// 统一的会话事件
const (
	EventNotification   = "notification"    // 事件投递（WS 消息外层 type）
	EventSessionSignIn  = "session.sign_in" // 登录
	EventSessionSignOut = "session.sign_out" // 登出
	EventRoleSet        = "session.role_set" // 角色档案写入
)
