package board_sdk

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/cydxin/board-sdk/middleware"
	model "github.com/cydxin/board-sdk/models"
	"github.com/cydxin/board-sdk/service"
	"github.com/gin-gonic/gin"
)

type BoardEngine struct {
	config *Config

	UserService    *service.UserService
	RoleService    *service.RoleService
	NoticeService  *service.NoticeService
	WatchService   *service.NoticeWatchService
	EventService   *service.NoticeEventService
	SessionService *service.SessionService
	AuthService    *service.AuthService // 鉴权服务
	WsServer       *WsServer

	// sessionRefreshStop 会话周期核对的停止句柄（配置了 WithSessionRefresh 才有）
	sessionRefreshStop func()
}

var (
	Instance *BoardEngine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *BoardEngine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "nb_", // Default
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &BoardEngine{config: c}

		// 初始化 WS
		Instance.WsServer = NewWsServer()
		go Instance.WsServer.Run()

		// 初始化基础 Service，注入 WsNotifier 回调
		baseService := &service.Service{
			DB:          c.DB,
			RDB:         c.RDB,
			TablePrefix: c.TablePrefix,
			WsNotifier:  Instance.WsServer.SendToUser, // 注入 WebSocket 通知函数
		}

		// 初始化各个 Service
		Instance.EventService = service.NewNoticeEventService(baseService)
		baseService.Events = Instance.EventService

		Instance.UserService = service.NewUserService(baseService)
		Instance.RoleService = service.NewRoleService(baseService)
		Instance.NoticeService = service.NewNoticeService(baseService)
		Instance.WatchService = service.NewNoticeWatchService(baseService, Instance.NoticeService)
		Instance.SessionService = service.NewSessionService(baseService, Instance.UserService, Instance.RoleService)
		Instance.AuthService = service.NewAuthService(c.RDB) // 初始化鉴权服务

		// 公告集合变化 -> 踢所有 live view
		Instance.NoticeService.SetChangeListener(Instance.WatchService.NotifyChanged)

		// WS 连接注册时建立 live view 订阅
		Instance.WsServer.subscribe = Instance.WatchService.Subscribe

		// 可选的会话周期核对
		if c.SessionRefreshInterval > 0 {
			Instance.sessionRefreshStop = Instance.SessionService.WatchRefresh(context.Background(), c.SessionRefreshInterval)
		}

		// 迁移表
		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}
	})

	return Instance
}

func (c *BoardEngine) AutoMigrate() error {
	db := c.config.DB
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&model.User{},
		&model.UserRole{},
		&model.Notice{},
		&model.NoticeEvent{},
		&model.NoticeEventDelivery{},
	)
}

/*
*	提供的HTTP接口在 handler_*.go，也可以直接自己写controller然后调用service
*	推荐自己写controller，因为这样更灵活
 */

// StopSessionRefresh 停止会话周期核对；未开启或重复调用都是 no-op。
func (c *BoardEngine) StopSessionRefresh() {
	if c.sessionRefreshStop != nil {
		c.sessionRefreshStop()
	}
}

// ServeWS 处理 WebSocket 请求，建立该连接的公告 live view。
func (c *BoardEngine) ServeWS(w http.ResponseWriter, r *http.Request, userID uint64, filter model.NoticeFilter) {
	c.WsServer.ServeWS(w, r, userID, filter)
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
// 使用 BoardEngine 内部的 AuthService 和 Redis 配置
//
// 使用示例:
//
//	engine := board_sdk.NewEngine(...)
//	r := gin.Default()
//	r.Use(engine.GinAuthMiddleware(nil)) // 使用默认配置
func (c *BoardEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(c.AuthService, opt)
}

// GinRequireFaculty 公告增删改路由的角色门卫（faculty）。
func (c *BoardEngine) GinRequireFaculty() gin.HandlerFunc {
	return middleware.GinRequireRole(c.RoleService.ResolveRole, model.RoleFaculty)
}

// GinRequireStudent 学生视图路由的角色门卫（student）。
func (c *BoardEngine) GinRequireStudent() gin.HandlerFunc {
	return middleware.GinRequireRole(c.RoleService.ResolveRole, model.RoleStudent)
}
