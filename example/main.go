package main

import (
	"log"

	board_sdk "github.com/cydxin/board-sdk"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库连接
	dsn := "root:password@tcp(127.0.0.1:3306)/board_db?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// Redis：token 认证 / 验证码都依赖它
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	// 2. 初始化 Board Engine（单例模式，全局只需调用一次）
	engine := board_sdk.NewEngine(
		board_sdk.WithDB(db),
		board_sdk.WithRDB(rdb),
		board_sdk.WithTablePrefix("nb_"), // 自定义表前缀
		board_sdk.WithServiceDebug(true), // Debug 下验证码接口回显 code，方便联调
	)

	// 3. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	board_sdk.RegisterSwagger(r, "/swagger/*any")

	auth := engine.GinAuthMiddleware(nil)

	// 4. WebSocket 连接路由（公告 live view）
	// 客户端连接：ws://localhost:8080/ws?token=xxx&only_active=true
	r.GET("/ws", auth, engine.GinHandleNoticeWS)

	// 5. API 路由组
	api := r.Group("/api/v1")

	// 用户模块（注册/登录不需要 token）
	userAPI := api.Group("/user")
	{
		userAPI.POST("/register", engine.GinHandleUserRegister)
		userAPI.POST("/login", engine.GinHandleUserLogin)
		userAPI.POST("/code/send", engine.GinHandleSendVerifyCode)
		userAPI.POST("/password/forgot", engine.GinHandleForgotPassword)
		userAPI.GET("/info", auth, engine.GinHandleGetUserInfo)
		userAPI.POST("/signout", auth, engine.GinHandleSignOut)
	}

	// 角色档案模块（首次登录后的 setup）
	roleAPI := api.Group("/role", auth)
	{
		roleAPI.POST("/setup", engine.GinHandleSetupRole)
		roleAPI.GET("/me", engine.GinHandleGetMyRole)
	}

	// 公告模块：查询所有人可用，增删改只给 faculty
	noticeAPI := api.Group("/notice", auth)
	{
		noticeAPI.GET("/list", engine.GinHandleListNotices)
		noticeAPI.POST("/create", engine.GinRequireFaculty(), engine.GinHandleCreateNotice)
		noticeAPI.POST("/update", engine.GinRequireFaculty(), engine.GinHandleUpdateNotice)
		noticeAPI.DELETE("/delete", engine.GinRequireFaculty(), engine.GinHandleDeleteNotice)
	}

	// 事件模块（离线/新设备的补偿拉取）
	eventAPI := api.Group("/event", auth)
	{
		eventAPI.GET("/list", engine.GinHandleListNoticeEvents)
		eventAPI.POST("/read", engine.GinHandleMarkEventsRead)
	}

	// 6. 启动服务器
	log.Println("Board Server 启动在 :8080")
	log.Println("Swagger UI: http://localhost:8080/swagger/index.html")
	log.Println("WebSocket 地址: ws://localhost:8080/ws?token=YOUR_TOKEN")
	if err := r.Run(":8080"); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}
