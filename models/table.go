package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "nb_"
)

// 院系/年级枚举（公告定向投放用）
const (
	DepartmentCSE   = "CSE"
	DepartmentIT    = "IT"
	DepartmentECE   = "ECE"
	DepartmentMECH  = "MECH"
	DepartmentCIVIL = "CIVIL"
)

const (
	Year1st = "1st"
	Year2nd = "2nd"
	Year3rd = "3rd"
	Year4th = "4th"
)

// ValidDepartment 校验院系枚举
func ValidDepartment(d string) bool {
	switch d {
	case DepartmentCSE, DepartmentIT, DepartmentECE, DepartmentMECH, DepartmentCIVIL:
		return true
	}
	return false
}

// ValidYear 校验年级枚举
func ValidYear(y string) bool {
	switch y {
	case Year1st, Year2nd, Year3rd, Year4th:
		return true
	}
	return false
}

// User 账号表（登录凭据，和 UserRole 档案分开存）
type User struct {
	ID          uint64     `gorm:"primarykey"`
	UID         string     `gorm:"size:36;uniqueIndex;not null"`      // 对外用户 ID
	Username    string     `gorm:"size:50;uniqueIndex;not null"`      // 用户名
	Password    string     `gorm:"size:255;not null"`                 // 密码
	Phone       string     `gorm:"size:20;uniqueIndex;default:null"`  // 手机号
	Email       string     `gorm:"size:100;uniqueIndex;default:null"` // 邮箱
	LastLoginAt *time.Time // 最后登录时间
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	// 关联关系
	Role    *UserRole `gorm:"foreignKey:UserID"`
	Notices []Notice  `gorm:"foreignKey:CreatedBy"`
}

func (User) TableName() string {
	return prefix + "user"
}

// 角色
const (
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// UserRole 角色档案表（user_id 主键，首次写入后角色不可变）
// 首次登录后由 setup 流程写入一次；鉴权层和公告查询层都读它：
// - 鉴权层拿 role 做路由判定
// - 公告查询层拿 full_name 冗余出创建者名字
type UserRole struct {
	UserID    uint64 `gorm:"primarykey;autoIncrement:false"` // 等于账号 ID
	Role      string `gorm:"size:16;not null"`               // faculty / student
	FullName  string `gorm:"size:100;not null"`              // 展示名
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserRole) TableName() string {
	return prefix + "user_role"
}

// Notice 公告表
// ExpiryDate 存 "YYYY-MM-DD" 定宽字符串，字典序比较即日期序；
// 过期公告不做物理清理，查询时按 expiry_date >= today 过滤。
type Notice struct {
	ID          uint64    `gorm:"primarykey"`
	Title       string    `gorm:"size:200;not null"`      // 标题
	Description string    `gorm:"type:text;not null"`     // 正文
	Department  string    `gorm:"size:10;index;not null"` // 院系: CSE/IT/ECE/MECH/CIVIL
	Year        string    `gorm:"size:4;index;not null"`  // 年级: 1st/2nd/3rd/4th
	ExpiryDate  string    `gorm:"size:10;index;not null"` // 到期日 "YYYY-MM-DD"
	CreatedBy   uint64    `gorm:"index;not null"`         // 创建者账号 ID
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	// 关联关系
	Creator User `gorm:"foreignKey:CreatedBy"`
}

func (Notice) TableName() string {
	return prefix + "notice"
}

// Active 判断公告在 today（"YYYY-MM-DD"）当天是否有效。
// 到期日等于今天仍算有效。
func (n *Notice) Active(today string) bool {
	return n.ExpiryDate >= today
}

// NoticeEvent 公告变更事件（事件只存一份）
// 用于：
// - WS 即时推送的消息体来源
// - 离线/新设备通过 HTTP 拉取近几天事件
//
// 事件与投递分离：NoticeEventDelivery 记录“某用户收到了某事件(未读/已读)”，
// 事件 payload 不会因为受众多而重复存多份。
type NoticeEvent struct {
	ID        uint64         `gorm:"primarykey"`
	NoticeID  uint64         `gorm:"index;not null"`
	ActorID   uint64         `gorm:"index;not null"`
	EventType string         `gorm:"size:64;index;not null"`
	Payload   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"index"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (NoticeEvent) TableName() string { return prefix + "notice_event" }

// NoticeEventDelivery 用户投递表（每个用户一条，用于未读/已读与离线拉取）
// 唯一索引 (user_id, event_id) 用于幂等。
type NoticeEventDelivery struct {
	ID      uint64 `gorm:"primarykey"`
	UserID  uint64 `gorm:"index:idx_user_created,priority:1;not null;uniqueIndex:idx_user_event"`
	EventID uint64 `gorm:"not null;uniqueIndex:idx_user_event"`

	IsRead bool `gorm:"default:false;index"`
	ReadAt *time.Time

	CreatedAt time.Time      `gorm:"index:idx_user_created,priority:2"`
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联（用于查询 preload/join）
	Event NoticeEvent `gorm:"foreignKey:EventID"`
}

func (NoticeEventDelivery) TableName() string { return prefix + "notice_event_delivery" }
