package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cydxin/board-sdk/cons"
	"github.com/cydxin/board-sdk/models"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// NoticeEventService 统一处理公告变更事件：
// 约定：先落库(事件+投递)，再尽力通过 WS 推送；离线/新设备通过 HTTP 拉取。
type NoticeEventService struct {
	*Service
}

func NewNoticeEventService(s *Service) *NoticeEventService {
	return &NoticeEventService{Service: s}
}

// PublishNoticeEvent 创建一条公告事件，并投递给全部有角色档案的用户。
// 操作者自己也收一条（展示端靠它确认“发布成功”）。
func (s *NoticeEventService) PublishNoticeEvent(noticeID, actorID uint64, eventType string, payload any) (*models.NoticeEvent, error) {
	if noticeID == 0 {
		return nil, errors.New("notice_id is required")
	}
	if actorID == 0 {
		return nil, errors.New("actor_id is required")
	}
	if eventType == "" {
		return nil, errors.New("event_type is required")
	}

	// 序列化 payload
	var pl datatypes.JSON
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		pl = b
	}

	// 受众：全部角色档案持有者（公告面向全校，过滤在查询端做）
	var audience []uint64
	if err := s.DB.Model(&models.UserRole{}).Pluck("user_id", &audience).Error; err != nil {
		return nil, err
	}

	now := time.Now()

	// 事件 + 投递同事务，确保离线拉取一定能看到。
	tx := s.DB.Begin()
	defer tx.Rollback()

	evt := &models.NoticeEvent{
		NoticeID:  noticeID,
		ActorID:   actorID,
		EventType: eventType,
		Payload:   pl,
		CreatedAt: now,
	}
	if err := tx.Create(evt).Error; err != nil {
		return nil, err
	}

	// 去重
	uniq := make(map[uint64]struct{}, len(audience)+1)
	clean := make([]uint64, 0, len(audience)+1)
	for _, uid := range audience {
		if uid == 0 {
			continue
		}
		if _, ok := uniq[uid]; ok {
			continue
		}
		uniq[uid] = struct{}{}
		clean = append(clean, uid)
	}
	if _, ok := uniq[actorID]; !ok {
		clean = append(clean, actorID)
	}

	rows := make([]models.NoticeEventDelivery, 0, len(clean))
	for _, uid := range clean {
		rows = append(rows, models.NoticeEventDelivery{
			UserID:    uid,
			EventID:   evt.ID,
			IsRead:    false,
			CreatedAt: now,
		})
	}
	if len(rows) > 0 {
		// OnConflict DoNothing: 避免并发/重试重复投递
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// WS 推送（尽力而为：失败不影响主流程）
	s.pushEventToUsers(evt, clean)

	return evt, nil
}

func (s *NoticeEventService) pushEventToUsers(evt *models.NoticeEvent, userIDs []uint64) {
	if s.WsNotifier == nil || evt == nil {
		return
	}

	msg := struct {
		Type      string         `json:"type"`
		EventID   uint64         `json:"event_id"`
		NoticeID  uint64         `json:"notice_id"`
		ActorID   uint64         `json:"actor_id"`
		EventType string         `json:"event_type"`
		Payload   datatypes.JSON `json:"payload,omitempty"`
		CreatedAt time.Time      `json:"created_at"`
	}{
		Type:      cons.EventNotification,
		EventID:   evt.ID,
		NoticeID:  evt.NoticeID,
		ActorID:   evt.ActorID,
		EventType: evt.EventType,
		Payload:   evt.Payload,
		CreatedAt: evt.CreatedAt,
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, uid := range userIDs {
		s.WsNotifier(uid, b)
	}
}

// NoticeEventDTO HTTP 返回结构
// ID 使用 delivery_id 作为游标分页的主键。
// Event* 字段来自 NoticeEvent。
type NoticeEventDTO struct {
	ID        uint64         `json:"id"` // delivery_id
	EventID   uint64         `json:"event_id"`
	NoticeID  uint64         `json:"notice_id"`
	ActorID   uint64         `json:"actor_id"`
	EventType string         `json:"event_type"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListUserEvents 拉取用户的公告事件（默认按 delivery id 倒序）
// - sinceDays: 近 N 天（建议默认 2）
// - cursor: 分页游标（传 0 表示从最新开始；否则取 id < cursor）
func (s *NoticeEventService) ListUserEvents(userID uint64, sinceDays int, cursor uint64, limit int, unreadOnly bool) ([]NoticeEventDTO, uint64, error) {
	if userID == 0 {
		return nil, 0, errors.New("user_id is required")
	}
	if sinceDays <= 0 {
		sinceDays = 2
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	since := time.Now().Add(-time.Duration(sinceDays) * 24 * time.Hour)

	q := s.DB.Model(&models.NoticeEventDelivery{}).
		Where("user_id = ? AND created_at >= ?", userID, since)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	// join 事件表拿 payload
	var rows []models.NoticeEventDelivery
	if err := q.Preload("Event").Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]NoticeEventDTO, 0, len(rows))
	var nextCursor uint64
	for _, r := range rows {
		out = append(out, NoticeEventDTO{
			ID:        r.ID,
			EventID:   r.EventID,
			NoticeID:  r.Event.NoticeID,
			ActorID:   r.Event.ActorID,
			EventType: r.Event.EventType,
			Payload:   r.Event.Payload,
			IsRead:    r.IsRead,
			CreatedAt: r.CreatedAt,
		})
		nextCursor = r.ID
	}

	return out, nextCursor, nil
}

// MarkReadByIDs 批量标记已读
func (s *NoticeEventService) MarkReadByIDs(userID uint64, ids []uint64) error {
	if userID == 0 {
		return errors.New("user_id is required")
	}
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return s.DB.Model(&models.NoticeEventDelivery{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
}
