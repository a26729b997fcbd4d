package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/cydxin/board-sdk/cons"
	"github.com/cydxin/board-sdk/models"
)

// UnknownFullName 创建者档案缺失时的占位名。
// 覆盖：档案被删、created_by 脏数据等情况，单条缺档不影响整次查询。
const UnknownFullName = "Unknown"

// dateLayout 到期日/当天的定宽格式，字典序即日期序
const dateLayout = "2006-01-02"

// NoticeBackend 公告查询层依赖的后端契约：
// - 带过滤条件和排序的公告查询
// - "user_id 在给定集合内" 的名字批量查找（单次至多 models.LookupChunkLimit 个）
// 具体适配器只有一个（models.NoticeDAO），换后端时替换适配器而不是查询层。
type NoticeBackend interface {
	Query(f models.NoticeFilter, today string) ([]models.Notice, error)
	LookupFullNames(ids []uint64) (map[uint64]string, error)
}

// NoticeProfile 冗余出来的创建者档案字段
type NoticeProfile struct {
	FullName string `json:"full_name"`
}

// EnrichedNotice 公告 + 创建者展示名。不落库，每次查询/推送时现算。
type EnrichedNotice struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Department  string        `json:"department"`
	Year        string        `json:"year"`
	ExpiryDate  string        `json:"expiry_date"`
	CreatedBy   uint64        `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Profiles    NoticeProfile `json:"profiles"`
}

// NoticeService 公告查询与增删改。
// 查询走两段式：先查公告，再按 created_by 分片批量查展示名后合并，
// 不要求后端支持原生 join。
type NoticeService struct {
	*Service
	backend NoticeBackend
	dao     *models.NoticeDAO

	// now 可注入，测试里固定“今天”
	now func() time.Time

	// onChange 公告集合变化后的回调（engine 注入，live view 用）
	onChange func()
}

func NewNoticeService(s *Service) *NoticeService {
	dao := models.NewNoticeDAO(s.DB)
	return &NoticeService{
		Service: s,
		backend: dao,
		dao:     dao,
		now:     time.Now,
	}
}

// SetChangeListener 注入公告集合变化回调（engine 在初始化时挂 live view 的广播）。
func (s *NoticeService) SetChangeListener(fn func()) {
	s.onChange = fn
}

func (s *NoticeService) today() string {
	return s.now().Format(dateLayout)
}

func (s *NoticeService) notifyChanged() {
	if s.onChange != nil {
		s.onChange()
	}
}

// FetchNotices 按条件查公告并冗余创建者名字，按 created_at 倒序返回。
// 失败策略是严格的：主查询或任意一片名字查询失败，整次调用失败；
// "Unknown" 只用于确实没有档案记录的创建者。
func (s *NoticeService) FetchNotices(f models.NoticeFilter) ([]EnrichedNotice, error) {
	rows, err := s.backend.Query(f, s.today())
	if err != nil {
		return nil, fmt.Errorf("query notices: %w", err)
	}
	// 空结果直接短路，不发名字查询
	if len(rows) == 0 {
		return []EnrichedNotice{}, nil
	}

	names, err := s.lookupCreatorNames(rows)
	if err != nil {
		return nil, err
	}

	out := make([]EnrichedNotice, 0, len(rows))
	for i := range rows {
		out = append(out, toEnrichedNotice(&rows[i], names))
	}
	return out, nil
}

// lookupCreatorNames 取结果集里去重后的 created_by，按上限分片批量查展示名。
// 分片之间没有顺序依赖，key 唯一所以合并顺序无关紧要；这里顺序发即可。
func (s *NoticeService) lookupCreatorNames(rows []models.Notice) (map[uint64]string, error) {
	seen := make(map[uint64]struct{}, len(rows))
	ids := make([]uint64, 0, len(rows))
	for i := range rows {
		uid := rows[i].CreatedBy
		if uid == 0 {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		ids = append(ids, uid)
	}

	names := make(map[uint64]string, len(ids))
	for start := 0; start < len(ids); start += models.LookupChunkLimit {
		end := start + models.LookupChunkLimit
		if end > len(ids) {
			end = len(ids)
		}
		m, err := s.backend.LookupFullNames(ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("lookup creator names: %w", err)
		}
		for k, v := range m {
			names[k] = v
		}
	}
	return names, nil
}

func toEnrichedNotice(n *models.Notice, names map[uint64]string) EnrichedNotice {
	fullName, ok := names[n.CreatedBy]
	if !ok {
		fullName = UnknownFullName
	}
	return EnrichedNotice{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Department:  n.Department,
		Year:        n.Year,
		ExpiryDate:  n.ExpiryDate,
		CreatedBy:   n.CreatedBy,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		Profiles:    NoticeProfile{FullName: fullName},
	}
}

// --- 增删改 ---

type CreateNoticeReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"` // CSE/IT/ECE/MECH/CIVIL
	Year        string `json:"year"`       // 1st/2nd/3rd/4th
	ExpiryDate  string `json:"expiry_date" example:"2026-09-30"`
}

type UpdateNoticeReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Department  *string `json:"department"`
	Year        *string `json:"year"`
	ExpiryDate  *string `json:"expiry_date"`
}

func validateNoticeFields(title, description, department, year, expiry string) error {
	if title == "" {
		return errors.New("title is required")
	}
	if description == "" {
		return errors.New("description is required")
	}
	if !models.ValidDepartment(department) {
		return errors.New("invalid department")
	}
	if !models.ValidYear(year) {
		return errors.New("invalid year")
	}
	if _, err := time.Parse(dateLayout, expiry); err != nil {
		return errors.New("invalid expiry_date, want YYYY-MM-DD")
	}
	return nil
}

// CreateNotice 发布公告。created_at/created_by 由服务端填。
func (s *NoticeService) CreateNotice(actorID uint64, req CreateNoticeReq) (*EnrichedNotice, error) {
	if actorID == 0 {
		return nil, errors.New("actor_id is required")
	}
	if err := validateNoticeFields(req.Title, req.Description, req.Department, req.Year, req.ExpiryDate); err != nil {
		return nil, err
	}

	now := s.now()
	n := &models.Notice{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Year:        req.Year,
		ExpiryDate:  req.ExpiryDate,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.dao.Create(n); err != nil {
		return nil, err
	}

	// 事件：落库+投递+WS推送（尽力而为）
	if s.Events != nil {
		_, _ = s.Events.PublishNoticeEvent(n.ID, actorID, cons.EventNoticeCreated, map[string]any{
			"title":      n.Title,
			"department": n.Department,
			"year":       n.Year,
		})
	}
	s.notifyChanged()

	// 返回值也带上创建者自己的展示名；查失败不影响已创建的公告（列表端会重新冗余）
	names, err := s.backend.LookupFullNames([]uint64{actorID})
	if err != nil {
		names = nil
	}
	out := toEnrichedNotice(n, names)
	return &out, nil
}

// UpdateNotice 更新公告，只有创建者本人可改。
func (s *NoticeService) UpdateNotice(actorID, noticeID uint64, req UpdateNoticeReq) error {
	n, err := s.ownedNotice(actorID, noticeID)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return errors.New("title is required")
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		if *req.Description == "" {
			return errors.New("description is required")
		}
		updates["description"] = *req.Description
	}
	if req.Department != nil {
		if !models.ValidDepartment(*req.Department) {
			return errors.New("invalid department")
		}
		updates["department"] = *req.Department
	}
	if req.Year != nil {
		if !models.ValidYear(*req.Year) {
			return errors.New("invalid year")
		}
		updates["year"] = *req.Year
	}
	if req.ExpiryDate != nil {
		if _, err := time.Parse(dateLayout, *req.ExpiryDate); err != nil {
			return errors.New("invalid expiry_date, want YYYY-MM-DD")
		}
		updates["expiry_date"] = *req.ExpiryDate
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.dao.UpdateFields(n.ID, updates); err != nil {
		return err
	}

	if s.Events != nil {
		_, _ = s.Events.PublishNoticeEvent(n.ID, actorID, cons.EventNoticeUpdated, map[string]any{
			"notice_id": n.ID,
		})
	}
	s.notifyChanged()
	return nil
}

// DeleteNotice 删除公告，只有创建者本人可删。
func (s *NoticeService) DeleteNotice(actorID, noticeID uint64) error {
	n, err := s.ownedNotice(actorID, noticeID)
	if err != nil {
		return err
	}

	if err := s.dao.Delete(n.ID); err != nil {
		return err
	}

	if s.Events != nil {
		_, _ = s.Events.PublishNoticeEvent(n.ID, actorID, cons.EventNoticeDeleted, map[string]any{
			"notice_id": n.ID,
			"title":     n.Title,
		})
	}
	s.notifyChanged()
	return nil
}

func (s *NoticeService) ownedNotice(actorID, noticeID uint64) (*models.Notice, error) {
	if actorID == 0 {
		return nil, errors.New("actor_id is required")
	}
	if noticeID == 0 {
		return nil, errors.New("notice_id is required")
	}
	n, err := s.dao.FindByID(noticeID)
	if err != nil {
		if s.dao.IsNotFound(err) {
			return nil, errors.New("notice not found")
		}
		return nil, err
	}
	if n.CreatedBy != actorID {
		return nil, errors.New("permission denied")
	}
	return n, nil
}
