package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// LookupChunkLimit 名字批量查询里 IN 集合的上限。
// 后端对 "id 在给定集合内" 这类条件最多接受 10 个成员，超出要分片。
const LookupChunkLimit = 10

// NoticeFilter 公告查询条件。
// CreatedBy=0 表示不限创建者；OnlyActive=true 表示只要未过期的
// （expiry_date >= today，today 由调用方传入，方便测试固定时间）。
type NoticeFilter struct {
	CreatedBy  uint64
	OnlyActive bool
}

// NoticeDAO 封装 Notice / UserRole 相关的数据库操作。
// 同时是公告查询层依赖的唯一具体后端（查询 + 名字批量查找）。
type NoticeDAO struct {
	db *gorm.DB
}

func NewNoticeDAO(db *gorm.DB) *NoticeDAO {
	return &NoticeDAO{db: db}
}

func (dao *NoticeDAO) Create(n *Notice) error {
	return dao.db.Create(n).Error
}

func (dao *NoticeDAO) FindByID(id uint64) (*Notice, error) {
	var n Notice
	if err := dao.db.Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (dao *NoticeDAO) UpdateFields(id uint64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dao.db.Model(&Notice{}).Where("id = ?", id).Updates(updates).Error
}

func (dao *NoticeDAO) Delete(id uint64) error {
	return dao.db.Where("id = ?", id).Delete(&Notice{}).Error
}

// Query 执行过滤后的公告查询，按 created_at 倒序（最新在前）。
// 排序是对外契约的一部分，展示端直接按返回顺序渲染。
func (dao *NoticeDAO) Query(f NoticeFilter, today string) ([]Notice, error) {
	q := dao.db.Model(&Notice{})
	if f.OnlyActive {
		q = q.Where("expiry_date >= ?", today)
	}
	if f.CreatedBy > 0 {
		q = q.Where("created_by = ?", f.CreatedBy)
	}

	var rows []Notice
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LookupFullNames 按 user_id 批量查角色档案里的展示名。
// ids 必须已经被调用方分片到 LookupChunkLimit 以内。
func (dao *NoticeDAO) LookupFullNames(ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}
	if len(ids) > LookupChunkLimit {
		return nil, fmt.Errorf("lookup chunk too large: %d > %d", len(ids), LookupChunkLimit)
	}

	var rows []UserRole
	if err := dao.db.Model(&UserRole{}).Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uint64]string, len(rows))
	for i := range rows {
		out[rows[i].UserID] = rows[i].FullName
	}
	return out, nil
}

// GetRole 读角色档案；不存在返回 gorm.ErrRecordNotFound。
func (dao *NoticeDAO) GetRole(userID uint64) (*UserRole, error) {
	var r UserRole
	if err := dao.db.Where("user_id = ?", userID).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRole 写入角色档案。角色首次写入后不可变，已存在即报错。
func (dao *NoticeDAO) CreateRole(r *UserRole) error {
	_, err := dao.GetRole(r.UserID)
	if err == nil {
		return errors.New("role already set")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return dao.db.Create(r).Error
}

func (dao *NoticeDAO) IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
