package service

import (
	"errors"
	"strings"

	"github.com/cydxin/board-sdk/cons"
	"github.com/cydxin/board-sdk/models"
)

// RoleService 角色档案（user_roles）的写入与读取。
// 档案在首次登录后的 setup 流程里写入一次；角色写入后不可变
// （没有任何改角色的入口，重复写直接报错）。
type RoleService struct {
	*Service
	dao *models.NoticeDAO
}

func NewRoleService(s *Service) *RoleService {
	return &RoleService{Service: s, dao: models.NewNoticeDAO(s.DB)}
}

type RoleDTO struct {
	UserID   uint64 `json:"user_id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

type SetupRoleReq struct {
	Role     string `json:"role"`      // faculty / student
	FullName string `json:"full_name"` // 展示名
}

// SetupRole 写入角色档案（一次性）。
func (s *RoleService) SetupRole(userID uint64, req SetupRoleReq) (*RoleDTO, error) {
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, errors.New("full_name is required")
	}
	if req.Role != models.RoleFaculty && req.Role != models.RoleStudent {
		return nil, errors.New("invalid role")
	}

	r := &models.UserRole{UserID: userID, Role: req.Role, FullName: fullName}
	if err := s.dao.CreateRole(r); err != nil {
		return nil, err
	}

	if s.WsNotifier != nil {
		// 角色写入只通知本人，payload 很小，直接拼
		s.WsNotifier(userID, []byte(`{"type":"`+cons.EventRoleSet+`","role":"`+req.Role+`"}`))
	}

	return &RoleDTO{UserID: userID, Role: r.Role, FullName: r.FullName}, nil
}

// GetRole 读角色档案；没有档案返回 (nil, nil)，调用方据此引导 setup。
func (s *RoleService) GetRole(userID uint64) (*RoleDTO, error) {
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}
	r, err := s.dao.GetRole(userID)
	if err != nil {
		if s.dao.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &RoleDTO{UserID: r.UserID, Role: r.Role, FullName: r.FullName}, nil
}

// ResolveRole 只取角色名；未设置返回空串。给路由门卫用。
func (s *RoleService) ResolveRole(userID uint64) (string, error) {
	dto, err := s.GetRole(userID)
	if err != nil {
		return "", err
	}
	if dto == nil {
		return "", nil
	}
	return dto.Role, nil
}
