package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cydxin/board-sdk/cons"
	"github.com/cydxin/board-sdk/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 账号：注册/登录/登出/找回密码。
// 会话凭据走 Redis token（TokenService），密码 bcrypt 存储。
type UserService struct {
	*Service
	userDao           *models.UserDAO
	tokenService      *TokenService
	verifyCodeService *VerifyCodeService
	loginTokenTTL     time.Duration

	// 会话变化监听（登录/登出），SessionService 挂在这里
	listenerMu sync.RWMutex
	listeners  []func(event string, userID uint64, token string)
}

func NewUserService(s *Service) *UserService {
	return &UserService{
		Service:           s,
		userDao:           models.NewUserDAO(s.DB),
		tokenService:      NewTokenService(s.RDB),
		verifyCodeService: NewVerifyCodeService(s.RDB),
		loginTokenTTL:     7 * 24 * time.Hour,
	}
}

// --- types ---

type UserDTO struct {
	ID          uint64     `json:"id"`
	UID         string     `json:"uid"`
	Username    string     `json:"username"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type RegisterReq struct {
	Username string `json:"username"`
	Phone    string `json:"phone"` // phone/email 二选一
	Email    string `json:"email"` // phone/email 二选一
	Password string `json:"password"`
	Code     string `json:"code"`
}

type LoginReq struct {
	Account  string `json:"account"` // username/phone/email
	Password string `json:"password"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type ForgotPasswordReq struct {
	Identifier  string `json:"identifier"` // phone/email
	NewPassword string `json:"new_password"`
	Code        string `json:"code"`
}

func toUserDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		UID:         u.UID,
		Username:    u.Username,
		Phone:       u.Phone,
		Email:       u.Email,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func normalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "@") {
		s = strings.ToLower(s)
	}
	return s
}

// OnSessionChange 注册会话变化回调（event 见 cons.EventSessionSignIn/SignOut）。
// token 一并带出：监听方（SessionService）要靠它做本地会话绑定和后端注销。
func (s *UserService) OnSessionChange(fn func(event string, userID uint64, token string)) {
	if fn == nil {
		return
	}
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenerMu.Unlock()
}

func (s *UserService) emitSessionChange(event string, userID uint64, token string) {
	s.listenerMu.RLock()
	fns := make([]func(string, uint64, string), len(s.listeners))
	copy(fns, s.listeners)
	s.listenerMu.RUnlock()
	for _, fn := range fns {
		fn(event, userID, token)
	}
}

// Register 注册账号：username + (phone/email 二选一) + password + code。
func (s *UserService) Register(ctx context.Context, req RegisterReq) error {
	username := strings.TrimSpace(req.Username)
	phone := strings.TrimSpace(req.Phone)
	email := normalizeEmail(req.Email)

	if username == "" {
		return errors.New("username is required")
	}
	if phone == "" && email == "" {
		return errors.New("phone or email is required")
	}
	if len(req.Password) < 6 {
		return errors.New("password too short, min 6")
	}

	identifier := phone
	if identifier == "" {
		identifier = email
	}
	ok, err := s.verifyCodeService.VerifyCode(ctx, VerifyCodePurposeRegister, identifier, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid verification code")
	}

	exists, err := s.userDao.ExistsByAccount(username, phone, email)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("account already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u := &models.User{
		UID:      uuid.NewString(),
		Username: username,
		Password: string(hashed),
		Phone:    phone,
		Email:    email,
	}
	return s.userDao.Create(u)
}

// LoginWithToken 登录并签发 Redis token。
func (s *UserService) LoginWithToken(ctx context.Context, req LoginReq) (*LoginResp, error) {
	account := strings.TrimSpace(req.Account)
	if account == "" {
		return nil, errors.New("account is required")
	}
	if req.Password == "" {
		return nil, errors.New("password is required")
	}

	u, err := s.userDao.FindByAccount(account)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid account or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, errors.New("invalid account or password")
	}

	token, err := s.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.StoreToken(ctx, token, u.ID, s.loginTokenTTL); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	now := time.Now()
	_ = s.userDao.UpdateFields(u.ID, map[string]any{"last_login_at": &now})

	s.emitSessionChange(cons.EventSessionSignIn, u.ID, token)

	return &LoginResp{Token: token, User: *toUserDTO(u)}, nil
}

// SignOut 注销当前 token 并广播会话变化。
func (s *UserService) SignOut(ctx context.Context, token string, userID uint64) error {
	if err := NewAuthService(s.RDB).RevokeToken(ctx, token); err != nil {
		return err
	}
	s.emitSessionChange(cons.EventSessionSignOut, userID, token)
	return nil
}

// ForgotPassword 验证码找回密码。
func (s *UserService) ForgotPassword(ctx context.Context, req ForgotPasswordReq) error {
	identifier := normalizeEmail(req.Identifier)
	if identifier == "" {
		return errors.New("identifier is required")
	}
	if len(req.NewPassword) < 6 {
		return errors.New("password too short, min 6")
	}

	ok, err := s.verifyCodeService.VerifyCode(ctx, VerifyCodePurposeForgotPassword, identifier, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid verification code")
	}

	var u *models.User
	if strings.Contains(identifier, "@") {
		u, err = s.userDao.FindByEmail(identifier)
	} else {
		u, err = s.userDao.FindByPhone(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("account not found")
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userDao.UpdatePassword(u.ID, string(hashed)); err != nil {
		return err
	}

	// 改密后全端下线
	return s.tokenService.RevokeAllTokensByUser(ctx, u.ID)
}

// GetUser 查询账号信息。
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	u, err := s.userDao.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}
