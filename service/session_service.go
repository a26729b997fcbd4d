package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cydxin/board-sdk/cons"
)

// SessionState 会话快照：当前用户（可能为空）、已解析角色（可能为空）、loading。
// Loading 只在首次解析期间为 true，且无论成功/失败/无会话都会变 false，
// 路由判定不会被卡住。
type SessionState struct {
	User    *UserDTO `json:"user"`
	Role    string   `json:"role"` // "" 表示未解析到角色（未登录或未 setup）
	Loading bool     `json:"loading"`
}

// SessionService 会话状态提供者：
// - 启动时用 Bootstrap 按当前 token 解析一次
// - 之后靠 UserService 的登录/登出事件保持最新
// - 角色解析失败不致命：用户保持登录态，角色置空，由路由门卫引导 setup
// - 可选的周期刷新只会把状态拉齐到后端真实情况，不会凭空造会话
type SessionService struct {
	*Service
	auth  *AuthService
	users *UserService
	roles *RoleService

	mu      sync.RWMutex
	user    *UserDTO
	role    string
	token   string
	loading bool

	loadedOnce sync.Once
}

func NewSessionService(s *Service, users *UserService, roles *RoleService) *SessionService {
	sess := &SessionService{
		Service: s,
		auth:    NewAuthService(s.RDB),
		users:   users,
		roles:   roles,
		loading: true,
	}
	// 登录/登出事件驱动后续状态
	users.OnSessionChange(sess.handleAuthChange)
	return sess
}

// Current 读会话快照。
func (s *SessionService) Current() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{User: s.user, Role: s.role, Loading: s.loading}
}

// Bootstrap 启动时解析一次当前会话。token 为空等价于无会话。
// 无论结果如何，loading 恰好变 false 一次。
func (s *SessionService) Bootstrap(ctx context.Context, token string) {
	defer s.finishLoading()

	if token == "" {
		s.clear()
		return
	}

	uid, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		// token 无效 -> 无会话；不是崩溃路径
		s.clear()
		return
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.resolveUser(uid)
}

// resolveUser 拉用户 + 角色。角色失败只记日志，role 置空。
func (s *SessionService) resolveUser(userID uint64) {
	u, err := s.users.GetUser(userID)
	if err != nil {
		log.Printf("session: load user %d failed: %v", userID, err)
		s.clear()
		return
	}

	role := ""
	if dto, err := s.roles.GetRole(userID); err != nil {
		log.Printf("session: resolve role for %d failed: %v", userID, err)
	} else if dto != nil {
		role = dto.Role
	}

	s.mu.Lock()
	s.user = u
	s.role = role
	s.mu.Unlock()
}

func (s *SessionService) handleAuthChange(event string, userID uint64, token string) {
	switch event {
	case cons.EventSessionSignIn:
		// 先绑定 token（SignOut 要靠它注销后端会话），角色解析异步做，不阻塞登录方
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		go s.resolveUser(userID)
	case cons.EventSessionSignOut:
		s.mu.Lock()
		if (s.user != nil && s.user.ID == userID) || (token != "" && token == s.token) {
			s.user = nil
			s.role = ""
			s.token = ""
		}
		s.mu.Unlock()
	}
}

// SignOut 注销后端会话并清本地状态；跳转由调用方负责。
func (s *SessionService) SignOut(ctx context.Context) error {
	s.mu.RLock()
	token := s.token
	var uid uint64
	if s.user != nil {
		uid = s.user.ID
	}
	s.mu.RUnlock()

	if token == "" && uid == 0 {
		return nil
	}
	if err := s.users.SignOut(ctx, token, uid); err != nil {
		return err
	}
	s.clear()
	return nil
}

// WatchRefresh 可选的周期刷新：按当前 token 重新核对后端会话。
// token 已失效 -> 清状态；仍有效 -> 重拉用户/角色。返回停止函数。
func (s *SessionService) WatchRefresh(ctx context.Context, interval time.Duration) func() {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.RLock()
				token := s.token
				s.mu.RUnlock()
				if token == "" {
					continue
				}
				uid, err := s.auth.Authenticate(ctx, token)
				if err != nil {
					s.clear()
					continue
				}
				s.resolveUser(uid)
			}
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}

func (s *SessionService) finishLoading() {
	s.loadedOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	})
}

func (s *SessionService) clear() {
	s.mu.Lock()
	s.user = nil
	s.role = ""
	s.token = ""
	s.mu.Unlock()
}
