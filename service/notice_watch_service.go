package service

import (
	"sync"

	"github.com/cydxin/board-sdk/models"
	"github.com/google/uuid"
)

// NoticeWatchService 公告 live view：
// 订阅后先推一次全量，之后公告集合每次变化（增/删/改）都重算
// “过滤+冗余名字”的完整列表再推送，排序和 FetchNotices 一致。
//
// 并发约定：
// - 每个订阅单 goroutine 串行投递，onData 不会和自己并发
// - 重算期间又有变化时折叠到最新状态（kick 容量 1），不排队不交错
// - 查询/名字批量失败对该订阅是终态：推一次 onError 后订阅失活，不自动重订
// - 退订幂等，退订后在途的那次结果直接丢弃
type NoticeWatchService struct {
	*Service
	notices *NoticeService

	mu   sync.Mutex
	subs map[string]*noticeWatch
}

type noticeWatch struct {
	filter  models.NoticeFilter
	onData  func([]EnrichedNotice)
	onError func(error)

	kick chan struct{} // 容量 1，折叠多次变化
	done chan struct{}
	stop sync.Once
}

func NewNoticeWatchService(s *Service, notices *NoticeService) *NoticeWatchService {
	return &NoticeWatchService{
		Service: s,
		notices: notices,
		subs:    make(map[string]*noticeWatch),
	}
}

// Subscribe 建立 live view，返回退订函数。
// 初始全量也走同一条重算路径（订阅即自踢一次）。
func (s *NoticeWatchService) Subscribe(f models.NoticeFilter, onData func([]EnrichedNotice), onError func(error)) func() {
	w := &noticeWatch{
		filter:  f,
		onData:  onData,
		onError: onError,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.subs[id] = w
	s.mu.Unlock()

	w.kick <- struct{}{}
	go s.run(id, w)

	return func() {
		w.stop.Do(func() {
			close(w.done)
			s.remove(id)
		})
	}
}

// Len 当前活跃订阅数
func (s *NoticeWatchService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// NotifyChanged 公告集合变化时踢一下所有订阅（engine 把它挂到 NoticeService 上）。
func (s *NoticeWatchService) NotifyChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.subs {
		select {
		case w.kick <- struct{}{}:
		default:
			// 已有待处理的 kick，折叠
		}
	}
}

func (s *NoticeWatchService) remove(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

func (s *NoticeWatchService) run(id string, w *noticeWatch) {
	for {
		select {
		case <-w.done:
			return
		case <-w.kick:
			list, err := s.notices.FetchNotices(w.filter)

			// 退订后丢弃在途结果
			select {
			case <-w.done:
				return
			default:
			}

			if err != nil {
				// 终态错误：退出并摘除订阅，调用方自行决定是否重订
				s.remove(id)
				if w.onError != nil {
					w.onError(err)
				}
				return
			}
			if w.onData != nil {
				w.onData(list)
			}
		}
	}
}
