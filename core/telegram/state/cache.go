package state

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v2"

	"github.com/m3rciful/scorebot/core/logger"
	tghelpers "github.com/m3rciful/scorebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// noExpiry stands in for "never" since ccache always needs a TTL.
const noExpiry = 100 * 365 * 24 * time.Hour

// Options configures a CacheManager.
type Options struct {
	// TTL evicts sessions idle for longer; 0 keeps them until cleared.
	TTL time.Duration
	// MaxSessions bounds the number of tracked senders.
	MaxSessions int64
}

// CacheManager keeps sessions in a ccache LRU with per-session idle expiry.
type CacheManager struct {
	mu       sync.Mutex
	cache    *ccache.Cache
	ttl      time.Duration
	handlers map[State]tele.HandlerFunc
}

var _ Manager = (*CacheManager)(nil)

// NewCacheManager constructs a Manager backed by ccache.
func NewCacheManager(opts Options) *CacheManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = noExpiry
	}
	size := opts.MaxSessions
	if size <= 0 {
		size = 10000
	}
	return &CacheManager{
		cache:    ccache.New(ccache.Configure().MaxSize(size).ItemsToPrune(uint32(max(size/100, 1)))),
		ttl:      ttl,
		handlers: make(map[State]tele.HandlerFunc),
	}
}

func key(userID int64) string { return strconv.FormatInt(userID, 10) }

// lookup returns the live session or nil. Caller holds mu.
func (m *CacheManager) lookup(userID int64) *Session {
	item := m.cache.Get(key(userID))
	if item == nil {
		return nil
	}
	if item.Expired() {
		m.cache.Delete(key(userID))
		return nil
	}
	sess, _ := item.Value().(*Session)
	return sess
}

// update applies fn to the sender's session, creating it if needed, and refreshes its TTL.
func (m *CacheManager) update(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.lookup(userID)
	if sess == nil {
		sess = newSession()
	}
	fn(sess)
	m.cache.Set(key(userID), sess, m.ttl)
}

// Get returns a copy of the sender's session or an idle one.
func (m *CacheManager) Get(userID int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.lookup(userID)
	if sess == nil {
		return *newSession()
	}
	cp := Session{State: sess.State, TempData: make(map[string]any, len(sess.TempData))}
	for k, v := range sess.TempData {
		cp.TempData[k] = v
	}
	return cp
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *CacheManager) SetTemp(userID int64, k string, value any) {
	m.update(userID, func(s *Session) { s.TempData[k] = value })
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *CacheManager) GetTemp(userID int64, k string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.lookup(userID)
	if sess == nil {
		return nil, false
	}
	v, ok := sess.TempData[k]
	return v, ok
}

// GetTempInt64 retrieves a temporary value by key and asserts it as int64.
func (m *CacheManager) GetTempInt64(userID int64, k string) (int64, bool) {
	v, ok := m.GetTemp(userID, k)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

// GetTempString retrieves a temporary value by key and asserts it as string.
func (m *CacheManager) GetTempString(userID int64, k string) (string, bool) {
	v, ok := m.GetTemp(userID, k)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Clear evicts the entire session for a user.
func (m *CacheManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key(userID))
}

// SetState moves the sender to st. Setting StateIdle evicts the session.
func (m *CacheManager) SetState(userID int64, st State) {
	if st == StateIdle || st == "" {
		m.Clear(userID)
		return
	}
	m.update(userID, func(s *Session) { s.State = st })
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *CacheManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess := m.lookup(userID); sess != nil {
		return sess.State
	}
	return StateIdle
}

// HasState checks if a user has an active state other than idle.
func (m *CacheManager) HasState(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *CacheManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// Handle associates a state with its handler. Registration happens during wiring.
func (m *CacheManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil || st == StateIdle {
		return
	}
	m.handlers[st] = h
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (m *CacheManager) ManagerHandler(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	current := m.GetState(user.ID)
	ctx := tghelpers.BuildContext(c)

	handler, ok := m.handlers[current]
	status := "ok"
	if !ok {
		status = "skip"
	}
	logger.Debug(ctx, logger.CompTG, "fsm.manager",
		slog.String("status", status),
		slog.String("state", string(current)),
	)
	if !ok {
		return nil
	}
	return handler(c)
}

// Len reports how many sessions are tracked, expired ones included until pruned.
func (m *CacheManager) Len() int {
	return m.cache.ItemCount()
}

// Close stops the cache's background worker.
func (m *CacheManager) Close() {
	m.cache.Stop()
}
