package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gaborage/go-bricks-storefront/internal/modules/shared/cache"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/logger"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry keeps live sessions in memory and expires them after an idle TTL.
// Nothing is persisted: a restarted process starts with no sessions.
type Registry struct {
	sessions     *cache.Cache
	cartIDPrefix string
	logger       logger.Logger
	mu           sync.RWMutex
	onExpire     []func(sessionID string)
}

func NewRegistry(ttl time.Duration, maxSessions int, cartIDPrefix string, log logger.Logger) *Registry {
	r := &Registry{
		cartIDPrefix: cartIDPrefix,
		logger:       log,
	}
	r.sessions = cache.New(ttl, maxSessions,
		cache.WithSlidingExpiration(),
		cache.WithEvictFunc(r.onEvict),
	)
	return r
}

// Create starts a new anonymous session.
func (r *Registry) Create(env domain.Environment) *Session {
	s := New(uuid.NewString(), env, r.cartIDPrefix)
	r.sessions.Set(s.ID(), s)

	r.logger.Debug().
		Str("sessionId", s.ID()).
		Msg("Session created")

	return s
}

// Get returns the live session with id.
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Get(id).(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Size() int {
	return r.sessions.Size()
}

func (r *Registry) Close() {
	r.sessions.Close()
}

// OnExpire registers fn to run when a session leaves the registry by TTL or capacity.
func (r *Registry) OnExpire(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = append(r.onExpire, fn)
}

func (r *Registry) onEvict(key string, _ any) {
	r.mu.RLock()
	hooks := r.onExpire
	r.mu.RUnlock()

	for _, fn := range hooks {
		fn(key)
	}

	r.logger.Debug().
		Str("sessionId", key).
		Msg("Session expired")
}
