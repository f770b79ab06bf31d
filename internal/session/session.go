package session

import (
	"context"
	"errors"
	"time"

	"storefront-service/internal/cart"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrLocked   = errors.New("session is locked")
)

// Session связывает корзину с получателем на время визита.
type Session struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipient_id"`
	Cart        *cart.Cart `json:"cart"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (s *Session) clone() *Session {
	cp := *s
	if s.Cart != nil {
		cp.Cart = s.Cart.Clone()
	} else {
		cp.Cart = cart.New()
	}
	return &cp
}

// Store keeps sessions. Get returns a detached copy; Update serialises
// read-modify-write per session and discards the change when fn fails.
type Store interface {
	Create(ctx context.Context, recipientID string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Locker выдаёт эксклюзивную блокировку по ключу; release снимает только свою.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
