// Package identity owns the shopper's identity: sign-in against the user directory,
// registration, guest checkout and the identity-stitch emission that follows a login.
package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

var ErrUserNotFound = errors.New("user not found")

// Directory looks up CRM users.
type Directory interface {
	// FindByCredentials returns ErrUserNotFound unless both email and password match exactly.
	FindByCredentials(ctx context.Context, email, password string) (*domain.DirectoryUser, error)
	Exists(ctx context.Context, merchantUserID string) (bool, error)
}

// StaticDirectory serves a fixed list of users held in memory.
type StaticDirectory struct {
	mu    sync.RWMutex
	users []domain.DirectoryUser
}

func NewStaticDirectory(users []domain.DirectoryUser) *StaticDirectory {
	cp := make([]domain.DirectoryUser, len(users))
	copy(cp, users)
	return &StaticDirectory{users: cp}
}

func (d *StaticDirectory) FindByCredentials(_ context.Context, email, password string) (*domain.DirectoryUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.users {
		u := d.users[i]
		if u.Email == email && subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1 {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *StaticDirectory) Exists(_ context.Context, merchantUserID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.MerchantUserID == merchantUserID {
			return true, nil
		}
	}
	return false, nil
}

func (d *StaticDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
