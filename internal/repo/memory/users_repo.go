package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]user.User
	byEmail map[string]int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[int64]user.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC()

	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now

	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.items[id], nil
}

// Update runs mutate on a copy without holding the lock, so a slow mutate (a bcrypt check) does not
// block other callers. The copy is swapped in only if the stored user is still the one mutate saw;
// otherwise mutate runs again on the fresh value. A failed update leaves the stored user untouched.
func (r *UsersRepo) Update(ctx context.Context, id int64, mutate func(u *user.User) error) (user.User, error) {
	for {
		if err := ctx.Err(); err != nil {
			return user.User{}, err
		}

		r.mu.RLock()
		current, ok := r.items[id]
		r.mu.RUnlock()

		if !ok {
			return user.User{}, user.ErrNotFound
		}

		next := current

		if err := mutate(&next); err != nil {
			return user.User{}, err
		}

		updated, retry, err := r.swap(id, current, next)
		if !retry {
			return updated, err
		}
	}
}

// swap stores next if id still maps to current. retry reports a concurrent change.
func (r *UsersRepo) swap(id int64, current, next user.User) (updated user.User, retry bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.items[id] != current {
		return user.User{}, true, nil
	}

	if next.Email != current.Email {
		if owner, taken := r.byEmail[next.Email]; taken && owner != id {
			return user.User{}, false, user.ErrEmailTaken
		}
		delete(r.byEmail, current.Email)
		r.byEmail[next.Email] = id
	}

	next.ID = id
	next.UpdatedAt = time.Now().UTC()
	r.items[id] = next

	return next, false, nil
}

func (r *UsersRepo) Ping(context.Context) error {
	return nil
}
