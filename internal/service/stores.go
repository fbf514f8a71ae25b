package service

import (
	"context"

	"github.com/geocoder89/blogapi/internal/domain/article"
	"github.com/geocoder89/blogapi/internal/domain/user"
)

// UserStore is implemented by repo/postgres and repo/memory.
// Uniqueness of email is enforced by the store: Create and Update report user.ErrEmailTaken.
type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	// Update loads the user, applies mutate and persists the result as one transaction.
	// If mutate returns an error nothing is written and that error is returned as is.
	Update(ctx context.Context, id int64, mutate func(u *user.User) error) (user.User, error)
}

// ArticleStore is implemented by repo/postgres and repo/memory.
// Every listing is ordered newest first.
type ArticleStore interface {
	List(ctx context.Context, filter article.ListFilter) ([]article.Article, error)
	Search(ctx context.Context, q string) ([]article.Article, error)
	GetByID(ctx context.Context, id int64) (article.Article, error)
	GetBySlug(ctx context.Context, slug string) (article.Article, error)
	Create(ctx context.Context, a article.Article) (article.Article, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]article.CategoryCount, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}
