package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/geocoder89/blogapi/internal/domain/article"
	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/geocoder89/blogapi/internal/repo/memory"
	"github.com/geocoder89/blogapi/internal/security"
	"golang.org/x/crypto/bcrypt"
)

var (
	errDown            = errors.New("connection refused")
	errHashUnavailable = errors.New("hashing unavailable")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastHasher() *security.Hasher {
	return security.NewHasher(bcrypt.MinCost)
}

// brokenUsers fails every call, standing in for an unreachable database.
type brokenUsers struct{}

func (brokenUsers) Create(context.Context, user.User) (user.User, error) { return user.User{}, errDown }
func (brokenUsers) GetByID(context.Context, int64) (user.User, error)    { return user.User{}, errDown }
func (brokenUsers) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, errDown
}
func (brokenUsers) Update(context.Context, int64, func(*user.User) error) (user.User, error) {
	return user.User{}, errDown
}

// countingArticles records how many calls reached the wrapped store.
type countingArticles struct {
	*memory.ArticlesRepo
	searches int
}

func (c *countingArticles) Search(ctx context.Context, q string) ([]article.Article, error) {
	c.searches++
	return c.ArticlesRepo.Search(ctx, q)
}

type brokenArticles struct{}

func (brokenArticles) List(context.Context, article.ListFilter) ([]article.Article, error) {
	return nil, errDown
}
func (brokenArticles) Search(context.Context, string) ([]article.Article, error) { return nil, errDown }
func (brokenArticles) GetByID(context.Context, int64) (article.Article, error) {
	return article.Article{}, errDown
}
func (brokenArticles) GetBySlug(context.Context, string) (article.Article, error) {
	return article.Article{}, errDown
}
func (brokenArticles) Create(context.Context, article.Article) (article.Article, error) {
	return article.Article{}, errDown
}
func (brokenArticles) Delete(context.Context, int64) error      { return errDown }
func (brokenArticles) DeleteAll(context.Context) (int64, error) { return 0, errDown }
func (brokenArticles) Categories(context.Context) ([]article.CategoryCount, error) {
	return nil, errDown
}

func ptr(s string) *string { return &s }

type brokenHasher struct{}

func (brokenHasher) Hash(string) (string, error) { return "", errHashUnavailable }
func (brokenHasher) Check(string, string) error  { return errHashUnavailable }
