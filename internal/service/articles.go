package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/blogapi/internal/apperr"
	"github.com/geocoder89/blogapi/internal/domain/article"
)

type ArticleService struct {
	articles ArticleStore
	log      *slog.Logger
	now      func() time.Time
}

func NewArticleService(articles ArticleStore, log *slog.Logger) *ArticleService {
	return &ArticleService{
		articles: articles,
		log:      log,
		now:      time.Now,
	}
}

// List returns every article newest first, optionally only those whose category equals
// category ignoring case.
func (s *ArticleService) List(ctx context.Context, category string) ([]article.Article, error) {
	items, err := s.articles.List(ctx, article.ListFilter{Category: category})
	if err != nil {
		return nil, apperr.Storage("could not list articles", err)
	}
	return items, nil
}

// Search matches q as a case-insensitive substring of title, content or author.
// A blank query matches nothing.
func (s *ArticleService) Search(ctx context.Context, q string) ([]article.Article, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []article.Article{}, nil
	}

	items, err := s.articles.Search(ctx, q)
	if err != nil {
		return nil, apperr.Storage("could not search articles", err)
	}
	return items, nil
}

func (s *ArticleService) GetByID(ctx context.Context, id int64) (article.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return article.Article{}, lookupError(err, "could not load article")
	}
	return a, nil
}

func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (article.Article, error) {
	a, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return article.Article{}, lookupError(err, "could not load article")
	}
	return a, nil
}

func (s *ArticleService) Create(ctx context.Context, req article.CreateArticleRequest) (article.Article, error) {
	if err := req.Validate(); err != nil {
		return article.Article{}, apperr.Validation("missing required fields (title, slug, content)", err)
	}

	a, dateOK := article.NewFromCreateRequest(req, s.now())
	if !dateOK {
		s.log.DebugContext(ctx, "unparseable article date, using current time", "date", string(req.Date), "slug", req.Slug)
	}

	// best effort only, the unique constraint has the final say
	_, err := s.articles.GetBySlug(ctx, a.Slug)
	switch {
	case err == nil:
		return article.Article{}, apperr.Conflict("an article with this slug already exists", article.ErrSlugTaken)
	case !errors.Is(err, article.ErrNotFound):
		return article.Article{}, apperr.Storage("could not create article", err)
	}

	created, err := s.articles.Create(ctx, a)
	if err != nil {
		if errors.Is(err, article.ErrSlugTaken) {
			return article.Article{}, apperr.Conflict("an article with this slug already exists", err)
		}
		return article.Article{}, apperr.Storage("could not create article", err)
	}

	s.log.InfoContext(ctx, "article created", "article_id", created.ID, "slug", created.Slug)

	return created, nil
}

func (s *ArticleService) DeleteByID(ctx context.Context, id int64) error {
	err := s.articles.Delete(ctx, id)
	if err != nil {
		return lookupError(err, "could not delete article")
	}

	s.log.InfoContext(ctx, "article deleted", "article_id", id)
	return nil
}

// DeleteAll removes every article and reports how many were removed. There is no undo.
func (s *ArticleService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.articles.DeleteAll(ctx)
	if err != nil {
		return 0, apperr.Storage("could not delete articles", err)
	}

	s.log.WarnContext(ctx, "all articles deleted", "count", n)
	return n, nil
}

// Categories groups articles by their stored category (case preserved), most used first.
func (s *ArticleService) Categories(ctx context.Context) ([]article.CategoryCount, error) {
	cats, err := s.articles.Categories(ctx)
	if err != nil {
		return nil, apperr.Storage("could not list categories", err)
	}
	return cats, nil
}

func (s *ArticleService) Recent(ctx context.Context, limit int) ([]article.Article, error) {
	if limit <= 0 {
		limit = article.DefaultRecentLimit
	}

	items, err := s.articles.List(ctx, article.ListFilter{Limit: limit})
	if err != nil {
		return nil, apperr.Storage("could not list recent articles", err)
	}
	return items, nil
}

func lookupError(err error, storageMessage string) error {
	if errors.Is(err, article.ErrNotFound) {
		return apperr.NotFound("article not found", err)
	}
	return apperr.Storage(storageMessage, err)
}
