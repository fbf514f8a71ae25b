package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/geocoder89/blogapi/internal/domain/article"
)

type ArticlesRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]article.Article
}

func NewArticlesRepo() *ArticlesRepo {
	return &ArticlesRepo{
		items: make(map[int64]article.Article),
	}
}

func (r *ArticlesRepo) Create(_ context.Context, a article.Article) (article.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// slug uniqueness checked under the same lock as the insert
	for _, existing := range r.items {
		if existing.Slug == a.Slug {
			return article.Article{}, article.ErrSlugTaken
		}
	}

	r.nextID++
	a.ID = r.nextID
	r.items[a.ID] = a

	return a, nil
}

func (r *ArticlesRepo) List(_ context.Context, filter article.ListFilter) ([]article.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]article.Article, 0, len(r.items))

	for _, a := range r.items {
		if filter.Category != "" && (a.Category == nil || !strings.EqualFold(*a.Category, filter.Category)) {
			continue
		}
		out = append(out, a)
	}

	sortNewestFirst(out)

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *ArticlesRepo) Search(_ context.Context, q string) ([]article.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(q)
	out := make([]article.Article, 0)

	for _, a := range r.items {
		if containsFold(a.Title, needle) || containsFold(a.Content, needle) || (a.Author != nil && containsFold(*a.Author, needle)) {
			out = append(out, a)
		}
	}

	sortNewestFirst(out)

	return out, nil
}

func (r *ArticlesRepo) GetByID(_ context.Context, id int64) (article.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return article.Article{}, article.ErrNotFound
	}

	return a, nil
}

func (r *ArticlesRepo) GetBySlug(_ context.Context, slug string) (article.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.items {
		if a.Slug == slug {
			return a, nil
		}
	}

	return article.Article{}, article.ErrNotFound
}

func (r *ArticlesRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return article.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *ArticlesRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.items))
	r.items = make(map[int64]article.Article)

	return n, nil
}

func (r *ArticlesRepo) Categories(_ context.Context) ([]article.CategoryCount, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, a := range r.items {
		if a.Category == nil || *a.Category == "" {
			continue
		}
		counts[*a.Category]++
	}
	r.mu.RUnlock()

	out := make([]article.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, article.CategoryCount{Name: name, Count: n})
	}

	// count desc, then name so equal counts keep a stable order
	slices.SortFunc(out, func(a, b article.CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return out, nil
}

func (r *ArticlesRepo) Ping(context.Context) error {
	return nil
}

// same order as the postgres store: date desc, id desc
func sortNewestFirst(items []article.Article) {
	slices.SortFunc(items, func(a, b article.Article) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
