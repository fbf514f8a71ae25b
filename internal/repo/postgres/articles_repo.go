package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/blogapi/internal/domain/article"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const articleColumns = `id, title, slug, content, author, image, date, category, read_time, author_image, author_role`

// newest first, id breaks ties so equal dates keep a stable order
const newestFirst = ` ORDER BY date DESC, id DESC`

type ArticlesRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewArticlesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ArticlesRepo {
	return &ArticlesRepo{
		pool:     pool,
		observer: observer{prom: prom},
	}
}

func (r *ArticlesRepo) Create(ctx context.Context, a article.Article) (article.Article, error) {
	err := r.observe("articles.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO articles (title, slug, content, author, image, date, category, read_time, author_image, author_role)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			 RETURNING id`,
			a.Title, a.Slug, a.Content, a.Author, a.Image, a.Date, a.Category, a.ReadTime, a.AuthorImage, a.AuthorRole,
		).Scan(&a.ID)
	})

	if err != nil {
		if isUniqueViolation(err, articlesSlugKey) {
			return article.Article{}, article.ErrSlugTaken
		}
		return article.Article{}, err
	}

	return a, nil
}

func (r *ArticlesRepo) List(ctx context.Context, filter article.ListFilter) ([]article.Article, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", argsPosition))
		args = append(args, filter.Category)
		argsPosition++
	}

	query := `SELECT ` + articleColumns + ` FROM articles`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += newestFirst

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argsPosition)
		args = append(args, filter.Limit)
	}

	return r.query(ctx, "articles.list", query, args...)
}

func (r *ArticlesRepo) Search(ctx context.Context, q string) ([]article.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE title ILIKE $1 OR content ILIKE $1 OR author ILIKE $1` + newestFirst

	return r.query(ctx, "articles.search", query, containsPattern(q))
}

func (r *ArticlesRepo) GetByID(ctx context.Context, id int64) (article.Article, error) {
	return r.get(ctx, "articles.get_by_id", `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
}

func (r *ArticlesRepo) GetBySlug(ctx context.Context, slug string) (article.Article, error) {
	return r.get(ctx, "articles.get_by_slug", `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
}

func (r *ArticlesRepo) Delete(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag

	err := r.observe("articles.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return article.ErrNotFound
	}

	return nil
}

// DeleteAll is a single statement, so it either removes every row or none.
func (r *ArticlesRepo) DeleteAll(ctx context.Context) (int64, error) {
	var tag pgconn.CommandTag

	err := r.observe("articles.delete_all", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM articles`)
		return err
	})

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *ArticlesRepo) Categories(ctx context.Context) ([]article.CategoryCount, error) {
	var rows pgx.Rows

	err := r.observe("articles.categories", func() error {
		var err error
		rows, err = r.pool.Query(ctx, `
			SELECT category, COUNT(*)
			FROM articles
			WHERE category IS NOT NULL AND category <> ''
			GROUP BY category
			ORDER BY COUNT(*) DESC, category ASC`)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]article.CategoryCount, 0)

	for rows.Next() {
		var c article.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ArticlesRepo) get(ctx context.Context, op, query string, arg interface{}) (article.Article, error) {
	var a article.Article

	err := r.observe(op, func() error {
		return scanArticle(r.pool.QueryRow(ctx, query, arg), &a)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, err
	}

	return a, nil
}

func (r *ArticlesRepo) query(ctx context.Context, op, query string, args ...interface{}) ([]article.Article, error) {
	var rows pgx.Rows

	err := r.observe(op, func() error {
		var err error
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]article.Article, 0)

	for rows.Next() {
		var a article.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func scanArticle(row pgx.Row, a *article.Article) error {
	return row.Scan(
		&a.ID,
		&a.Title,
		&a.Slug,
		&a.Content,
		&a.Author,
		&a.Image,
		&a.Date,
		&a.Category,
		&a.ReadTime,
		&a.AuthorImage,
		&a.AuthorRole,
	)
}
