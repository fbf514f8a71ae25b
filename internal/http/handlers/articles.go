package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/article"
	"github.com/gin-gonic/gin"
)

const articlesTimeout = 3 * time.Second

type Articles interface {
	List(ctx context.Context, category string) ([]article.Article, error)
	Search(ctx context.Context, q string) ([]article.Article, error)
	GetByID(ctx context.Context, id int64) (article.Article, error)
	GetBySlug(ctx context.Context, slug string) (article.Article, error)
	Create(ctx context.Context, req article.CreateArticleRequest) (article.Article, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]article.CategoryCount, error)
	Recent(ctx context.Context, limit int) ([]article.Article, error)
}

type ArticlesHandler struct {
	articles Articles
	log      *slog.Logger
}

func NewArticlesHandler(articles Articles, log *slog.Logger) *ArticlesHandler {
	return &ArticlesHandler{articles: articles, log: log}
}

func (h *ArticlesHandler) List(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	items, err := h.articles.List(cctx, ctx.Query("category"))
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *ArticlesHandler) Search(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	items, err := h.articles.Search(cctx, ctx.Query("q"))
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// Get resolves :ref as an id when it parses as an integer and as a slug otherwise.
func (h *ArticlesHandler) Get(ctx *gin.Context) {
	ref := ctx.Param("ref")

	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	var (
		a   article.Article
		err error
	)

	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		a, err = h.articles.GetByID(cctx, id)
	} else {
		a, err = h.articles.GetBySlug(cctx, ref)
	}

	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *ArticlesHandler) Create(ctx *gin.Context) {
	var req article.CreateArticleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	a, err := h.articles.Create(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Article created successfully",
		"article": a,
	})
}

func (h *ArticlesHandler) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("ref"), 10, 64)
	if err != nil {
		RespondNotFound(ctx, "article not found")
		return
	}

	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	if err := h.articles.DeleteByID(cctx, id); err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

func (h *ArticlesHandler) DeleteAll(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	n, err := h.articles.DeleteAll(cctx)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "All articles deleted successfully",
		"count":   n,
	})
}

func (h *ArticlesHandler) Categories(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	cats, err := h.articles.Categories(cctx)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, cats)
}

// Recent falls back to the default limit when ?limit is missing, not a number or not positive.
func (h *ArticlesHandler) Recent(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit <= 0 {
		limit = article.DefaultRecentLimit
	}

	cctx, cancel := withTimeout(ctx, articlesTimeout)
	defer cancel()

	items, err := h.articles.Recent(cctx, limit)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}
