package article

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// defaults applied to any field the client leaves out (or sends empty)
const (
	DefaultAuthor      = "Anonyme"
	DefaultCategory    = "General"
	DefaultReadTime    = "5 min read"
	DefaultAuthorImage = "https://images.pexels.com/photos/415829/pexels-photo-415829.jpeg?auto=compress&cs=tinysrgb&w=1600"
	DefaultAuthorRole  = "Editor"

	// DefaultRecentLimit is used when the caller does not ask for a specific number of recent posts.
	DefaultRecentLimit = 3
)

var (
	ErrNotFound  = errors.New("article not found")
	ErrSlugTaken = errors.New("article slug already exists")
)

// Article is the stored blog post. Optional columns are nullable, hence the pointers.
type Article struct {
	ID          int64     `json:"id,string"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Author      *string   `json:"author"`
	Image       *string   `json:"image"`
	Date        time.Time `json:"date"`
	Category    *string   `json:"category"`
	ReadTime    *string   `json:"readTime"`
	AuthorImage *string   `json:"author_image"`
	AuthorRole  *string   `json:"author_role"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// with an empty category no filter is applied, with Limit <= 0 every row is returned
type ListFilter struct {
	Category string
	Limit    int
}

type CreateArticleRequest struct {
	Title       string    `json:"title" binding:"required"`
	Slug        string    `json:"slug" binding:"required"`
	Content     string    `json:"content" binding:"required"`
	Author      string    `json:"author"`
	Image       string    `json:"image"`
	Date        DateInput `json:"date"`
	Category    string    `json:"category"`
	ReadTime    string    `json:"readTime"`
	AuthorImage string    `json:"author_image"`
	AuthorRole  string    `json:"author_role"`
}

// DateInput is the client's "date" as sent. Values that are not JSON strings are kept as their JSON
// text so they fail ParseDate and fall back to the current time instead of rejecting the request.
type DateInput string

func (d *DateInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = DateInput(s)
		return nil
	}

	*d = DateInput(b)
	return nil
}

func (r CreateArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Slug, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// NewFromCreateRequest builds an Article with every default filled in. The returned bool is false
// when a date was supplied but could not be parsed and now was used instead.
func NewFromCreateRequest(req CreateArticleRequest, now time.Time) (Article, bool) {
	date, ok := now.UTC(), true

	if strings.TrimSpace(string(req.Date)) != "" {
		date, ok = ParseDate(string(req.Date), now)
	}

	a := Article{
		Title:       req.Title,
		Slug:        req.Slug,
		Content:     req.Content,
		Author:      withDefault(req.Author, DefaultAuthor),
		Image:       optional(req.Image),
		Date:        date,
		Category:    withDefault(req.Category, DefaultCategory),
		ReadTime:    withDefault(req.ReadTime, DefaultReadTime),
		AuthorImage: withDefault(req.AuthorImage, DefaultAuthorImage),
		AuthorRole:  withDefault(req.AuthorRole, DefaultAuthorRole),
	}

	return a, ok
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts the ISO-8601 shapes clients actually send. Timestamps without an offset are
// read as UTC. On failure it returns now and false.
func ParseDate(raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), true
		}
	}

	return now.UTC(), false
}

func withDefault(v, fallback string) *string {
	if v == "" {
		v = fallback
	}
	return &v
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
