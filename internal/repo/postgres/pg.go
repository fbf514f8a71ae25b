package postgres

import (
	"errors"
	"strings"

	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// constraint names created by migrations/0001_init.sql
const (
	usersEmailKey   = "users_email_key"
	articlesSlugKey = "articles_slug_key"
)

type observer struct {
	prom *observability.Prom
}

func (o observer) observe(op string, fn func() error) error {
	if o.prom != nil {
		return o.prom.ObserveDB(op, fn)
	}
	return fn()
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns q into an ILIKE pattern matching q literally anywhere in the value.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
