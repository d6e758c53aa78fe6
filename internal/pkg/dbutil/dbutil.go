package dbutil

import (
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Finalize rebinds gendry's "?" placeholders for the target driver (postgres wants $1..$n).
func Finalize(driver string, query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.BindType(driver), query), args
}

func IsConflict(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}
	return false
}
