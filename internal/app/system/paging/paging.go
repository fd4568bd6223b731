// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the default number of rows returned by paged lists.
// Keep this as an int because most call sites add/subtract and then
// cast to int64 for Mongo Find().SetLimit().
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 100

// LimitPlusOne returns size+1 as int64 for look‑ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne(size int) int64 { return int64(size + 1) }

// ParseLimit extracts the "limit" query parameter, clamped to
// [1, MaxPageSize]. Returns PageSize if not present or invalid.
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return PageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ParseAfter extracts the "after" cursor: the hex id of the last row of
// the previous page. Returns the zero id for the first page or a malformed
// cursor.
func ParseAfter(r *http.Request) primitive.ObjectID {
	s := query.Get(r, "after")
	if s == "" {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// Page is the result of TrimPage.
type Page struct {
	HasNext bool
	// Next is the cursor for the following page, empty when HasNext is false.
	Next string
}

// TrimPage trims rows fetched with LimitPlusOne(size) back to size and
// reports whether another page exists. idFn extracts the keyset id.
func TrimPage[T any](rows *[]T, size int, idFn func(T) primitive.ObjectID) Page {
	if len(*rows) <= size {
		return Page{}
	}
	*rows = (*rows)[:size]
	last := (*rows)[size-1]
	return Page{HasNext: true, Next: idFn(last).Hex()}
}
