package domain

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// PageRequest selects up to Limit items with an id strictly below Cursor.
// A zero Cursor means the first page.
type PageRequest struct {
	Cursor int64
	Limit  int
}

// NewPageRequest parses an opaque cursor and clamps limit to [1, MaxPageLimit].
func NewPageRequest(cursor string, limit int) (PageRequest, error) {
	page := PageRequest{Limit: limit}
	if page.Limit <= 0 {
		page.Limit = DefaultPageLimit
	}
	if page.Limit > MaxPageLimit {
		page.Limit = MaxPageLimit
	}

	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return page, nil
	}
	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id <= 0 {
		return PageRequest{}, ErrInvalidCursor
	}
	page.Cursor = id
	return page, nil
}

// FetchLimit is the number of rows to read so HasMore can be computed.
func (p PageRequest) FetchLimit() int {
	return p.Limit + 1
}

func EncodeCursor(id int64) string {
	return strconv.FormatInt(id, 10)
}

// NewApplicationPage trims an over-fetched result to the page size.
func NewApplicationPage(rows []Application, page PageRequest) *ApplicationPage {
	result := &ApplicationPage{Applications: rows}
	if len(rows) > page.Limit {
		result.Applications = rows[:page.Limit]
		result.HasMore = true
	}
	if result.Applications == nil {
		result.Applications = []Application{}
	}
	if result.HasMore {
		result.NextCursor = EncodeCursor(result.Applications[len(result.Applications)-1].ID)
	}
	return result
}
