// Package datastore holds options shared by all gorm backed stores.
package datastore

import "strconv"

type ListOptions struct {
	Limit  int
	Offset int
}

const DefaultLimit = 1000

func ParseListOptions(limit, offset int) ListOptions {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		limit = -1
		offset = 0
	}
	if offset < 0 {
		offset = 0
	}
	return ListOptions{Limit: limit, Offset: offset}
}

// ListOptionsFromQuery parses limit and offset query parameters, treating
// missing or malformed values as zero.
func ListOptionsFromQuery(limit, offset string) ListOptions {
	l, _ := strconv.Atoi(limit)
	o, _ := strconv.Atoi(offset)
	return ParseListOptions(l, o)
}
