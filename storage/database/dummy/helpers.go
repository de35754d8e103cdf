package dummydb

import "github.com/trezcool/kazi/core"

var pkCount int

func nextPK() int {
	pkCount++
	return pkCount
}

// paginate mirrors the SQL repos: no page size means all rows.
func paginate[T any](items []T, p core.Pagination) []T {
	if p.PageSize <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
