// Package sqlxrepos implements the domain Repository interfaces on PostgreSQL.
package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/trezcool/kazi/core"
)

// where accumulates AND-ed conditions with positional args. Conditions are
// fmt verbs receiving the arg's placeholder number, e.g. "org_id = $%d".
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	nums := make([]interface{}, 0, len(args))
	for _, arg := range args {
		w.args = append(w.args, arg)
		nums = append(nums, len(w.args))
	}
	w.conds = append(w.conds, fmt.Sprintf(cond, nums...))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func orderBy(def string, ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return " ORDER BY " + def
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// paginate returns a LIMIT/OFFSET clause; an unset page size fetches all rows.
func paginate(p core.Pagination) string {
	if p.PageSize <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.Limit(), p.Offset())
}
