package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/kazi/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `?ordering=field,-field` query param. Fields end up
// verbatim in ORDER BY clauses, so anything outside the handler's allowed
// column set is dropped.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !isOrderable(field, allowed) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func isOrderable(field string, allowed []string) bool {
	for _, col := range allowed {
		if field == col {
			return true
		}
	}
	return false
}

// pathID parses the ":id" route param.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// IDsRequest carries the target rows of bulk operations: the repeated `id`
// query param on DELETE, or a JSON body on POST (echo only binds query
// params for GET/DELETE).
type IDsRequest struct {
	IDs []int `json:"ids" query:"id"`
}

func (r *IDsRequest) Contains(id int) bool {
	for _, v := range r.IDs {
		if v == id {
			return true
		}
	}
	return false
}
