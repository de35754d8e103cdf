package echoapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/kazi/core"
)

func TestOrdering_Bind(t *testing.T) {
	allowed := []string{"name", "status", "created_at"}

	tests := []struct {
		name  string
		query url.Values
		want  []core.DBOrdering
	}{
		{name: "no param"},
		{name: "empty param", query: url.Values{"ordering": {""}}},
		{
			name:  "allowed fields keep their direction",
			query: url.Values{"ordering": {"-created_at, name"}},
			want: []core.DBOrdering{
				{Field: "created_at", Ascending: false},
				{Field: "name", Ascending: true},
			},
		},
		{
			name:  "unknown column dropped",
			query: url.Values{"ordering": {"password_hash"}},
		},
		{
			name:  "sql expression dropped",
			query: url.Values{"ordering": {"created_at; DROP TABLE lead; --"}},
		},
		{
			name:  "mixed input keeps only allowed columns",
			query: url.Values{"ordering": {"-status,(SELECT 1),name"}},
			want: []core.DBOrdering{
				{Field: "status", Ascending: false},
				{Field: "name", Ascending: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/leads?"+tt.query.Encode(), nil)
			ctx := echo.New().NewContext(req, httptest.NewRecorder())

			ord := new(Ordering)
			ord.Bind(ctx, allowed...)

			if !reflect.DeepEqual(ord.Orderings, tt.want) {
				t.Errorf("failed! Orderings = %+v; want %+v", ord.Orderings, tt.want)
			}
		})
	}
}
