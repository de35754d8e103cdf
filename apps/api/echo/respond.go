package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/kazi/core"
)

// Response is the JSON envelope wrapping every API payload.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, Response{Message: "ok", Data: data})
}

func respondList(ctx echo.Context, data interface{}, meta core.ListMeta) error {
	return ctx.JSON(http.StatusOK, Response{Message: "ok", Data: data, Meta: meta})
}
