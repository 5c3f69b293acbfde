package echoapi

import (
	"github.com/labstack/echo/v4"
)

// response is the envelope of every JSON answer.
type response struct {
	OK      bool              `json:"ok"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, response{OK: true, Data: data})
}

func respondMessage(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, response{OK: true, Message: msg})
}
