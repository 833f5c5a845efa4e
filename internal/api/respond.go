package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the content type for msgpack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// respond writes v as msgpack when the client asks for it, JSON otherwise.
func respond(c echo.Context, status int, v interface{}) error {
	if wantsMsgpack(c) {
		data, err := msgpack.Marshal(v)
		if err != nil {
			return NewInternalError("failed to encode response", err)
		}
		return c.Blob(status, MIMEApplicationMsgpack, data)
	}
	return c.JSON(status, v)
}

func wantsMsgpack(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, MIMEApplicationMsgpack) || strings.Contains(accept, "application/x-msgpack")
}
