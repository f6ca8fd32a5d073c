package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/finance-account-api/internal/apperr"
    "github.com/iliyamo/finance-account-api/internal/service"
)

// TimestampLayout is the envelope timestamp format: ISO‑8601 UTC with
// milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

var now = func() time.Time { return time.Now().UTC() }

func timestamp() string { return now().UTC().Format(TimestampLayout) }

// success writes {ok:true, message, timestamp, ...payload}.  A "message" key
// in payload replaces the default.
func success(c echo.Context, payload echo.Map) error {
    body := echo.Map{"ok": true, "message": "Success", "timestamp": timestamp()}
    for k, v := range payload {
        body[k] = v
    }
    return c.JSON(http.StatusOK, body)
}

// successList writes a list payload as {count, data}.
func successList[T any](c echo.Context, items []T) error {
    if items == nil {
        items = []T{}
    }
    return success(c, echo.Map{"count": len(items), "data": items})
}

// ErrorHandler renders every error as {ok:false, error, timestamp}.  apperr
// kinds pick the status; Echo errors keep theirs; anything else is a 500
// whose cause is logged but not shown to the client.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }

        status := http.StatusInternalServerError
        msg := "internal server error"

        var ae *apperr.Error
        var he *echo.HTTPError
        switch {
        case errors.As(err, &ae):
            status = ae.Kind.Status()
            msg = ae.Msg
        case errors.As(err, &he):
            status = he.Code
            msg = fmt.Sprint(he.Message)
            if he.Internal != nil {
                err = he.Internal
            }
        }

        if status >= http.StatusInternalServerError {
            log.Error("request failed",
                zap.String("method", c.Request().Method),
                zap.String("path", c.Path()),
                zap.Error(err))
        }

        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(status)
            return
        }
        _ = c.JSON(status, echo.Map{"ok": false, "error": msg, "timestamp": timestamp()})
    }
}

// requestContext derives the per-request storage context: bounded by
// requestTimeout and tagged with the client address for audit events.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
    ctx := service.WithRemoteIP(c.Request().Context(), c.RealIP())
    return context.WithTimeout(ctx, requestTimeout)
}
