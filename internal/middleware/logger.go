package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"

    "github.com/iliyamo/finance-account-api/internal/metrics"
)

// RequestLogger logs one line per request through zap and records the
// request in the HTTP metrics.  Errors are handed to the Echo error handler
// first so the logged status is the one the client received.
func RequestLogger(log *zap.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogLatency:   true,
        LogMethod:    true,
        LogURI:       true,
        LogRoutePath: true,
        LogStatus:    true,
        LogRemoteIP:  true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            route := v.RoutePath
            if route == "" {
                route = "unmatched"
            }
            m.ObserveHTTP(v.Method, route, v.Status, v.Latency.Seconds())

            fields := []zap.Field{
                zap.String("method", v.Method),
                zap.String("uri", v.URI),
                zap.Int("status", v.Status),
                zap.Duration("latency", v.Latency.Round(time.Microsecond)),
                zap.String("remote_ip", v.RemoteIP),
            }
            if v.Error != nil {
                fields = append(fields, zap.Error(v.Error))
            }
            switch {
            case v.Status >= 500:
                log.Error("request", fields...)
            case v.Status >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        },
    })
}
