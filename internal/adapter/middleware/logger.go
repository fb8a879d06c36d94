package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus entry per request.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.Fields{
				"method":  v.Method,
				"uri":     v.URIPath,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}
			if v.RequestID != "" {
				fields["request_id"] = v.RequestID
			}
			if who, ok := CurrentIdentity(c); ok {
				fields["user_id"] = who.ID
			}
			entry := log.WithFields(fields)
			switch {
			case v.Error != nil || v.Status >= 500:
				entry.WithError(v.Error).Error("http request")
			case v.Status >= 400:
				entry.Warn("http request")
			default:
				entry.Info("http request")
			}
			return nil
		},
	})
}
