package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "glimpse_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// UploadedImageBytes counts bytes accepted for stored images, by bucket.
var UploadedImageBytes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "glimpse_uploaded_image_bytes_total",
	Help: "Total bytes of uploaded images accepted for storage",
}, []string{"bucket"})

// NewPrometheus creates the fiber prometheus middleware for the service.
func NewPrometheus() *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New("glimpse")
}

// MetricsMiddleware wraps the fiberprometheus handler as a fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
