// Package health exposes liveness and readiness probes.
//
// A [Checker] runs named [CheckFunc] probes concurrently under one deadline:
//
//	checker := health.New(health.Checks{
//		"db":    db.Healthcheck(pool),
//		"redis": redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second))
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", checker.ReadinessHandler())
//
// Handlers answer plain text unless the client asks for JSON with an
// Accept header or ?format=json.
package health
