// Package middlewares provides net/http middleware for dispatch applications.
//
// # Request ID
//
// RequestID reuses an incoming X-Request-ID (or generates a UUIDv7) and stores
// it in the request context. Register dispatch.RequestIDExtractor on the
// logger so every record carries request_id; failure documents carry it too.
//
//	log := logger.New(dispatch.RequestIDExtractor)
//	app := dispatch.New(
//	    dispatch.WithLogger(log),
//	    dispatch.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover turns panics into a logged PanicError and a 500 response when
// nothing was written yet.
//
//	dispatch.WithMiddleware(middlewares.Recover(middlewares.WithRecoverLogger(log)))
//
// # Timeout
//
// Timeout bounds the request context. A handler that runs past the deadline
// without writing gets a 503.
//
//	dispatch.WithMiddleware(middlewares.Timeout(10*time.Second, log))
//
// # CORS
//
// CORS adds Access-Control headers for allowed origins and answers
// preflights. Plain OPTIONS requests still reach the dispatcher.
//
//	dispatch.WithMiddleware(middlewares.CORS(
//	    middlewares.WithCORSOrigins("https://app.example"),
//	    middlewares.WithCORSCredentials(),
//	))
//
// # Access log
//
// AccessLog writes one record per request with method, path, status, size
// and duration.
//
//	dispatch.WithMiddleware(middlewares.AccessLog(log))
package middlewares
