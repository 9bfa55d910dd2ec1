// Package handlers contains HTTP handler interfaces, implementations, and middleware.
//
// This package provides:
//   - Health check interfaces and implementations
//   - Session-based authentication middleware
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewDatabaseCheck(db))
//	checker.AddCheck("cache", handlers.NewCacheCheck(cache))
//
//	status := checker.Check(ctx)
//	if !status.Healthy {
//	    log.Printf("Health check failed: %s", status.Message)
//	}
//
// # Session Authentication
//
// SessionAuth resolves opaque bearer tokens against the Redis session
// store and attaches the caller's identity to the request context:
//
//	auth := handlers.NewSessionAuth(func(ctx context.Context, token string) (handlers.Identity, error) {
//	    s, err := sessions.Get(ctx, token)
//	    if err != nil {
//	        return handlers.Identity{}, err
//	    }
//	    return handlers.Identity{UserID: s.UserID, Role: s.Role}, nil
//	})
//
//	mux := auth.Authenticate(router)
//
// Endpoints that require a logged-in caller wrap themselves with
// handlers.Require; everything else treats a missing identity as an
// anonymous request.
package handlers
