// Package session keeps the client-side authentication state and talks to
// the session backend.
//
// The backend uses cookie sessions protected by a CSRF token. A Manager
// fetches the token from /api/set-csrf-token, caches it in its state and
// sends it as the X-CSRFToken header on register, login, logout and user
// checks. When no token is cached the csrftoken cookie set by the backend
// is used instead; without either, protected calls fail with
// ErrMissingCSRFToken before any request is made.
//
// State changes flow through a store.Store[AuthState]. Phase transitions are
// declared in a statemachine table and applied atomically with the user
// fields, so subscribers never observe a half-applied change:
//
//	mgr := session.NewManager(client,
//		session.WithStorage(files),
//		session.WithLogger(log),
//	)
//	_ = mgr.Restore(ctx)
//	if err := mgr.Login(ctx, email, password); errors.Is(err, session.ErrAuthRejected) {
//		// wrong credentials
//	}
//
// A failed login or register always clears the user, even one that was
// authenticated before the attempt. Logout first checks /api/user; a 401
// there clears the session locally and returns ErrSessionExpired without
// calling /api/logout.
//
// With a kv.Store configured the user, the authenticated flag and
// optionally the token are saved under "auth-storage" after every change
// and loaded back by Restore.
package session
