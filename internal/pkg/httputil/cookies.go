package httputil

// Cookie and header names shared by handlers, middleware, and tests.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFTokenCookie    = "csrf_token"

	CSRFTokenHeader = "X-CSRF-Token"
)
