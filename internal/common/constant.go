package common

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "token"

// AuthorizationHeaderName carries "Bearer <token>" on privileged requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "
