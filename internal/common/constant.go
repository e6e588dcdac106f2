package common

// AuthorizationHeaderName carries the bearer access token on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token inside the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed on every HTTP response.
const RequestIDHeaderName = "X-Request-ID"

// RolePrefix is prepended to a directory role when it is rendered as a claim.
const RolePrefix = "ROLE_"
