// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package auth

import "strings"

// Cookie names carrying tokens.
const (
	AccessCookieName  = "auth"
	RefreshCookieName = "refresh"
)

const bearerPrefix = "Bearer "

// BearerToken returns the token after "Bearer " in an Authorization header
// value, or false when the header is absent or not a bearer credential.
func BearerToken(authorization string) (string, bool) {
	token, found := strings.CutPrefix(authorization, bearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// CookieValue parses a Cookie header as ";"-separated key=value pairs and
// returns the first value for name, or false when no pair matches.
func CookieValue(cookieHeader, name string) (string, bool) {
	for _, part := range strings.Split(cookieHeader, ";") {
		pair := strings.TrimSpace(part)
		value, found := strings.CutPrefix(pair, name+"=")
		if found && value != "" {
			return value, true
		}
	}
	return "", false
}

// AccessTokenFrom resolves the access-token candidate from request headers.
// Precedence is fixed everywhere: cookie "auth" first, then the bearer
// header. First match wins, no merging.
func AccessTokenFrom(authorization, cookieHeader string) (string, bool) {
	if token, ok := CookieValue(cookieHeader, AccessCookieName); ok {
		return token, true
	}
	return BearerToken(authorization)
}

// RefreshTokenFrom resolves the refresh-token candidate from request
// headers. Precedence is fixed: bearer header first, then cookie "refresh".
func RefreshTokenFrom(authorization, cookieHeader string) (string, bool) {
	if token, ok := BearerToken(authorization); ok {
		return token, true
	}
	return CookieValue(cookieHeader, RefreshCookieName)
}
