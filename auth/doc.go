// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides HMAC-based keys and tokens.

# Admin Keys

Admin operations (poll administration, user verification) are protected by a
single service-wide key derived from the admin salt:

	key := auth.GenerateAdminKey(cfg.AdminKeySalt)
	err := auth.ValidateAdminKey(header, cfg.AdminKeySalt)

# Session Tokens

Session tokens are deterministic HMACs over the user id. The client sends
both X-User-ID and X-Session-Token; validation recomputes the HMAC, so no
token storage is needed:

	token := auth.GenerateSessionToken(userID, cfg.SessionTokenSalt)
	err := auth.ValidateSessionToken(userID, token, cfg.SessionTokenSalt)

All comparisons use hmac.Equal to stay constant-time.

# IP Hashing

HashIP produces a salted one-way hash of a client IP for deduplication
without storing the address itself.
*/
package auth
