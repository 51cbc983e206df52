// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and request/response helpers.

# Logging

WithLogging wraps a handler and logs request start and completion with
method, path, and duration via log/slog.

# JSON Helpers

  - JSONResponse: write a JSON body with a status code
  - ErrorResponse: write a models.ErrorResponse
  - ParseJSONBody: decode a request body into a struct

# CORS

CORS allows cross-origin requests and answers preflight OPTIONS requests.
The allowed headers include the auth headers X-User-ID, X-Session-Token,
and X-Admin-Key.

# Client IP

GetClientIP resolves the caller's address from X-Forwarded-For, X-Real-IP,
or RemoteAddr, in that order.
*/
package middleware
