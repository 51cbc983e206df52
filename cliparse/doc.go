// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

# Precedence

CLI flags win over environment variables. A .env file is loaded first via
godotenv when present, so local development can keep secrets out of the
shell.

# Settings

Required:

  - DATABASE_URL (-d): connection string
  - ADMIN_KEY_SALT (--admin-salt): secret for admin key HMAC
  - SESSION_TOKEN_SALT (--session-salt): secret for session token HMAC

Optional:

  - PORT (-p): server port (default: 3240)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"
*/
package cliparse
