// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP route table.

Routes use Go 1.22+ method patterns on http.ServeMux:

	POST /users                  Register
	POST /users/{id}/verify      Verify (admin)
	POST /polls                  CreatePoll (admin)
	POST /polls/{id}/questions   AddQuestion (admin)
	POST /questions/{id}/options AddOption (admin)
	GET  /polls/{id}             GetPoll
	POST /polls/{id}/answers     SubmitAnswers
	GET  /polls/{id}/my-answers  GetMyAnswers
	GET  /health                 health check

All routes are wrapped with middleware.WithLogging.
*/
package router
