// Package services holds the business logic behind the HTTP handlers.
//
//   - AuthService: registration, login and refresh token rotation
//   - PrintRequestService: pricing, uploads, history and status updates
//   - AdminService: the print shop dashboard
//
// Services take the caller as an explicit *auth.Principal and return
// apperrors values that middleware.HandleAPIError maps to HTTP statuses.
package services
