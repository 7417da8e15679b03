package handlers

import (
	"bikeserve/middleware"
)

// HandlerBundle groups the endpoint handlers and what the router needs to guard them.
type HandlerBundle struct {
	Auth middleware.Authenticator

	Session  *SessionHandler
	Login    *AuthHandler
	Location *LocationHandler
	Catalog  *CatalogHandler
	Profile  *ProfileHandler
	Booking  *BookingHandler
	Health   *HealthHandler
}
