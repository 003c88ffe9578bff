package web

import (
	"golang.org/x/time/rate"

	"livescore/api/api"
	"livescore/api/notify"
)

// Config holds the configuration for the web server
type Config struct {
	Addr     string
	API      *api.API
	Notifier notify.Notifier
}

// Server is the HTTP server that handles the admin, judge and spectator surfaces
type Server struct {
	api         *api.API
	notifier    notify.Notifier
	authLimiter *rate.Limiter
}

// adminSessionCookie is the cookie carrying the admin session marker.
const adminSessionCookie = "admin_session"
