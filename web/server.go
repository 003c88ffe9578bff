/* server.go
 * Contains the HTTP server construction and Start function that listens for
 * incoming connections
 */

package web

import (
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"livescore/metrics"
)

// NewServer builds a Server from the given configuration.
func NewServer(cfg Config) *Server {
	return &Server{
		api:      cfg.API,
		notifier: cfg.Notifier,
		// Passcodes are low entropy; cap exchange attempts to slow down guessing
		authLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Handler returns the route table. Split out from Start so tests can drive the
// handlers through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth", s.AdminAuthHandler)
	mux.HandleFunc("/api/events", s.EventsHandler)
	mux.HandleFunc("/api/events/", s.EventHandler)
	mux.HandleFunc("/api/participants", s.ParticipantsHandler)
	mux.HandleFunc("/api/participants/", s.ParticipantHandler)
	mux.HandleFunc("/api/scores", s.ScoresHandler)
	mux.HandleFunc("/api/results", s.ResultsHandler)
	mux.HandleFunc("/api/judges", s.JudgesHandler)
	mux.HandleFunc("/api/judges/auth", s.JudgeAuthHandler)
	mux.HandleFunc("/ws", s.SubscribeHandler)
	mux.HandleFunc("/healthz", s.HealthzHandler)
	mux.Handle("/metrics", metrics.Handler())

	return mux
}

// Start initializes and starts the HTTP server with the given configuration.
// Only the header read is bounded by a server-wide timeout; the /ws endpoint holds
// connections open for the lifetime of a subscriber, so whole-request timeouts
// would cut spectators off.
func Start(cfg Config) error {
	s := NewServer(cfg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Println("HTTP server listening on", cfg.Addr)
	return srv.ListenAndServe()
}
