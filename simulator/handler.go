package simulator

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"treeval/transport"
)

// Handler serves a fresh Device on every websocket connection.
func Handler(options ...Option) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		port, err := transport.Accept(w, r)
		if err != nil {
			log.Warn().Err(err).Msg("rejected accelerator connection")
			return
		}
		defer port.Close()

		log.Info().Msgf("accelerator connection from %s", r.RemoteAddr)
		device := NewDevice(options...)
		if err := device.Serve(r.Context(), port); err != nil && !transport.IsClosed(err) {
			log.Warn().Err(err).Msgf("accelerator connection from %s ended", r.RemoteAddr)
			return
		}
		log.Info().Msgf("accelerator connection from %s closed", r.RemoteAddr)
	})
}
