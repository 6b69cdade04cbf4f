package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avstrong/resort/internal/auth"
	"github.com/avstrong/resort/internal/boost"
	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/inventory"
	"github.com/avstrong/resort/internal/wizard"
)

var (
	errBadBody   = errors.New("malformed request body")
	errNoSession = errors.New("wizard session not found")
)

const persistFallback = "We could not save your booking right now. Nothing was lost, please try again."

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadBody, err)
	}

	return nil
}

func statusOf(err error) int {
	switch {
	case booking.IsInputError(err) != nil:
		return http.StatusBadRequest
	case errors.Is(err, boost.ErrInvalidPromo):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, wizard.ErrTerminal),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrIDConflict),
		errors.Is(err, boost.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, wizard.ErrPaymentTimedOut):
		return http.StatusGatewayTimeout
	case booking.IsAvailabilityError(err) != nil:
		return http.StatusPreconditionFailed
	case errors.Is(err, booking.ErrPersist):
		return http.StatusServiceUnavailable
	case errors.Is(err, inventory.ErrRoomNotFound),
		errors.Is(err, boost.ErrPromoNotFound),
		errors.Is(err, booking.ErrRecordNotFound),
		errors.Is(err, errNoSession):
		return http.StatusNotFound
	case errors.Is(err, errBadBody),
		errors.Is(err, booking.ErrInvalidStatus),
		errors.Is(err, wizard.ErrPaymentMethod):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrBadPasscode), errors.Is(err, auth.ErrBadToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to statuses. Field errors go out as a
// field-to-message map; anything unexpected is logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	switch {
	case status == http.StatusBadRequest && booking.IsInputError(err) != nil:
		s.writeJSON(w, status, booking.IsInputError(err).Fields())
	case status == http.StatusUnprocessableEntity:
		s.writeJSON(w, status, map[string]string{booking.FieldPromo: boost.ErrInvalidPromo.Error()})
	case status == http.StatusPreconditionFailed:
		s.writeJSON(w, status, booking.IsAvailabilityError(err).Fields())
	case status == http.StatusServiceUnavailable:
		s.l.LogErrorf("Persistence failure on %v %v: %v", r.Method, r.URL.Path, err.Error())
		s.writeJSON(w, status, errorBody{Error: persistFallback})
	case status == http.StatusInternalServerError:
		s.l.LogErrorf("Unexpected error on %v %v: %v", r.Method, r.URL.Path, err.Error())
		s.writeJSON(w, status, errorBody{Error: http.StatusText(status)})
	case status == http.StatusUnauthorized:
		s.writeJSON(w, status, errorBody{Error: http.StatusText(status)})
	default:
		s.writeJSON(w, status, errorBody{Error: err.Error()})
	}
}
