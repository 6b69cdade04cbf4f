package web

import (
	"net/http"
	"time"

	"github.com/avstrong/resort/internal/booking"
)

type loginInput struct {
	Passcode string `json:"passcode"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type statusInput struct {
	Status booking.Status `json:"status"`
}

type activeInput struct {
	Active bool `json:"active"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	token, expires, err := s.deps.Auth.Login(input.Passcode)
	if err != nil {
		s.l.LogWarnf("Failed admin login from %v", clientIP(r))
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Bookings.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Bookings.List(r.Context(), booking.Status(r.URL.Query().Get("status")))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var input statusInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	b, err := s.deps.Bookings.UpdateStatus(r.Context(), r.PathValue("id"), input.Status)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) saveRoomHandler(w http.ResponseWriter, r *http.Request) {
	var room booking.RoomOffering
	if err := s.decode(r, &room); err != nil {
		s.writeError(w, r, err)

		return
	}

	status := http.StatusCreated
	room.ID = ""

	if id := r.PathValue("id"); id != "" {
		if _, err := s.deps.Rooms.Get(r.Context(), id); err != nil {
			s.writeError(w, r, err)

			return
		}

		room.ID = id
		status = http.StatusOK
	}

	saved, err := s.deps.Rooms.Save(r.Context(), &room)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, status, saved)
}

func (s *Server) deleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Rooms.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPromosHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Promos.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) createPromoHandler(w http.ResponseWriter, r *http.Request) {
	var promo booking.PromoCode
	if err := s.decode(r, &promo); err != nil {
		s.writeError(w, r, err)

		return
	}

	promo.ID = ""

	saved, err := s.deps.Promos.Save(r.Context(), &promo)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) setPromoActiveHandler(w http.ResponseWriter, r *http.Request) {
	var input activeInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	promo, err := s.deps.Promos.SetActive(r.Context(), r.PathValue("id"), input.Active)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, promo)
}

func (s *Server) deletePromoHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Promos.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
