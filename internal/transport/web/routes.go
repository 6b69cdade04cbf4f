package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/avstrong/resort/internal/booking"
)

func (s *Server) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if featured, _ := strconv.ParseBool(q.Get("featured")); featured {
		rooms, err := s.deps.Rooms.Featured(r.Context())
		if err != nil {
			s.writeError(w, r, err)

			return
		}

		s.writeJSON(w, http.StatusOK, rooms)

		return
	}

	rooms, err := s.deps.Rooms.List(r.Context(), booking.RoomType(q.Get("type")))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := s.deps.Rooms.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, room)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) public(pattern string, h http.HandlerFunc) (string, http.Handler) {
	return pattern, s.applyMiddlewares(h,
		s.recoverMiddleware(),
		s.loggerMiddleware(pattern),
		s.tracingMiddleware(pattern),
		s.rateLimitMiddleware(),
	)
}

func (s *Server) admin(pattern string, h http.Handler) (string, http.Handler) {
	return pattern, s.applyMiddlewares(h,
		s.adminMiddleware(),
		s.recoverMiddleware(),
		s.loggerMiddleware(pattern),
		s.tracingMiddleware(pattern),
		s.rateLimitMiddleware(),
	)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	r.Handle(s.public("GET /api/rooms/v1", s.listRoomsHandler))
	r.Handle(s.public("GET /api/rooms/v1/{id}", s.getRoomHandler))

	r.Handle(s.public("POST /api/wizards/v1", s.createWizardHandler))
	r.Handle(s.public("GET /api/wizards/v1/{id}", s.getWizardHandler))
	r.Handle(s.public("POST /api/wizards/v1/{id}/room", s.selectRoomHandler))
	r.Handle(s.public("POST /api/wizards/v1/{id}/check-in", s.checkInHandler))
	r.Handle(s.public("POST /api/wizards/v1/{id}/details", s.detailsHandler))
	r.Handle(s.public("POST /api/wizards/v1/{id}/promo", s.applyPromoHandler))
	r.Handle(s.public("DELETE /api/wizards/v1/{id}/promo", s.removePromoHandler))
	r.Handle(s.public("POST /api/wizards/v1/{id}/back", s.backHandler))
	r.Handle(s.public("POST /api/wizards/v1/{id}/payment", s.paymentHandler))

	r.Handle(s.public("GET /api/bookings/v1/{id}/voucher", s.voucherHandler))

	r.Handle(s.public("POST /api/admin/v1/login", s.loginHandler))
	r.Handle(s.admin("GET /api/admin/v1/dashboard", http.HandlerFunc(s.dashboardHandler)))
	r.Handle(s.admin("GET /api/admin/v1/bookings", http.HandlerFunc(s.listBookingsHandler)))
	r.Handle(s.admin("POST /api/admin/v1/bookings/{id}/status", http.HandlerFunc(s.updateStatusHandler)))
	r.Handle(s.admin("POST /api/admin/v1/rooms", http.HandlerFunc(s.saveRoomHandler)))
	r.Handle(s.admin("PUT /api/admin/v1/rooms/{id}", http.HandlerFunc(s.saveRoomHandler)))
	r.Handle(s.admin("DELETE /api/admin/v1/rooms/{id}", http.HandlerFunc(s.deleteRoomHandler)))
	r.Handle(s.admin("GET /api/admin/v1/promos", http.HandlerFunc(s.listPromosHandler)))
	r.Handle(s.admin("POST /api/admin/v1/promos", http.HandlerFunc(s.createPromoHandler)))
	r.Handle(s.admin("POST /api/admin/v1/promos/{id}/active", http.HandlerFunc(s.setPromoActiveHandler)))
	r.Handle(s.admin("DELETE /api/admin/v1/promos/{id}", http.HandlerFunc(s.deletePromoHandler)))

	if s.deps.Live != nil {
		r.Handle(s.admin("GET /api/admin/v1/bookings/live", s.deps.Live))
	}

	if s.deps.MetricsHandler != nil {
		r.Handle("GET /metrics", s.deps.MetricsHandler)
	}

	r.Handle(
		fmt.Sprintf("GET %s", s.conf.LivenessEndpoint),
		s.applyMiddlewares(http.HandlerFunc(s.livenessHandler), s.recoverMiddleware()),
	)
}
