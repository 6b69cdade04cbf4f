package web

import (
	"net/http"
	"strings"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/voucher"
	"github.com/avstrong/resort/internal/wizard"
)

type sessionResponse struct {
	ID     string      `json:"id"`
	Wizard wizard.View `json:"wizard"`
}

type selectRoomInput struct {
	RoomID string `json:"roomId"`
}

type checkInInput struct {
	CheckIn string `json:"checkIn"`
}

type detailsInput struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Guests   int    `json:"guests"`
}

type promoInput struct {
	Code string `json:"code"`
}

type paymentInput struct {
	Method booking.PaymentMethod `json:"method"`
}

// parseLenient turns an unparsable date into a missing one, which the guest
// step validation then reports next to the field.
func parseLenient(s string) booking.Date {
	d, err := booking.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return booking.Date{}
	}

	return d
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *wizard.Wizard, bool) {
	id := r.PathValue("id")

	wz, ok := s.deps.Wizards.Get(id)
	if !ok {
		s.writeError(w, r, errNoSession)

		return "", nil, false
	}

	return id, wz, true
}

func (s *Server) respondSession(w http.ResponseWriter, status int, id string, wz *wizard.Wizard) {
	s.writeJSON(w, status, sessionResponse{ID: id, Wizard: wz.View()})
}

func (s *Server) createWizardHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link := wizard.DeepLink{
		RoomID:   q.Get("room"),
		CheckIn:  q.Get("checkIn"),
		CheckOut: q.Get("checkOut"),
		Guests:   q.Get("guests"),
	}

	wz, err := wizard.NewFromDeepLink(r.Context(), s.deps.WizardDeps, link)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	id := s.deps.Wizards.Create(wz)

	s.respondSession(w, http.StatusCreated, id, wz)
}

func (s *Server) getWizardHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) selectRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	var input selectRoomInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := wz.SelectRoom(r.Context(), input.RoomID); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) checkInHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	var input checkInInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := wz.ChangeCheckIn(parseLenient(input.CheckIn)); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) detailsHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	var input detailsInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	dates := booking.DateRange{CheckIn: parseLenient(input.CheckIn), CheckOut: parseLenient(input.CheckOut)}
	guest := booking.GuestDetails{Name: input.Name, Email: input.Email, Phone: input.Phone, Guests: input.Guests}

	if err := wz.SubmitDetails(dates, guest); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) applyPromoHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	var input promoInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := wz.ApplyPromo(r.Context(), input.Code); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) removePromoHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := wz.RemovePromo(); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) backHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := wz.Back(); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) paymentHandler(w http.ResponseWriter, r *http.Request) {
	id, wz, ok := s.session(w, r)
	if !ok {
		return
	}

	var input paymentInput
	if err := s.decode(r, &input); err != nil {
		s.writeError(w, r, err)

		return
	}

	if _, err := wz.Pay(r.Context(), input.Method); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.respondSession(w, http.StatusOK, id, wz)
}

func (s *Server) voucherHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b, err := s.deps.Bookings.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	pdf, err := voucher.Render(b, s.conf.Hotel)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+b.ID+".pdf")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(pdf); err != nil {
		s.l.LogErrorf("Could not write voucher %v: %v", b.ID, err.Error())
	}
}
