package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resort"

// Collectors groups the application metrics. It satisfies the observer
// interfaces of the promo registry and the booking wizard.
type Collectors struct {
	wizardSteps       *prometheus.CounterVec
	validationErrors  *prometheus.CounterVec
	bookingsConfirmed *prometheus.CounterVec
	promoLookups      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		wizardSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_transitions_total",
			Help:      "Booking wizard step transitions.",
		}, []string{"from", "to"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_validation_errors_total",
			Help:      "Guest step validation failures by field.",
		}, []string{"field"}),
		bookingsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_confirmed_total",
			Help:      "Confirmed bookings by payment method.",
		}, []string{"method"}),
		promoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_lookups_total",
			Help:      "Promo code lookups by result.",
		}, []string{"valid"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}

	for _, collector := range []prometheus.Collector{
		c.wizardSteps, c.validationErrors, c.bookingsConfirmed, c.promoLookups, c.httpDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return c, nil
}

func (c *Collectors) StepChanged(from, to string) {
	c.wizardSteps.WithLabelValues(from, to).Inc()
}

func (c *Collectors) ValidationFailed(field string) {
	c.validationErrors.WithLabelValues(field).Inc()
}

func (c *Collectors) BookingConfirmed(method string) {
	c.bookingsConfirmed.WithLabelValues(method).Inc()
}

func (c *Collectors) PromoLookup(ok bool) {
	c.promoLookups.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (c *Collectors) ObserveRequest(route string, code int, elapsed time.Duration) {
	c.httpDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
