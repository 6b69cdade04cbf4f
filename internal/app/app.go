package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/avstrong/resort/internal/auth"
	"github.com/avstrong/resort/internal/boost"
	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/config"
	"github.com/avstrong/resort/internal/events"
	"github.com/avstrong/resort/internal/events/kafka"
	"github.com/avstrong/resort/internal/events/live"
	"github.com/avstrong/resort/internal/idgen/token"
	"github.com/avstrong/resort/internal/inventory"
	"github.com/avstrong/resort/internal/logger"
	"github.com/avstrong/resort/internal/metrics"
	"github.com/avstrong/resort/internal/migration"
	"github.com/avstrong/resort/internal/payment"
	"github.com/avstrong/resort/internal/storage/memory"
	"github.com/avstrong/resort/internal/storage/mysql"
	"github.com/avstrong/resort/internal/storage/redis"
	"github.com/avstrong/resort/internal/tracing"
	"github.com/avstrong/resort/internal/transport/web"
	"github.com/avstrong/resort/internal/voucher"
	"github.com/avstrong/resort/internal/wizard"
)

const (
	recordIDLength  = 12
	bookingIDLength = 9
)

type store interface {
	ListRooms(ctx context.Context) ([]*booking.RoomOffering, error)
	GetRoom(ctx context.Context, id string) (*booking.RoomOffering, error)
	SaveRoom(ctx context.Context, room *booking.RoomOffering) error
	DeleteRoom(ctx context.Context, id string) error
	ListPromos(ctx context.Context) ([]*booking.PromoCode, error)
	GetPromo(ctx context.Context, id string) (*booking.PromoCode, error)
	FindPromoByCode(ctx context.Context, code string) (*booking.PromoCode, error)
	SavePromo(ctx context.Context, promo *booking.PromoCode) error
	DeletePromo(ctx context.Context, id string) error
	ListBookings(ctx context.Context) ([]*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	SaveBooking(ctx context.Context, b *booking.Booking) error
	Close() error
}

func openStorage(ctx context.Context, l *logger.Logger, conf config.Storage) (store, error) {
	switch conf.Driver {
	case config.StorageRedis:
		return redis.New(ctx, redis.Config{
			L:        l,
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
			Prefix:   conf.Redis.Prefix,
		})
	case config.StorageMySQL:
		return mysql.New(ctx, mysql.Config{
			L:        l,
			Addr:     conf.MySQL.Addr,
			User:     conf.MySQL.User,
			Password: conf.MySQL.Password,
			Database: conf.MySQL.Database,
		})
	default:
		return memory.New(memory.Config{L: l}), nil
	}
}

func Run(l *logger.Logger, conf *config.Config) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	shutdownTracing, err := tracing.Init(tracing.Conf{Service: conf.Service, Endpoint: conf.Tracing.Endpoint})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			l.LogErrorf("Failed to flush traces: %v", err.Error())
		}
	}()

	storage, err := openStorage(ctx, l, conf.Storage)
	if err != nil {
		return fmt.Errorf("open %v storage: %w", conf.Storage.Driver, err)
	}

	defer func() {
		if err := storage.Close(); err != nil {
			l.LogErrorf("Failed to close storage: %v", err.Error())
		}
	}()

	if conf.Storage.Seed {
		if err := migration.Up(ctx, l, storage); err != nil {
			return fmt.Errorf("seed storage: %w", err)
		}

		l.LogInfo("Seed migration has been applied")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	collectorSet, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	hub := live.New(l, conf.HTTP.AllowedOrigins)
	defer hub.Close()

	publishers := events.Fanout{events.NewLog(l), hub}

	if conf.Events.Driver == config.EventsKafka {
		producer := kafka.New(kafka.Conf{L: l, Brokers: conf.Events.Kafka.Brokers, Topic: conf.Events.Kafka.Topic})

		defer func() {
			if err := producer.Close(); err != nil {
				l.LogErrorf("Failed to close kafka producer: %v", err.Error())
			}
		}()

		publishers = append(publishers, producer)
	}

	declineAbove, err := decimal.NewFromString(conf.Payment.DeclineAbove)
	if err != nil {
		return fmt.Errorf("parse payment decline threshold: %w", err)
	}

	recordIDs := token.New(recordIDLength)

	rooms := inventory.New(l, storage, recordIDs)
	promos := boost.New(l, storage, recordIDs, collectorSet)
	bookings := booking.New(l, storage, recordIDs, publishers, booking.Conf{RejectOverlaps: conf.Booking.RejectOverlaps})
	gateway := payment.New(payment.Conf{
		L:            l,
		Latency:      conf.Payment.Latency,
		Timeout:      conf.Payment.Timeout,
		DeclineAbove: declineAbove,
	}, recordIDs)

	authenticator, err := auth.New(auth.Conf{
		Passcode:     conf.Admin.Passcode,
		PasscodeHash: conf.Admin.PasscodeHash,
		Secret:       conf.Admin.JWTSecret,
		TTL:          conf.Admin.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("init admin auth: %w", err)
	}

	sessions := wizard.NewRegistry(l, nil)

	srv, err := web.New(ctx, web.Conf{
		L:                 l,
		ServerLogger:      log.New(l.Zerolog(), "", 0),
		Host:              conf.HTTP.Host,
		Port:              conf.HTTP.Port,
		ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
		LivenessEndpoint:  conf.HTTP.LivenessEndpoint,
		AllowedOrigins:    conf.HTTP.AllowedOrigins,
		RateLimit:         conf.HTTP.RateLimit,
		RateBurst:         conf.HTTP.RateBurst,
		Hotel:             voucher.Hotel{Name: conf.Hotel.Name, Address: conf.Hotel.Address, Phone: conf.Hotel.Phone},
	}, web.Deps{
		Bookings: bookings,
		Rooms:    rooms,
		Promos:   promos,
		Wizards:  sessions,
		WizardDeps: wizard.Deps{
			L:        l,
			Rooms:    rooms,
			Promos:   promos,
			Payments: gateway,
			Bookings: bookings,
			IDs:      token.New(bookingIDLength),
			Recorder: collectorSet,
			Policy:   booking.ValidationPolicy{RejectInvertedRange: conf.Booking.RejectInvertedRange},
		},
		Auth:           authenticator,
		Live:           hub,
		Metrics:        collectorSet,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), //nolint:exhaustruct
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.LogInfo("Application is running on %v:%v...", conf.HTTP.Host, conf.HTTP.Port)

		if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, conf.Booking.SweepInterval, conf.Booking.SessionTTL)
	})

	//nolint:contextcheck
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stop http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}
