package mysql

import (
	"context"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type Config struct {
	L        *logger.Logger
	Addr     string
	User     string
	Password string
	Database string
}

// DSN builds the driver connection string.
func (c Config) DSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = c.Addr
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	return cfg.FormatDSN()
}

type gormWriter struct {
	l *logger.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.l.LogDebugf(format, args...)
}

type DB struct {
	l  *logger.Logger
	db *gorm.DB
}

func New(ctx context.Context, conf Config) (*DB, error) {
	return Open(ctx, conf.L, conf.DSN())
}

// Open connects with a ready DSN and migrates the schema.
func Open(ctx context.Context, l *logger.Logger, dsn string) (*DB, error) {
	//nolint:exhaustruct
	gl := gormlogger.New(gormWriter{l: l}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond, //nolint:gomnd
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	//nolint:exhaustruct
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}

	if err := db.WithContext(ctx).AutoMigrate(&roomRow{}, &promoRow{}, &bookingRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}

	l.LogInfo("Connected to mysql, schema is up to date")

	return &DB{l: l, db: db}, nil
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(booking.ErrRecordNotFound, "%v %v", what, id)
	}

	return errors.Wrapf(err, "get %v %v", what, id)
}

func upsert(ctx context.Context, db *gorm.DB, row any, columns []string) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error
}

func position() int64 {
	return time.Now().UnixNano()
}

func (d *DB) ListRooms(ctx context.Context) ([]*booking.RoomOffering, error) {
	var rows []roomRow
	if err := d.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list rooms")
	}

	out := make([]*booking.RoomOffering, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toRoom())
	}

	return out, nil
}

func (d *DB) GetRoom(ctx context.Context, id string) (*booking.RoomOffering, error) {
	var row roomRow
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "room", id)
	}

	return row.toRoom(), nil
}

func (d *DB) SaveRoom(ctx context.Context, room *booking.RoomOffering) error {
	row := toRoomRow(room)
	row.Position = position()

	if err := upsert(ctx, d.db, row, roomColumns); err != nil {
		return errors.Wrapf(err, "save room %v", room.ID)
	}

	return nil
}

func (d *DB) DeleteRoom(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Delete(&roomRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete room %v", id)
	}

	if res.RowsAffected == 0 {
		return errors.Wrapf(booking.ErrRecordNotFound, "room %v", id)
	}

	return nil
}

func (d *DB) ListPromos(ctx context.Context) ([]*booking.PromoCode, error) {
	var rows []promoRow
	if err := d.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list promos")
	}

	out := make([]*booking.PromoCode, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toPromo())
	}

	return out, nil
}

func (d *DB) GetPromo(ctx context.Context, id string) (*booking.PromoCode, error) {
	var row promoRow
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "promo", id)
	}

	return row.toPromo(), nil
}

func (d *DB) FindPromoByCode(ctx context.Context, code string) (*booking.PromoCode, error) {
	var row promoRow
	if err := d.db.WithContext(ctx).First(&row, "UPPER(code) = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, notFound(err, "promo code", code)
	}

	return row.toPromo(), nil
}

func (d *DB) SavePromo(ctx context.Context, promo *booking.PromoCode) error {
	row := toPromoRow(promo)
	row.Position = position()

	if err := upsert(ctx, d.db, row, promoColumns); err != nil {
		return errors.Wrapf(err, "save promo %v", promo.ID)
	}

	return nil
}

func (d *DB) DeletePromo(ctx context.Context, id string) error {
	res := d.db.WithContext(ctx).Delete(&promoRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete promo %v", id)
	}

	if res.RowsAffected == 0 {
		return errors.Wrapf(booking.ErrRecordNotFound, "promo %v", id)
	}

	return nil
}

func (d *DB) ListBookings(ctx context.Context) ([]*booking.Booking, error) {
	var rows []bookingRow
	if err := d.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}

	out := make([]*booking.Booking, 0, len(rows))

	for i := range rows {
		b, err := rows[i].toBooking()
		if err != nil {
			return nil, errors.Wrapf(err, "decode booking %v", rows[i].ID)
		}

		out = append(out, b)
	}

	return out, nil
}

func (d *DB) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	if err := d.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}

	b, err := row.toBooking()
	if err != nil {
		return nil, errors.Wrapf(err, "decode booking %v", id)
	}

	return b, nil
}

func (d *DB) SaveBooking(ctx context.Context, b *booking.Booking) error {
	row := toBookingRow(b)
	row.Position = position()

	if err := upsert(ctx, d.db, row, bookingColumns); err != nil {
		return errors.Wrapf(err, "save booking %v", b.ID)
	}

	return nil
}

// Truncate empties every table. Used by integration tests.
func (d *DB) Truncate(ctx context.Context) error {
	for _, table := range []string{"bookings", "promo_codes", "rooms"} {
		if err := d.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return errors.Wrapf(err, "truncate %v", table)
		}
	}

	return nil
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "close mysql")
	}

	return nil
}
