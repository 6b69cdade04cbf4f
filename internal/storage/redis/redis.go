package redis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

type Config struct {
	L        *logger.Logger
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// collection stores JSON rows in a hash and their first-save order in a
// sorted set, so upserts keep their position.
type collection[T any] struct {
	rdb   goredis.Cmdable
	name  string
	data  string
	order string
	seq   string
}

func newCollection[T any](rdb goredis.Cmdable, prefix, name string) *collection[T] {
	return &collection[T]{
		rdb:   rdb,
		name:  name,
		data:  prefix + ":" + name,
		order: prefix + ":" + name + ":order",
		seq:   prefix + ":" + name + ":seq",
	}
}

func (c *collection[T]) list(ctx context.Context) ([]*T, error) {
	ids, err := c.rdb.ZRange(ctx, c.order, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "list %v order", c.name)
	}

	if len(ids) == 0 {
		return []*T{}, nil
	}

	raw, err := c.rdb.HMGet(ctx, c.data, ids...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "load %v", c.name)
	}

	out := make([]*T, 0, len(raw))

	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			// Order entry without data; a concurrent delete got in between.
			continue
		}

		row := new(T)
		if err := json.Unmarshal([]byte(s), row); err != nil {
			return nil, errors.Wrapf(err, "decode %v %v", c.name, ids[i])
		}

		out = append(out, row)
	}

	return out, nil
}

func (c *collection[T]) get(ctx context.Context, id string) (*T, error) {
	s, err := c.rdb.HGet(ctx, c.data, id).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, errors.Wrapf(booking.ErrRecordNotFound, "%v %v", c.name, id)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "get %v %v", c.name, id)
	}

	row := new(T)
	if err := json.Unmarshal([]byte(s), row); err != nil {
		return nil, errors.Wrapf(err, "decode %v %v", c.name, id)
	}

	return row, nil
}

func (c *collection[T]) put(ctx context.Context, id string, row *T) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return errors.Wrapf(err, "encode %v %v", c.name, id)
	}

	seq, err := c.rdb.Incr(ctx, c.seq).Result()
	if err != nil {
		return errors.Wrapf(err, "next %v sequence", c.name)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, c.data, id, payload)
		pipe.ZAddNX(ctx, c.order, goredis.Z{Score: float64(seq), Member: id})

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "save %v %v", c.name, id)
	}

	return nil
}

func (c *collection[T]) remove(ctx context.Context, id string) error {
	var deleted *goredis.IntCmd

	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		deleted = pipe.HDel(ctx, c.data, id)
		pipe.ZRem(ctx, c.order, id)

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "delete %v %v", c.name, id)
	}

	if deleted.Val() == 0 {
		return errors.Wrapf(booking.ErrRecordNotFound, "%v %v", c.name, id)
	}

	return nil
}

func (c *collection[T]) clear(ctx context.Context) error {
	return errors.Wrapf(c.rdb.Del(ctx, c.data, c.order, c.seq).Err(), "clear %v", c.name)
}

type DB struct {
	l        *logger.Logger
	client   *goredis.Client
	rooms    *collection[booking.RoomOffering]
	promos   *collection[booking.PromoCode]
	bookings *collection[booking.Booking]
}

func New(ctx context.Context, conf Config) (*DB, error) {
	//nolint:exhaustruct
	client := goredis.NewClient(&goredis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "ping redis %v", conf.Addr)
	}

	prefix := conf.Prefix
	if prefix == "" {
		prefix = "resort"
	}

	conf.L.LogInfo("Connected to redis %v, db %d, prefix %v", conf.Addr, conf.DB, prefix)

	return &DB{
		l:        conf.L,
		client:   client,
		rooms:    newCollection[booking.RoomOffering](client, prefix, "rooms"),
		promos:   newCollection[booking.PromoCode](client, prefix, "promos"),
		bookings: newCollection[booking.Booking](client, prefix, "bookings"),
	}, nil
}

func (db *DB) ListRooms(ctx context.Context) ([]*booking.RoomOffering, error) {
	return db.rooms.list(ctx)
}

func (db *DB) GetRoom(ctx context.Context, id string) (*booking.RoomOffering, error) {
	return db.rooms.get(ctx, id)
}

func (db *DB) SaveRoom(ctx context.Context, room *booking.RoomOffering) error {
	return db.rooms.put(ctx, room.ID, room)
}

func (db *DB) DeleteRoom(ctx context.Context, id string) error {
	return db.rooms.remove(ctx, id)
}

func (db *DB) ListPromos(ctx context.Context) ([]*booking.PromoCode, error) {
	return db.promos.list(ctx)
}

func (db *DB) GetPromo(ctx context.Context, id string) (*booking.PromoCode, error) {
	return db.promos.get(ctx, id)
}

func (db *DB) FindPromoByCode(ctx context.Context, code string) (*booking.PromoCode, error) {
	promos, err := db.promos.list(ctx)
	if err != nil {
		return nil, err
	}

	for _, promo := range promos {
		if strings.EqualFold(promo.Code, code) {
			return promo, nil
		}
	}

	return nil, errors.Wrapf(booking.ErrRecordNotFound, "promo code %v", code)
}

func (db *DB) SavePromo(ctx context.Context, promo *booking.PromoCode) error {
	return db.promos.put(ctx, promo.ID, promo)
}

func (db *DB) DeletePromo(ctx context.Context, id string) error {
	return db.promos.remove(ctx, id)
}

func (db *DB) ListBookings(ctx context.Context) ([]*booking.Booking, error) {
	return db.bookings.list(ctx)
}

func (db *DB) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return db.bookings.get(ctx, id)
}

func (db *DB) SaveBooking(ctx context.Context, b *booking.Booking) error {
	return db.bookings.put(ctx, b.ID, b)
}

// Flush removes every key this store owns.
func (db *DB) Flush(ctx context.Context) error {
	for _, flush := range []func(context.Context) error{db.rooms.clear, db.promos.clear, db.bookings.clear} {
		if err := flush(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (db *DB) Close() error {
	return errors.Wrap(db.client.Close(), "close redis")
}
