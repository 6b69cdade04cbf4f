package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

var ErrRoomNotFound = errors.New("room not found")

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type storage interface {
	ListRooms(ctx context.Context) ([]*booking.RoomOffering, error)
	GetRoom(ctx context.Context, id string) (*booking.RoomOffering, error)
	SaveRoom(ctx context.Context, room *booking.RoomOffering) error
	DeleteRoom(ctx context.Context, id string) error
}

// Catalog is the room inventory. The booking flow only reads from it.
type Catalog struct {
	l           *logger.Logger
	storage     storage
	idGenerator idGenerator
}

func New(l *logger.Logger, storage storage, idGenerator idGenerator) *Catalog {
	return &Catalog{
		l:           l,
		storage:     storage,
		idGenerator: idGenerator,
	}
}

// List returns all rooms, or only those of roomType when it is not empty.
func (c *Catalog) List(ctx context.Context, roomType booking.RoomType) ([]*booking.RoomOffering, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	if roomType == "" {
		return rooms, nil
	}

	filtered := make([]*booking.RoomOffering, 0, len(rooms))

	for _, room := range rooms {
		if strings.EqualFold(string(room.Type), string(roomType)) {
			filtered = append(filtered, room)
		}
	}

	return filtered, nil
}

func (c *Catalog) Featured(ctx context.Context) ([]*booking.RoomOffering, error) {
	rooms, err := c.List(ctx, "")
	if err != nil {
		return nil, err
	}

	featured := make([]*booking.RoomOffering, 0, len(rooms))

	for _, room := range rooms {
		if room.Featured {
			featured = append(featured, room)
		}
	}

	return featured, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*booking.RoomOffering, error) {
	room, err := c.storage.GetRoom(ctx, id)
	if errors.Is(err, booking.ErrRecordNotFound) {
		return nil, fmt.Errorf("room %v: %w", id, ErrRoomNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("get room %v: %w", id, err)
	}

	return room, nil
}

func validateRoom(room *booking.RoomOffering) error {
	inputErr := booking.NewInputError()

	if strings.TrimSpace(room.Title) == "" {
		inputErr.AddError("title", "Title is required")
	}

	if room.Price <= 0 {
		inputErr.AddError("price", "Price must be positive")
	}

	if room.Capacity <= 0 {
		inputErr.AddError("capacity", "Capacity must be positive")
	}

	if room.Type != "" && !room.Type.Valid() {
		inputErr.AddError("type", "Unknown room type")
	}

	if inputErr.FieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// Save creates or replaces a room. A room without id gets a fresh one.
func (c *Catalog) Save(ctx context.Context, room *booking.RoomOffering) (*booking.RoomOffering, error) {
	if err := validateRoom(room); err != nil {
		return nil, err
	}

	if room.ID == "" {
		id, err := c.idGenerator.GetID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", booking.ErrNextID, err)
		}

		room.ID = id
	}

	if room.Type == "" {
		room.Type = booking.RoomTypeStandard
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room %v: %w", room.ID, err)
	}

	c.l.LogInfo("Room %v (%v) saved", room.ID, room.Title)

	return room, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	err := c.storage.DeleteRoom(ctx, id)
	if errors.Is(err, booking.ErrRecordNotFound) {
		return fmt.Errorf("room %v: %w", id, ErrRoomNotFound)
	}

	if err != nil {
		return fmt.Errorf("delete room %v: %w", id, err)
	}

	c.l.LogInfo("Room %v deleted", id)

	return nil
}
