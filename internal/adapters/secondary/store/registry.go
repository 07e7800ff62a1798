package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"orderhub/internal/domain"
)

// MemoryRegistry tracks live connections and their room memberships. It is
// the only long-lived shared mutable state in the fan-out core, guarded by a
// single coarse lock since membership changes are rare next to dispatches.
type MemoryRegistry struct {
	conns       map[uuid.UUID]domain.Connection
	rooms       map[domain.RoomKey]map[uuid.UUID]struct{}
	memberships map[uuid.UUID]map[domain.RoomKey]struct{}
	sync.RWMutex
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		conns:       make(map[uuid.UUID]domain.Connection),
		rooms:       make(map[domain.RoomKey]map[uuid.UUID]struct{}),
		memberships: make(map[uuid.UUID]map[domain.RoomKey]struct{}),
	}
}

func (r *MemoryRegistry) Register(ctx context.Context, conn domain.Connection) error {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.conns[conn.ID]; ok {
		return nil
	}

	r.conns[conn.ID] = conn
	r.memberships[conn.ID] = make(map[domain.RoomKey]struct{})
	return nil
}

// Join is idempotent. An unknown connection is a silent no-op: the client may
// already have disconnected, and that race is expected.
func (r *MemoryRegistry) Join(ctx context.Context, connID uuid.UUID, restaurantID string, role domain.Role) error {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return nil
	}

	key := domain.RoomKey{RestaurantID: restaurantID, Role: role}

	room, ok := r.rooms[key]
	if !ok {
		room = make(map[uuid.UUID]struct{})
		r.rooms[key] = room
	}

	room[connID] = struct{}{}
	r.memberships[connID][key] = struct{}{}
	return nil
}

func (r *MemoryRegistry) Leave(ctx context.Context, connID uuid.UUID, restaurantID string, role domain.Role) error {
	r.Lock()
	defer r.Unlock()

	key := domain.RoomKey{RestaurantID: restaurantID, Role: role}
	r.removeFromRoom(connID, key)

	if membership, ok := r.memberships[connID]; ok {
		delete(membership, key)
	}

	return nil
}

// Unregister removes the connection from every room it joined. Calling it for
// an already removed connection is a no-op.
func (r *MemoryRegistry) Unregister(ctx context.Context, connID uuid.UUID) error {
	r.Lock()
	defer r.Unlock()

	for key := range r.memberships[connID] {
		r.removeFromRoom(connID, key)
	}

	delete(r.memberships, connID)
	delete(r.conns, connID)
	return nil
}

func (r *MemoryRegistry) Get(ctx context.Context, connID uuid.UUID) (domain.Connection, error) {
	r.RLock()
	defer r.RUnlock()

	conn, ok := r.conns[connID]
	if !ok {
		return domain.Connection{}, domain.ErrUnknownConnection
	}

	return conn, nil
}

// MembersOf returns a snapshot of the room, not a live view, so delivery can
// iterate while other connections join and leave.
func (r *MemoryRegistry) MembersOf(ctx context.Context, restaurantID string, role domain.Role) ([]domain.Connection, error) {
	r.RLock()
	defer r.RUnlock()

	room := r.rooms[domain.RoomKey{RestaurantID: restaurantID, Role: role}]

	members := make([]domain.Connection, 0, len(room))
	for connID := range room {
		if conn, ok := r.conns[connID]; ok {
			members = append(members, conn)
		}
	}

	return members, nil
}

func (r *MemoryRegistry) Connections(ctx context.Context) ([]domain.Connection, error) {
	r.RLock()
	defer r.RUnlock()

	conns := make([]domain.Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}

	return conns, nil
}

func (r *MemoryRegistry) removeFromRoom(connID uuid.UUID, key domain.RoomKey) {
	room, ok := r.rooms[key]
	if !ok {
		return
	}

	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, key)
	}
}
