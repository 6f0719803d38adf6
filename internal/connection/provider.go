package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fitosanitario/common/database"

	"go.uber.org/zap"
)

// Role logical database role
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleProducer        Role = "productor"
	RoleTechnicalAssist Role = "asistente_tecnico"
	RoleOwner           Role = "propietario"
)

var knownRoles = []Role{RoleAdmin, RoleProducer, RoleTechnicalAssist, RoleOwner}

var (
	// ErrUnknownRole role name not in the registry; a configuration error
	ErrUnknownRole = errors.New("unknown role")
	// ErrClosed provider already closed
	ErrClosed = errors.New("connection provider closed")
)

// ParseRole normalises a role name (trim, lower case) and checks it is known
func ParseRole(name string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range knownRoles {
		if r == k {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid roles: %s)", ErrUnknownRole, name, roleList(knownRoles))
}

// Opener opens the shared database pool
type Opener func(ctx context.Context) (*sql.DB, error)

// Provider role registry over one shared database pool.
// The pool is opened on first use; an open failure is permanent.
type Provider struct {
	open    Opener
	logger  *zap.Logger
	handles map[Role]*Handle

	once    sync.Once
	db      *sql.DB
	openErr error

	mu     sync.Mutex
	closed bool
}

// NewProvider builds the registry for the given role names
func NewProvider(roles []string, open Opener, logger *zap.Logger) (*Provider, error) {
	if open == nil {
		return nil, errors.New("connection provider requires an opener")
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no roles configured", ErrUnknownRole)
	}
	p := &Provider{
		open:    open,
		logger:  logger,
		handles: make(map[Role]*Handle, len(roles)),
	}
	for _, name := range roles {
		role, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		p.handles[role] = &Handle{role: role, provider: p}
	}
	return p, nil
}

// Acquire returns the handle registered for role
func (p *Provider) Acquire(role string) (*Handle, error) {
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	h, ok := p.handles[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered (registered roles: %s)", ErrUnknownRole, role, roleList(p.Roles()))
	}
	return h, nil
}

// Roles registered roles in stable order
func (p *Provider) Roles() []Role {
	out := make([]Role, 0, len(p.handles))
	for r := range p.handles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Provider) pool(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	p.once.Do(func() {
		p.db, p.openErr = p.open(ctx)
		if p.openErr != nil {
			p.logger.Error("Failed to open database", zap.Error(p.openErr))
			return
		}
		p.logger.Info("Database opened", zap.Int("roles", len(p.handles)))
	})
	if p.openErr != nil {
		return nil, fmt.Errorf("database unavailable: %w", p.openErr)
	}
	return p.db, nil
}

// Close releases the shared pool. Safe to call more than once.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	// block a concurrent first open from leaking a pool
	p.once.Do(func() { p.openErr = ErrClosed })
	if p.db == nil {
		return nil
	}
	if err := database.Close(p.db); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	p.logger.Info("Database closed")
	return nil
}

// Handle role-scoped access to the shared pool
type Handle struct {
	role     Role
	provider *Provider
}

// Role the role this handle was registered for
func (h *Handle) Role() Role {
	return h.role
}

// Conn checks out a dedicated connection for one call; the caller closes it
func (h *Handle) Conn(ctx context.Context) (*sql.Conn, error) {
	db, err := h.provider.pool(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		if database.IsClosed(err) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("failed to acquire connection for role %s: %w", h.role, err)
	}
	return conn, nil
}

// Ping verifies the shared pool is reachable
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.provider.pool(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func roleList(roles []Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
