package manager

import (
	"errors"
	"fmt"

	"github.com/fjod/kanap/cart-service/internal/metrics"
	"github.com/fjod/kanap/cart-service/internal/storage"
	"github.com/fjod/kanap/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrUnknownBackend = errors.New("unknown cart backend")
	ErrMissingBackend = errors.New("cart backend dependency not configured")
)

// Backend selects where a CartManager persists its cart.
type Backend int

const (
	// BackendLocalStorage serializes the cart as a JSON array in a key/value store.
	BackendLocalStorage Backend = iota
	// BackendDocument stores one MongoDB document per session.
	BackendDocument
)

func (b Backend) String() string {
	switch b {
	case BackendLocalStorage:
		return "local_storage"
	case BackendDocument:
		return "document"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

func ParseBackend(s string) (Backend, error) {
	switch s {
	case "local", "local_storage":
		return BackendLocalStorage, nil
	case "document", "mongo":
		return BackendDocument, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Options carries the dependencies of every backend. Only the ones the
// selected backend uses need to be set.
type Options struct {
	Store   storage.Store
	Mongo   *mongo.Database
	Logger  *zap.Logger
	Metrics *metrics.CartMetrics
}

// New builds a CartManager for one session on the given backend.
func New(b Backend, sessionID string, opts Options) (*CartManager, error) {
	log := logger.OrNop(opts.Logger)
	if sessionID != "" {
		log = log.With(zap.String("session", sessionID))
	}

	var p Persister
	switch b {
	case BackendLocalStorage:
		if opts.Store == nil {
			return nil, fmt.Errorf("%w: %s needs a store", ErrMissingBackend, b)
		}
		key := DefaultKey
		if sessionID != "" {
			key = storage.CartKey(sessionID)
		}
		p = NewLocalStorage(opts.Store, key, log)
	case BackendDocument:
		if opts.Mongo == nil {
			return nil, fmt.Errorf("%w: %s needs a database", ErrMissingBackend, b)
		}
		p = NewDocument(opts.Mongo, sessionID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, b)
	}

	return NewCartManager(b, p, log, opts.Metrics), nil
}

// Factory builds per-session managers with a fixed backend and dependencies.
type Factory struct {
	backend Backend
	opts    Options
}

func NewFactory(b Backend, opts Options) *Factory {
	return &Factory{backend: b, opts: opts}
}

func (f *Factory) ForSession(sessionID string) (*CartManager, error) {
	return New(f.backend, sessionID, f.opts)
}
