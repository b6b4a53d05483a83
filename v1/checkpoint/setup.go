package checkpoint

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/vecmigrate/v1/logger"
)

// NewStore builds the backend selected by cfg.Backend.
func NewStore(cfg Config, log *logger.Logger) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		log.Warn("Checkpointing disabled, an interrupted promotion cannot be resumed", nil, nil)
		return NopStore{}, nil
	case BackendFile:
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("Checkpoint store uses local files", nil, map[string]interface{}{
			"dir": s.Dir(),
		})
		return s, nil
	case BackendMinio:
		return NewMinioStore(context.Background(), cfg.Minio, log)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}
