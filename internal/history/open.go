package history

import (
	"fmt"

	"calc-pro/internal/config"
)

// OpenStore opens the configured backend. The returned func releases it and is never nil.
func OpenStore(cfg config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.History.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), noop, nil
	case config.BackendSQLite:
		s, err := OpenSQLite(cfg.HistoryPath())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendFile:
		return NewFileStore(cfg.HistoryPath()), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
}
