// Package reqstore provides the public entry point to the requirement
// engine. It wires the file-backed persistence gateway to the store and
// returns the engine behind the types.Engine interface, keeping the
// implementation packages internal.
package reqstore

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satreq/internal/persist"
	"github.com/mesh-intelligence/satreq/internal/store"
	"github.com/mesh-intelligence/satreq/pkg/types"
)

// Open loads the data file named by cfg and returns an engine over it. A
// data file that does not exist yet starts an empty graph; it is written
// on the first mutation. When cfg.RecentDir is set, every save records the
// data file path there for the next session. A nil logger discards logs.
//
// Example:
//
//	eng, err := reqstore.Open(types.Config{DataFile: "satreq.json"}, nil)
//	if err != nil {
//	    return err
//	}
//	err = eng.CreateProject("Sentinel-6", types.StandardSubsystems)
func Open(cfg types.Config, logger *zap.Logger) (types.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []persist.Option{persist.WithLogger(logger.Named("persist"))}
	if cfg.RecentDir != "" {
		opts = append(opts, persist.WithRecentDir(cfg.RecentDir))
	}
	gw := persist.NewFile(cfg.DataFile, opts...)
	s, err := store.Open(gw,
		store.WithLogger(logger.Named("store")),
		store.WithIDPrefix(cfg.Prefix()))
	if err != nil {
		return nil, err
	}
	return s, nil
}
