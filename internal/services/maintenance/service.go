package maintenance

import (
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/AnjiB/graphkg-rag-demo/internal/common"
	"github.com/AnjiB/graphkg-rag-demo/internal/services/index"
)

// Service runs scheduled Badger value-log garbage collection. Badger only
// reclaims value-log space when GC is invoked explicitly, so long-running
// deployments accumulate dead versions from repeated index rebuilds without
// it.
type Service struct {
	cfg     common.MaintenanceConfig
	manager *index.Manager
	cron    *cron.Cron
	logger  arbor.ILogger
}

// NewService creates the maintenance scheduler. Call Start to begin.
func NewService(cfg common.MaintenanceConfig, manager *index.Manager, logger arbor.ILogger) *Service {
	return &Service{
		cfg:     cfg,
		manager: manager,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the GC job and starts the scheduler. A disabled config is
// a no-op.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.logger.Debug().Msg("Maintenance disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.GCSchedule, s.runGC); err != nil {
		return fmt.Errorf("invalid GC schedule %q: %w", s.cfg.GCSchedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.cfg.GCSchedule).Msg("Maintenance scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runGC repeatedly invokes value-log GC until Badger reports nothing left to
// rewrite. The store may not be open yet if no documents have been ingested.
func (s *Service) runGC() {
	storage := s.manager.Storage()
	if storage == nil {
		return
	}

	db := storage.Badger()
	rewritten := 0
	for {
		err := db.RunValueLogGC(0.5)
		if err != nil {
			if errors.Is(err, badgerdb.ErrNoRewrite) {
				break
			}
			s.logger.Warn().Err(err).Msg("Value-log GC failed")
			return
		}
		rewritten++
	}

	if rewritten > 0 {
		s.logger.Info().Int("files_rewritten", rewritten).Msg("Value-log GC completed")
	}
}
