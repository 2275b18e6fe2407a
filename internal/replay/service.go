package replay

import (
	"errors"
	"log/slog"
	"path"
)

// Service ties the catalog, the loader and the scheduler together for the
// control surface.
type Service struct {
	catalog *Catalog
	loader  *Loader
	sched   *Scheduler
	log     *slog.Logger
}

// NewService returns a Service reading datasets from store and replaying them on sched.
func NewService(store Store, sched *Scheduler, log *slog.Logger) *Service {
	return &Service{
		catalog: NewCatalog(store, log),
		loader:  NewLoader(store, log),
		sched:   sched,
		log:     log,
	}
}

// ListDatasets returns the catalog. On storage failure the slice is empty
// and the error wraps ErrStorageUnavailable.
func (s *Service) ListDatasets() ([]CatalogEntry, error) {
	return s.catalog.List()
}

// LoadDataset loads one dataset without starting it.
func (s *Service) LoadDataset(relPath string) (*Dataset, error) {
	return s.loader.Load(relPath)
}

// StartStream loads the dataset at relPath and starts replaying it.
// An active stream is reported before any file is read.
func (s *Service) StartStream(relPath string) (*Dataset, error) {
	if s.sched.Streaming() {
		return nil, ErrAlreadyStreaming
	}
	ds, err := s.loader.Load(relPath)
	if err != nil {
		return nil, err
	}
	if err := s.sched.Start(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// SelectDataset loads category/file and starts it if nothing is streaming.
// When a stream is already active the loaded dataset is not started and
// started is false; the caller joins the running stream instead.
func (s *Service) SelectDataset(category, file string) (ds *Dataset, started bool, err error) {
	ds, err = s.loader.Load(path.Join(category, file))
	if err != nil {
		return nil, false, err
	}
	switch err := s.sched.Start(ds); {
	case err == nil:
		return ds, true, nil
	case errors.Is(err, ErrAlreadyStreaming):
		s.log.Info("dataset selected while streaming, joining active stream",
			slog.String("requested", ds.Path))
		return ds, false, nil
	default:
		return nil, false, err
	}
}

// StopStream stops the active stream, if any. It always succeeds.
func (s *Service) StopStream() bool {
	return s.sched.Stop()
}

// Status returns the scheduler snapshot.
func (s *Service) Status() Status {
	return s.sched.Status()
}
