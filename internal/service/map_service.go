package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jengzang/election-map-backend-go/internal/election"
	"github.com/jengzang/election-map-backend-go/internal/logging"
	"github.com/jengzang/election-map-backend-go/internal/models"
	"github.com/jengzang/election-map-backend-go/internal/spatial"
)

// ErrDatasetNotLoaded is returned before the first successful load
var ErrDatasetNotLoaded = errors.New("service: dataset not loaded")

// DatasetLoader supplies a fresh dataset on reload
type DatasetLoader interface {
	LoadDataset(ctx context.Context) (*election.Dataset, error)
}

// MapService holds the current dataset and computes map responses from it.
// Aggregates are rebuilt only when the dataset is replaced.
type MapService struct {
	mu         sync.RWMutex
	dataset    *election.Dataset
	aggregates election.Aggregates
	version    int64
	loadedAt   time.Time

	loader  DatasetLoader
	metrics *Metrics
	log     logging.Logger
}

// NewMapService creates a new map service. loader may be nil when the
// dataset is only ever set directly.
func NewMapService(loader DatasetLoader, metrics *Metrics, log logging.Logger) *MapService {
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MapService{loader: loader, metrics: metrics, log: log}
}

// DatasetInfo describes the loaded dataset
type DatasetInfo struct {
	Version        int64     `json:"version"`
	Parties        int       `json:"parties"`
	Municipalities int       `json:"municipalities"`
	Prefectures    int       `json:"prefectures"`
	Blocks         int       `json:"blocks"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// SetDataset replaces the dataset and rebuilds the aggregates
func (s *MapService) SetDataset(d *election.Dataset) DatasetInfo {
	agg := election.BuildAggregates(d.Municipalities, d.PrefToBlock)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = d
	s.aggregates = agg
	s.version++
	s.loadedAt = time.Now()
	return s.infoLocked()
}

// Reload fetches a new dataset from the loader and swaps it in.
// The current dataset stays in place when loading fails.
func (s *MapService) Reload(ctx context.Context) (DatasetInfo, error) {
	if s.loader == nil {
		return DatasetInfo{}, errors.New("service: no dataset loader configured")
	}
	d, err := s.loader.LoadDataset(ctx)
	if err != nil {
		s.metrics.reloaded(err, 0)
		s.log.Error("dataset reload failed", logging.Err(err))
		return DatasetInfo{}, fmt.Errorf("failed to reload dataset: %w", err)
	}

	info := s.SetDataset(d)
	s.metrics.reloaded(nil, info.Municipalities)
	s.log.Info("dataset reloaded",
		logging.Int64("version", info.Version),
		logging.Int("municipalities", info.Municipalities))
	return info, nil
}

// Info describes the loaded dataset
func (s *MapService) Info() (DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return DatasetInfo{}, ErrDatasetNotLoaded
	}
	return s.infoLocked(), nil
}

func (s *MapService) infoLocked() DatasetInfo {
	return DatasetInfo{
		Version:        s.version,
		Parties:        len(s.dataset.Parties),
		Municipalities: len(s.dataset.Municipalities),
		Prefectures:    len(s.aggregates.Pref),
		Blocks:         len(s.aggregates.Block),
		LoadedAt:       s.loadedAt,
	}
}

// snapshot builds a render context against the current dataset
func (s *MapService) snapshot(params models.ModeParams) (*election.Context, error) {
	if err := election.ValidateParams(params); err != nil {
		return nil, err
	}
	s.mu.RLock()
	d, agg := s.dataset, s.aggregates
	s.mu.RUnlock()
	if d == nil {
		return nil, ErrDatasetNotLoaded
	}
	return election.NewContext(d, agg, params), nil
}

func (s *MapService) render(operation string, params models.ModeParams) (*election.Context, *election.Result, error) {
	c, err := s.snapshot(params)
	if err != nil {
		return nil, nil, err
	}
	defer s.metrics.observe(operation, string(c.Params.Mode), time.Now())

	res, err := election.Render(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render map: %w", err)
	}
	return c, res, nil
}

// Parties returns the party roster in roster order
func (s *MapService) Parties() ([]models.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrDatasetNotLoaded
	}
	out := make([]models.Party, len(s.dataset.Parties))
	copy(out, s.dataset.Parties)
	return out, nil
}

// Render returns per-feature stats and colors
func (s *MapService) Render(params models.ModeParams) (*election.Result, error) {
	_, res, err := s.render("render", params)
	return res, err
}

// Scale returns only the calibrated scale domain
func (s *MapService) Scale(params models.ModeParams) (models.ScaleDomain, error) {
	_, res, err := s.render("scale", params)
	if err != nil {
		return models.ScaleDomain{}, err
	}
	return res.Scale, nil
}

// Summary returns the stats panel
func (s *MapService) Summary(params models.ModeParams) (election.Summary, error) {
	c, res, err := s.render("summary", params)
	if err != nil {
		return election.Summary{}, err
	}
	return res.Summary(c), nil
}

// Legend returns the legend
func (s *MapService) Legend(params models.ModeParams) (election.Legend, error) {
	c, res, err := s.render("legend", params)
	if err != nil {
		return election.Legend{}, err
	}
	return res.Legend(c), nil
}

// Labels returns the labels to draw in a viewport
func (s *MapService) Labels(params models.ModeParams, vp spatial.Viewport, visible bool) ([]spatial.Label, error) {
	c, err := s.snapshot(params)
	if err != nil {
		return nil, err
	}
	defer s.metrics.observe("labels", string(c.Params.Mode), time.Now())
	return election.Labels(c, vp, visible), nil
}
