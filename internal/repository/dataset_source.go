package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/election-map-backend-go/internal/election"
	"github.com/jengzang/election-map-backend-go/internal/logging"
	"github.com/jengzang/election-map-backend-go/internal/models"
)

// DatasetSource produces a complete dataset ready for rendering
type DatasetSource interface {
	LoadDataset(ctx context.Context) (*election.Dataset, error)
}

// FileSource loads everything from the data directory
type FileSource struct {
	files *FileRepository
	log   logging.Logger
}

// NewFileSource creates a source reading JSON and GeoJSON from files
func NewFileSource(files *FileRepository, log logging.Logger) *FileSource {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FileSource{files: files, log: log}
}

// LoadDataset reads the roster, results and boundaries
func (s *FileSource) LoadDataset(ctx context.Context) (*election.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parties, err := s.files.GetParties()
	if err != nil {
		return nil, err
	}
	munis, err := s.files.GetMunicipalities()
	if err != nil {
		return nil, err
	}
	return loadWithFeatures(s.files, s.log, parties, munis)
}

// SQLiteSource reads results from the database and boundaries from files
type SQLiteSource struct {
	elections *ElectionRepository
	files     *FileRepository
	log       logging.Logger
}

// NewSQLiteSource creates a source backed by an imported database
func NewSQLiteSource(elections *ElectionRepository, files *FileRepository, log logging.Logger) *SQLiteSource {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SQLiteSource{elections: elections, files: files, log: log}
}

// LoadDataset reads the stored roster and results
func (s *SQLiteSource) LoadDataset(ctx context.Context) (*election.Dataset, error) {
	parties, err := s.elections.GetParties(ctx)
	if err != nil {
		return nil, err
	}
	if len(parties) == 0 {
		return nil, errors.New("no parties stored, run import first")
	}
	munis, err := s.elections.GetMunicipalities(ctx)
	if err != nil {
		return nil, err
	}
	return loadWithFeatures(s.files, s.log, parties, munis)
}

func loadWithFeatures(files *FileRepository, log logging.Logger, parties []models.Party, munis map[string]models.MunicipalityRecord) (*election.Dataset, error) {
	features, missing, err := files.GetFeatures()
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		log.Warn("boundary files missing, rendering without them",
			logging.String("dir", files.Dir()),
			logging.String("files", strings.Join(missing, ",")))
	}

	d := election.NewDataset(parties, munis, features, nil)
	log.Info("dataset loaded",
		logging.Int("parties", len(d.Parties)),
		logging.Int("municipalities", len(d.Municipalities)),
		logging.Int("prefectures", len(d.PrefToBlock)))
	return d, nil
}

// Import copies the JSON results into the database
func Import(ctx context.Context, files *FileRepository, elections *ElectionRepository) (parties, municipalities int, err error) {
	ps, err := files.GetParties()
	if err != nil {
		return 0, 0, err
	}
	munis, err := files.GetMunicipalities()
	if err != nil {
		return 0, 0, err
	}
	if err := elections.ReplaceAll(ctx, ps, munis, files.Dir()); err != nil {
		return 0, 0, fmt.Errorf("failed to import dataset: %w", err)
	}
	return len(ps), len(munis), nil
}
