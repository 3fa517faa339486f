package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jengzang/election-map-backend-go/internal/models"
)

// File names expected under the data directory
const (
	PartiesFile        = "parties.json"
	ElectionDataFile   = "election_data.json"
	MunicipalitiesFile = "municipalities.geojson"
	PrefecturesFile    = "prefectures.geojson"
	BlocksFile         = "blocks.geojson"
)

var featureFiles = map[models.Granularity]string{
	models.GranularityMuni:  MunicipalitiesFile,
	models.GranularityPref:  PrefecturesFile,
	models.GranularityBlock: BlocksFile,
}

// FileRepository reads the roster, results and boundaries from a directory
type FileRepository struct {
	dir string
}

// NewFileRepository creates a repository rooted at dir
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Dir returns the data directory
func (r *FileRepository) Dir() string {
	return r.dir
}

// rawRecord keeps null shares distinguishable from zero
type rawRecord struct {
	Name       string              `json:"name"`
	Pref       string              `json:"pref"`
	ValidVotes *float64            `json:"valid_votes"`
	Parties    map[string]*float64 `json:"parties"`
}

// GetParties reads the party roster in file order
func (r *FileRepository) GetParties() ([]models.Party, error) {
	var parties []models.Party
	if err := r.readJSON(PartiesFile, &parties); err != nil {
		return nil, err
	}
	return parties, nil
}

// GetMunicipalities reads per-municipality results keyed by municipality
// code. Null shares are dropped; a null valid vote count becomes 0.
func (r *FileRepository) GetMunicipalities() (map[string]models.MunicipalityRecord, error) {
	var raw map[string]rawRecord
	if err := r.readJSON(ElectionDataFile, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]models.MunicipalityRecord, len(raw))
	for code, rec := range raw {
		m := models.MunicipalityRecord{
			Name:    rec.Name,
			Pref:    rec.Pref,
			Parties: make(map[string]float64, len(rec.Parties)),
		}
		if rec.ValidVotes != nil {
			m.ValidVotes = *rec.ValidVotes
		}
		for party, share := range rec.Parties {
			if share != nil {
				m.Parties[party] = *share
			}
		}
		out[code] = m
	}
	return out, nil
}

// GetFeatures reads the three boundary collections. A missing file yields
// an empty collection so the other granularities still render.
func (r *FileRepository) GetFeatures() (map[models.Granularity]*geojson.FeatureCollection, []string, error) {
	out := make(map[models.Granularity]*geojson.FeatureCollection, len(featureFiles))
	var missing []string
	for g, name := range featureFiles {
		fc := &geojson.FeatureCollection{}
		err := r.readJSON(name, fc)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, name)
		case err != nil:
			return nil, nil, err
		}
		out[g] = fc
	}
	return out, missing, nil
}

func (r *FileRepository) readJSON(name string, v interface{}) error {
	path := filepath.Join(r.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
