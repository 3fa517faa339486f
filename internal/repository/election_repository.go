package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/election-map-backend-go/internal/database"
	"github.com/jengzang/election-map-backend-go/internal/models"
)

// ElectionRepository stores the raw roster and municipality results in SQLite
type ElectionRepository struct {
	db *sql.DB
}

// NewElectionRepository creates a new election repository
func NewElectionRepository(db *sql.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

// ImportRecord is one row of the import log
type ImportRecord struct {
	ID             int64  `json:"id"`
	SourceDir      string `json:"source_dir"`
	Parties        int    `json:"parties"`
	Municipalities int    `json:"municipalities"`
	ImportedAt     string `json:"imported_at"`
}

// GetParties returns the roster in its stored order
func (r *ElectionRepository) GetParties(ctx context.Context) ([]models.Party, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, name, total_votes, municipalities
		FROM parties
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		var p models.Party
		if err := rows.Scan(&p.Code, &p.Name, &p.TotalVotes, &p.Municipalities); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

// GetMunicipalities returns every municipality with its party shares
func (r *ElectionRepository) GetMunicipalities(ctx context.Context) (map[string]models.MunicipalityRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name, pref, valid_votes FROM municipalities`)
	if err != nil {
		return nil, fmt.Errorf("failed to query municipalities: %w", err)
	}
	defer rows.Close()

	out := map[string]models.MunicipalityRecord{}
	for rows.Next() {
		var code string
		rec := models.MunicipalityRecord{Parties: map[string]float64{}}
		if err := rows.Scan(&code, &rec.Name, &rec.Pref, &rec.ValidVotes); err != nil {
			return nil, fmt.Errorf("failed to scan municipality: %w", err)
		}
		out[code] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shares, err := r.db.QueryContext(ctx, `
		SELECT muni_code, party_code, share
		FROM municipality_shares
		WHERE share IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer shares.Close()

	for shares.Next() {
		var muni, party string
		var share float64
		if err := shares.Scan(&muni, &party, &share); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if rec, ok := out[muni]; ok {
			rec.Parties[party] = share
		}
	}
	return out, shares.Err()
}

// ReplaceAll swaps the stored dataset for a new one in a single transaction
// and appends an import log entry.
func (r *ElectionRepository) ReplaceAll(ctx context.Context, parties []models.Party, munis map[string]models.MunicipalityRecord, sourceDir string) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{"DELETE FROM municipality_shares", "DELETE FROM municipalities", "DELETE FROM parties"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to clear tables: %w", err)
			}
		}

		partyStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO parties (code, name, total_votes, municipalities, position)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare party insert: %w", err)
		}
		defer partyStmt.Close()
		for i, p := range parties {
			if _, err := partyStmt.ExecContext(ctx, p.Code, p.Name, p.TotalVotes, p.Municipalities, i); err != nil {
				return fmt.Errorf("failed to insert party %s: %w", p.Code, err)
			}
		}

		muniStmt, err := tx.PrepareContext(ctx, `INSERT INTO municipalities (code, name, pref, valid_votes) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare municipality insert: %w", err)
		}
		defer muniStmt.Close()
		shareStmt, err := tx.PrepareContext(ctx, `INSERT INTO municipality_shares (muni_code, party_code, share) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare share insert: %w", err)
		}
		defer shareStmt.Close()

		for code, rec := range munis {
			if _, err := muniStmt.ExecContext(ctx, code, rec.Name, rec.Pref, rec.ValidVotes); err != nil {
				return fmt.Errorf("failed to insert municipality %s: %w", code, err)
			}
			for party, share := range rec.Parties {
				if _, err := shareStmt.ExecContext(ctx, code, party, share); err != nil {
					return fmt.Errorf("failed to insert share %s/%s: %w", code, party, err)
				}
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO import_log (source_dir, parties, municipalities)
			VALUES (?, ?, ?)
		`, sourceDir, len(parties), len(munis))
		if err != nil {
			return fmt.Errorf("failed to record import: %w", err)
		}
		return nil
	})
}

// GetLastImport returns the most recent import, or nil when nothing was imported
func (r *ElectionRepository) GetLastImport(ctx context.Context) (*ImportRecord, error) {
	rec := &ImportRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source_dir, parties, municipalities, imported_at
		FROM import_log
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&rec.ID, &rec.SourceDir, &rec.Parties, &rec.Municipalities, &rec.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last import: %w", err)
	}
	return rec, nil
}
