// Package catalog reads brand and business metadata from PostgreSQL. The
// catalog is the source of truth for entity display fields, locations, and
// value alignments; the ranking engine consumes it as a per-request
// snapshot and treats missing entities as deleted.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/iendorse/rankd/internal/ranking/alignment"
	"github.com/iendorse/rankd/internal/ranking/engine"
	"github.com/iendorse/rankd/pkg/postgres"
)

// Value is a taggable concept users can support or avoid.
type Value struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Store reads catalog data from PostgreSQL.
//
// Schema:
//
//	CREATE TABLE entities (
//	    id        TEXT PRIMARY KEY,
//	    kind      TEXT NOT NULL,          -- 'brand' | 'business'
//	    name      TEXT NOT NULL,
//	    category  TEXT NOT NULL DEFAULT '',
//	    website   TEXT NOT NULL DEFAULT '',
//	    logo_url  TEXT NOT NULL DEFAULT '',
//	    latitude  DOUBLE PRECISION,
//	    longitude DOUBLE PRECISION
//	);
//
//	CREATE TABLE catalog_values (
//	    id       TEXT PRIMARY KEY,
//	    name     TEXT NOT NULL,
//	    category TEXT NOT NULL DEFAULT ''
//	);
//
//	CREATE TABLE value_alignments (
//	    entity_id  TEXT NOT NULL REFERENCES entities(id),
//	    value_id   TEXT NOT NULL REFERENCES catalog_values(id),
//	    position   INT NOT NULL CHECK (position BETWEEN 1 AND 11),
//	    is_support BOOLEAN NOT NULL,
//	    PRIMARY KEY (entity_id, value_id)
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a catalog store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "catalog-store"),
	}
}

// Snapshot loads the full id-to-entity map for one entity kind. The map is
// loaded once per ranking request; entries whose references are missing
// from it are treated as deleted by the aggregation stage.
func (s *Store) Snapshot(ctx context.Context, kind engine.EntryKind) (map[string]engine.Entity, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, name, category, website, logo_url, latitude, longitude
		 FROM entities WHERE kind = $1`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s snapshot: %w", kind, err)
	}
	defer rows.Close()

	snapshot := make(map[string]engine.Entity)
	for rows.Next() {
		var (
			e        engine.Entity
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Website, &e.LogoURL, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		e.Kind = kind
		if lat.Valid && lng.Valid {
			e.Location = &engine.LatLng{Latitude: lat.Float64, Longitude: lng.Float64}
		}
		snapshot[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s snapshot: %w", kind, err)
	}

	s.logger.Debug("catalog snapshot loaded", "kind", kind, "entities", len(snapshot))
	return snapshot, nil
}

// Locations returns the known coordinates for entities of the given kind.
// Entities without a location are simply absent from the map.
func (s *Store) Locations(ctx context.Context, kind engine.EntryKind) (map[string]engine.LatLng, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, latitude, longitude FROM entities
		 WHERE kind = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s locations: %w", kind, err)
	}
	defer rows.Close()

	locations := make(map[string]engine.LatLng)
	for rows.Next() {
		var (
			id       string
			lat, lng float64
		)
		if err := rows.Scan(&id, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		locations[id] = engine.LatLng{Latitude: lat, Longitude: lng}
	}
	return locations, rows.Err()
}

// ValueAlignments returns the item's declared value stances, or an empty
// slice when the entity has none.
func (s *Store) ValueAlignments(ctx context.Context, entityID string) ([]alignment.ValueAlignment, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT value_id, position, is_support FROM value_alignments
		 WHERE entity_id = $1 ORDER BY position`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying value alignments for %s: %w", entityID, err)
	}
	defer rows.Close()

	alignments := make([]alignment.ValueAlignment, 0)
	for rows.Next() {
		var a alignment.ValueAlignment
		if err := rows.Scan(&a.ValueID, &a.Position, &a.IsSupport); err != nil {
			return nil, fmt.Errorf("scanning value alignment row: %w", err)
		}
		alignments = append(alignments, a)
	}
	return alignments, rows.Err()
}

// Values lists every value in the catalog.
func (s *Store) Values(ctx context.Context) ([]Value, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, name, category FROM catalog_values ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying values: %w", err)
	}
	defer rows.Close()

	values := make([]Value, 0)
	for rows.Next() {
		var v Value
		if err := rows.Scan(&v.ID, &v.Name, &v.Category); err != nil {
			return nil, fmt.Errorf("scanning value row: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
