// Package lists reads endorsement lists and user value preferences from
// PostgreSQL and consumes the list-change event stream. Lists are the raw
// input of the ranking engine; the store materializes the complete set of
// endorsed lists in memory for each aggregation window.
package lists

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iendorse/rankd/internal/ranking/engine"
	"github.com/iendorse/rankd/pkg/postgres"
)

// Prefs is one user's declared value preference sets. Supported and avoided
// are disjoint by construction (stance is a single column per value).
type Prefs struct {
	Supported map[string]struct{}
	Avoided   map[string]struct{}
}

// Total returns the size of the user's full declared value set.
func (p Prefs) Total() int {
	return len(p.Supported) + len(p.Avoided)
}

// Store reads endorsement lists from PostgreSQL.
//
// Schema:
//
//	CREATE TABLE endorsement_lists (
//	    id          TEXT PRIMARY KEY,
//	    user_id     TEXT NOT NULL,
//	    title       TEXT NOT NULL DEFAULT '',
//	    is_endorsed BOOLEAN NOT NULL DEFAULT FALSE
//	);
//
//	CREATE TABLE list_entries (
//	    list_id  TEXT NOT NULL REFERENCES endorsement_lists(id),
//	    pos      INT NOT NULL,            -- curation order, 0-based
//	    kind     TEXT NOT NULL,
//	    ref_id   TEXT NOT NULL DEFAULT '',
//	    name     TEXT NOT NULL DEFAULT '',
//	    category TEXT NOT NULL DEFAULT '',
//	    logo_url TEXT NOT NULL DEFAULT '',
//	    PRIMARY KEY (list_id, pos)
//	);
//
//	CREATE TABLE user_value_prefs (
//	    user_id  TEXT NOT NULL,
//	    value_id TEXT NOT NULL,
//	    stance   TEXT NOT NULL CHECK (stance IN ('support', 'avoid')),
//	    PRIMARY KEY (user_id, value_id)
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a list store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "list-store"),
	}
}

// EndorsedLists materializes every list flagged is_endorsed, with entries in
// curation order. Only endorsed lists feed the global ranking; other curated
// lists are private collections and do not count.
func (s *Store) EndorsedLists(ctx context.Context) ([]engine.EndorsementList, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.title, e.kind, e.ref_id, e.name, e.category, e.logo_url
		 FROM endorsement_lists l
		 JOIN list_entries e ON e.list_id = l.id
		 WHERE l.is_endorsed = TRUE
		 ORDER BY l.id, e.pos`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying endorsed lists: %w", err)
	}
	defer rows.Close()

	lists := make([]engine.EndorsementList, 0)
	var current *engine.EndorsementList
	for rows.Next() {
		var (
			listID, userID, title string
			entry                 engine.ListEntry
		)
		if err := rows.Scan(&listID, &userID, &title, &entry.Kind, &entry.RefID, &entry.Name, &entry.Category, &entry.LogoURL); err != nil {
			return nil, fmt.Errorf("scanning list row: %w", err)
		}
		if current == nil || current.ID != listID {
			lists = append(lists, engine.EndorsementList{
				ID:         listID,
				UserID:     userID,
				Title:      title,
				IsEndorsed: true,
			})
			current = &lists[len(lists)-1]
		}
		current.Entries = append(current.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading endorsed lists: %w", err)
	}

	s.logger.Debug("endorsed lists loaded", "lists", len(lists))
	return lists, nil
}

// UserPrefs loads the user's supported and avoided value sets. A user with
// no rows gets empty (not nil) sets.
func (s *Store) UserPrefs(ctx context.Context, userID string) (Prefs, error) {
	prefs := Prefs{
		Supported: make(map[string]struct{}),
		Avoided:   make(map[string]struct{}),
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT value_id, stance FROM user_value_prefs WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return prefs, fmt.Errorf("querying prefs for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var valueID, stance string
		if err := rows.Scan(&valueID, &stance); err != nil {
			return prefs, fmt.Errorf("scanning pref row: %w", err)
		}
		switch stance {
		case "support":
			prefs.Supported[valueID] = struct{}{}
		case "avoid":
			prefs.Avoided[valueID] = struct{}{}
		}
	}
	return prefs, rows.Err()
}
