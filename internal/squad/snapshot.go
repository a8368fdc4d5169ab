package squad

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fpl-optimizer/internal/feed"
)

// SnapshotEntry is one held player as persisted between runs. Only identity
// fields are stored; statistics are re-fetched fresh each run.
type SnapshotEntry struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	ElementType int    `json:"element_type"`
	Team        int    `json:"team"`
}

// LoadSnapshot reads the current-squad snapshot. A missing or unreadable file
// yields an empty squad (triggering full-rebuild mode) rather than an error;
// the caller decides nothing here.
func LoadSnapshot(path string) []SnapshotEntry {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("reading squad snapshot, starting from empty squad",
				slog.String("path", path), slog.String("error", err.Error()))
		}
		return nil
	}
	var entries []SnapshotEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		slog.Error("decoding squad snapshot, starting from empty squad",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}
	return entries
}

// SaveSnapshot overwrites the snapshot with the newly selected squad.
func SaveSnapshot(path string, selected []feed.Player) error {
	entries := make([]SnapshotEntry, 0, len(selected))
	for _, p := range selected {
		entries = append(entries, SnapshotEntry{
			ID:          p.ID,
			WebName:     p.WebName,
			ElementType: p.ElementType,
			Team:        p.Team,
		})
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("squad snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write squad snapshot: %w", err)
	}
	return nil
}
