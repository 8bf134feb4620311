package service

import (
	"errors"
	"fmt"
	"strconv"

	"pagebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Editor Settings
// ─────────────────────────────────────────────────────────────
//
// Key-value rows in app_settings that outlive a session: the window size
// and the page that was open on exit.

const (
	keyWindowWidth  = "window_width"
	keyWindowHeight = "window_height"
	keyLastPage     = "last_page_id"

	defaultWindowWidth  = 1440
	defaultWindowHeight = 900
	minWindowWidth      = 800
	minWindowHeight     = 600
)

var errNoSettingsDB = errors.New("settings: no db")

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SettingsService persists editor preferences between sessions.
type SettingsService struct {
	db *storage.DB
}

func NewSettingsService(db *storage.DB) *SettingsService {
	return &SettingsService{db: db}
}

// get returns the stored value for key, or "" when unset or unreadable.
func (s *SettingsService) get(key string) string {
	if s.db == nil {
		return ""
	}
	var v string
	if err := s.db.Conn().QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&v); err != nil {
		return ""
	}
	return v
}

func (s *SettingsService) set(pairs ...string) error {
	if s.db == nil {
		return errNoSettingsDB
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, err := s.db.Conn().Exec(
			`INSERT INTO app_settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			pairs[i], pairs[i+1],
		); err != nil {
			return fmt.Errorf("save setting %s: %w", pairs[i], err)
		}
	}
	return nil
}

// LoadWindowSize returns the saved window size. Missing or too small values
// fall back to the defaults.
func (s *SettingsService) LoadWindowSize() WindowSize {
	return WindowSize{
		Width:  s.dimension(keyWindowWidth, minWindowWidth, defaultWindowWidth),
		Height: s.dimension(keyWindowHeight, minWindowHeight, defaultWindowHeight),
	}
}

func (s *SettingsService) dimension(key string, min, fallback int) int {
	n, err := strconv.Atoi(s.get(key))
	if err != nil || n < min {
		return fallback
	}
	return n
}

func (s *SettingsService) SaveWindowSize(width, height int) error {
	return s.set(
		keyWindowWidth, strconv.Itoa(width),
		keyWindowHeight, strconv.Itoa(height),
	)
}

// LastPageID returns the page that was open when the editor last closed.
func (s *SettingsService) LastPageID() string {
	return s.get(keyLastPage)
}

func (s *SettingsService) SetLastPageID(id string) error {
	return s.set(keyLastPage, id)
}
