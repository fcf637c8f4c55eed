package instagram

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceIDs identify the emulated Android device. They are generated once and
// kept across logins so Instagram sees the same device every run.
type DeviceIDs struct {
	PhoneID         string `json:"phone_id"`
	UUID            string `json:"uuid"`
	ClientSessionID string `json:"client_session_id"`
	AdvertisingID   string `json:"advertising_id"`
	AndroidDeviceID string `json:"android_device_id"`
}

// Settings is the persisted session artifact. Loading it on a later run lets
// the client resume the session instead of logging in again.
type Settings struct {
	Username      string            `json:"username"`
	UserID        ID                `json:"user_id"`
	UUIDs         DeviceIDs         `json:"uuids"`
	Cookies       map[string]string `json:"cookies"`
	Authorization string            `json:"authorization"`
	UserAgent     string            `json:"user_agent,omitempty"`
	LastLogin     time.Time         `json:"last_login"`
}

// NewSettings returns settings for username with a freshly generated device identity
func NewSettings(username string) *Settings {
	return &Settings{
		Username: username,
		UUIDs:    newDeviceIDs(),
		Cookies:  make(map[string]string),
	}
}

func newDeviceIDs() DeviceIDs {
	return DeviceIDs{
		PhoneID:         uuid.NewString(),
		UUID:            uuid.NewString(),
		ClientSessionID: uuid.NewString(),
		AdvertisingID:   uuid.NewString(),
		AndroidDeviceID: "android-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
	}
}

// HasSession reports whether the settings carry an authenticated session
func (s *Settings) HasSession() bool {
	return s != nil && (s.Authorization != "" || s.Cookies["sessionid"] != "")
}

// Clone returns a deep copy
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	c.Cookies = make(map[string]string, len(s.Cookies))
	for k, v := range s.Cookies {
		c.Cookies[k] = v
	}
	return &c
}

// ClearSession drops authentication state and keeps the device identity
func (s *Settings) ClearSession() {
	s.UserID = ""
	s.Authorization = ""
	s.Cookies = make(map[string]string)
}

// forAccount derives the settings to log in as username from a prior artifact.
// The device identity is always kept; the session only when it belongs to username.
func forAccount(prior *Settings, username string) *Settings {
	if prior == nil {
		return NewSettings(username)
	}

	s := prior.Clone()
	if s.UUIDs.UUID == "" || s.UUIDs.AndroidDeviceID == "" {
		s.UUIDs = newDeviceIDs()
	}
	if !strings.EqualFold(s.Username, username) {
		s.ClearSession()
	}
	s.Username = username
	return s
}

// LoadSettings reads a settings artifact. A missing file returns an error
// satisfying errors.Is(err, os.ErrNotExist).
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Cookies == nil {
		s.Cookies = make(map[string]string)
	}
	return &s, nil
}

// DumpSettings writes the settings artifact atomically with owner-only permissions
func DumpSettings(path string, s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
