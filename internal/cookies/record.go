package cookies

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// DefaultUserKey keys anonymous or legacy single-cookie sessions.
const DefaultUserKey = "default"

type UserEntry struct {
	Cookie  string    `json:"cookie"`
	Updated time.Time `json:"updated"`
}

// Record is the persisted multi-user session file. The legacy single-cookie
// shape {cookie, updated?} is still read and upgraded in memory under
// DefaultUserKey; it is never rewritten back in the old shape.
type Record struct {
	Users    map[string]UserEntry `json:"users"`
	LastUsed string               `json:"lastUsed,omitempty"`
}

// NormalizeUserKey maps an account identifier to its record key.
func NormalizeUserKey(identifier string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return DefaultUserKey
	}
	return identifier
}

// LoadRecord reads the session record at path. It fails soft: any I/O or
// parse error yields (nil, false) so a missing or corrupt file is treated
// as an empty record by the caller.
func LoadRecord(path string) (*Record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var raw struct {
		Users    map[string]UserEntry `json:"users"`
		LastUsed string               `json:"lastUsed"`
		Cookie   string               `json:"cookie"`
		Updated  string               `json:"updated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	if raw.Users != nil {
		return &Record{Users: raw.Users, LastUsed: raw.LastUsed}, true
	}
	if raw.Cookie == "" {
		return nil, false
	}
	// Legacy shape upgrade
	updated, _ := time.Parse(time.RFC3339, raw.Updated)
	return &Record{
		Users:    map[string]UserEntry{DefaultUserKey: {Cookie: raw.Cookie, Updated: updated}},
		LastUsed: DefaultUserKey,
	}, true
}

// Lookup returns the stored entry for an identifier, if any.
func (r *Record) Lookup(identifier string) (UserEntry, bool) {
	if r == nil || r.Users == nil {
		return UserEntry{}, false
	}
	entry, ok := r.Users[NormalizeUserKey(identifier)]
	return entry, ok
}

// SaveEntry merges a fresh cookie into the record (creating it if needed)
// and overwrites the whole file. Writing is best-effort; the caller logs
// the returned error instead of aborting the run.
func SaveEntry(path, identifier, cookie string, existing *Record) error {
	record := existing
	if record == nil {
		record = &Record{}
	}
	if record.Users == nil {
		record.Users = make(map[string]UserEntry)
	}
	key := NormalizeUserKey(identifier)
	record.Users[key] = UserEntry{Cookie: cookie, Updated: time.Now().UTC()}
	record.LastUsed = key
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
