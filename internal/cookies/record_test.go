package cookies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecordMultiUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	data := `{
		"users": {
			"someone@example.com": {"cookie": "csrftoken=a; sessionid=b", "updated": "2024-05-01T10:00:00Z"}
		},
		"lastUsed": "someone@example.com"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	record, ok := LoadRecord(path)
	require.True(t, ok)
	assert.Equal(t, "someone@example.com", record.LastUsed)
	entry, found := record.Lookup("Someone@Example.com")
	require.True(t, found)
	assert.Equal(t, "csrftoken=a; sessionid=b", entry.Cookie)
}

func TestLoadRecordLegacyUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	data := `{"cookie": "csrftoken=old; sessionid=legacy", "updated": "2023-01-15T08:30:00Z"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	record, ok := LoadRecord(path)
	require.True(t, ok)
	assert.Equal(t, DefaultUserKey, record.LastUsed)
	entry, found := record.Lookup("")
	require.True(t, found)
	assert.Equal(t, "csrftoken=old; sessionid=legacy", entry.Cookie)
	assert.Equal(t, 2023, entry.Updated.Year())
}

func TestLoadRecordFailsSoft(t *testing.T) {
	_, ok := LoadRecord(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.False(t, ok)

	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, ok = LoadRecord(path)
	assert.False(t, ok)

	path = filepath.Join(t.TempDir(), "empty-shape.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))
	_, ok = LoadRecord(path)
	assert.False(t, ok)
}

func TestSaveEntryMergesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, SaveEntry(path, "First@Example.com", "sessionid=one", nil))
	record, ok := LoadRecord(path)
	require.True(t, ok)
	assert.Equal(t, "first@example.com", record.LastUsed)

	require.NoError(t, SaveEntry(path, "second@example.com", "sessionid=two", record))
	record, ok = LoadRecord(path)
	require.True(t, ok)
	assert.Len(t, record.Users, 2)
	assert.Equal(t, "second@example.com", record.LastUsed)

	// Writing the same identifier overwrites in place
	require.NoError(t, SaveEntry(path, "second@example.com", "sessionid=three", record))
	record, _ = LoadRecord(path)
	assert.Len(t, record.Users, 2)
	entry, _ := record.Lookup("second@example.com")
	assert.Equal(t, "sessionid=three", entry.Cookie)
	assert.False(t, entry.Updated.IsZero())
}

func TestNormalizeUserKey(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeUserKey("  A@B.COM "))
	assert.Equal(t, DefaultUserKey, NormalizeUserKey(""))
	assert.Equal(t, DefaultUserKey, NormalizeUserKey("   "))
}
