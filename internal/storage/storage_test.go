package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestToken_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	assert.Empty(t, s.Token())

	require.NoError(t, s.SetToken("bearer-abc"))
	assert.Equal(t, "bearer-abc", s.Token())

	require.NoError(t, s.ClearToken())
	assert.Empty(t, s.Token())
}

func TestClearToken_WhenAbsent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.ClearToken())
}

func TestRawUser_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	assert.Nil(t, s.RawUser())

	payload := []byte(`{"first_name":"Chikondi"}`)
	require.NoError(t, s.SetRawUser(payload))
	assert.Equal(t, payload, s.RawUser())
}

func TestClear_RemovesSessionButKeepsDeviceID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetRawUser([]byte(`{}`)))
	id, err := s.DeviceID()
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	assert.Empty(t, s.Token())
	assert.Nil(t, s.RawUser())

	again, err := s.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again, "device id identifies the installation, not the session")
}

func TestDeviceID_GeneratedOnceAndStable(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	first, err := s.DeviceID()
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(first))

	second, err := s.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A new store over the same directory sees the same identifier.
	reopened, err := New(dir)
	require.NoError(t, err)
	third, err := reopened.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSetRawUser_OverwritesAtomically(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetRawUser([]byte(`{"v":1}`)))
	require.NoError(t, s.SetRawUser([]byte(`{"v":2}`)))

	assert.Equal(t, []byte(`{"v":2}`), s.RawUser())
}
