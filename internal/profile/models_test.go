// internal/profile/models_test.go

package profile

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMediaListScanCurrentShape(t *testing.T) {
    var m MediaList
    err := m.Scan([]byte(`[{"type":"photo","url":"https://cdn.example.com/a.jpg"},{"type":"video","url":"https://cdn.example.com/b.mp4"}]`))
    require.NoError(t, err)

    require.Len(t, m, 2)
    assert.Equal(t, MediaItem{Type: "photo", URL: "https://cdn.example.com/a.jpg"}, m[0])
    assert.Equal(t, MediaItem{Type: "video", URL: "https://cdn.example.com/b.mp4"}, m[1])
}

func TestMediaListScanEnvelopeShape(t *testing.T) {
    var m MediaList
    err := m.Scan([]byte(`{"media":[{"type":"video","url":"https://cdn.example.com/v.mp4"}],"photos":["https://cdn.example.com/p.jpg"]}`))
    require.NoError(t, err)

    require.Len(t, m, 2)
    assert.Equal(t, MediaItem{Type: "video", URL: "https://cdn.example.com/v.mp4"}, m[0])
    assert.Equal(t, MediaItem{Type: "photo", URL: "https://cdn.example.com/p.jpg"}, m[1])
}

func TestMediaListScanBareURLList(t *testing.T) {
    var m MediaList
    err := m.Scan([]byte(`["https://cdn.example.com/1.jpg","https://cdn.example.com/2.jpg"]`))
    require.NoError(t, err)

    require.Len(t, m, 2)
    for _, item := range m {
        assert.Equal(t, "photo", item.Type)
    }
    assert.Equal(t, "https://cdn.example.com/1.jpg", m[0].URL)
}

func TestMediaListScanFillsMissingType(t *testing.T) {
    var m MediaList
    err := m.Scan([]byte(`[{"url":"https://cdn.example.com/a.jpg"}]`))
    require.NoError(t, err)

    require.Len(t, m, 1)
    assert.Equal(t, "photo", m[0].Type)
}

func TestMediaListScanDropsEmptyEntries(t *testing.T) {
    var m MediaList
    err := m.Scan([]byte(`[{"type":"photo","url":""},{"type":"photo","url":"https://cdn.example.com/a.jpg"}]`))
    require.NoError(t, err)

    require.Len(t, m, 1)
    assert.Equal(t, "https://cdn.example.com/a.jpg", m[0].URL)
}

func TestMediaListScanNil(t *testing.T) {
    var m MediaList
    require.NoError(t, m.Scan(nil))
    assert.Empty(t, m)
}

func TestMediaListValueNilIsEmptyArray(t *testing.T) {
    var m MediaList
    v, err := m.Value()
    require.NoError(t, err)
    assert.Equal(t, []byte(`[]`), v)
}

func TestDiscoverable(t *testing.T) {
    p := &Profile{
        Media: MediaList{{Type: "photo", URL: "https://cdn.example.com/a.jpg"}},
    }
    assert.True(t, p.Discoverable())

    p.IsPaused = true
    assert.False(t, p.Discoverable())

    p.IsPaused = false
    p.IsHidden = true
    assert.False(t, p.Discoverable())

    p.IsHidden = false
    p.Media = nil
    assert.False(t, p.Discoverable())
}

func TestAge(t *testing.T) {
    p := &Profile{}
    assert.Zero(t, p.Age())

    dob := time.Now().AddDate(-30, 0, -1)
    p.BasicInfo.DateOfBirth = &dob
    assert.Equal(t, 30, p.Age())

    notYet := time.Now().AddDate(-30, 0, 1)
    p.BasicInfo.DateOfBirth = &notYet
    assert.Equal(t, 29, p.Age())
}
