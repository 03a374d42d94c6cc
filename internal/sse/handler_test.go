package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readFrame reads one event frame and returns its type and data lines.
func readFrame(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var eventType, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return eventType, data
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestHandler_StreamsSnapshots(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	srv := httptest.NewServer(NewHandler(m, nil))
	defer srv.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	eventType, data := readFrame(t, r)
	require.Equal(t, string(EventConnected), eventType)

	var connected struct {
		Data ConnectedData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &connected))
	assert.True(t, strings.HasPrefix(connected.Data.ClientID, "client-"))

	m.Emit(NewSnapshotEvent(snapshotOf("Dune")))

	eventType, data = readFrame(t, r)
	require.Equal(t, string(EventSnapshot), eventType)

	var snapshot struct {
		Type EventType    `json:"type"`
		Data SnapshotData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &snapshot))
	assert.Equal(t, EventSnapshot, snapshot.Type)
	require.Len(t, snapshot.Data.Books, 1)
	assert.Equal(t, "Dune", snapshot.Data.Books[0].Title)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	h := NewHandler(NewManager(nil), nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/stream", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandler_UnavailableAfterShutdown(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Shutdown(context.Background()))

	w := httptest.NewRecorder()
	NewHandler(m, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_EndsWhenManagerCloses(t *testing.T) {
	m := NewManager(nil)
	srv := httptest.NewServer(NewHandler(m, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	eventType, _ := readFrame(t, r)
	require.Equal(t, string(EventConnected), eventType)

	require.NoError(t, m.Shutdown(context.Background()))

	_, err = r.ReadString('\n')
	assert.Error(t, err, "stream ends after shutdown")
}
