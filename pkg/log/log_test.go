package log

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockLogger records events for testing
type mockLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return read
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
}

func TestEventCBORRoundTrip(t *testing.T) {
	pt := 3 * time.Millisecond
	code := 2
	events := []Event{
		{
			Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
			ConnectionID: "conn-1",
			Direction:    DirectionIn,
			Layer:        LayerWire,
			Category:     CategoryMessage,
			LocalRole:    RoleAuthServer,
			RemoteAddr:   "127.0.0.1:5000",
			PeerName:     "iyes Client",
			Message: &MessageEvent{
				Type:          MessageTypeRequest,
				Size:          42,
				ProtoVersion:  "1.0",
				ClientVersion: "0.1",
				DisplayName:   "Name",
			},
		},
		{
			Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 7, time.UTC),
			ConnectionID: "conn-1",
			Direction:    DirectionOut,
			Layer:        LayerWire,
			Category:     CategoryMessage,
			Message: &MessageEvent{
				Type:           MessageTypeResponse,
				Size:           7,
				Result:         "Account",
				Detail:         "wrong credentials",
				ProcessingTime: &pt,
			},
		},
		{
			Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 8, time.UTC),
			ConnectionID: "conn-1",
			Layer:        LayerService,
			Category:     CategoryError,
			Error:        &ErrorEventData{Layer: LayerService, Message: "timeout", Code: &code, Context: "handshake"},
		},
	}

	for _, want := range events {
		data, err := EncodeEvent(want)
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		got, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("DecodeEvent failed: %v", err)
		}
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("Timestamp = %v, want %v", got.Timestamp, want.Timestamp)
		}
		got.Timestamp = want.Timestamp
		gotData, _ := EncodeEvent(got)
		if !bytes.Equal(gotData, data) {
			t.Errorf("round trip changed event: got %+v, want %+v", got, want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DirectionIn.String(), "IN"},
		{Direction(9).String(), "UNKNOWN"},
		{LayerWire.String(), "WIRE"},
		{CategoryState.String(), "STATE"},
		{Category(1).String(), "UNKNOWN"},
		{RoleAuthServer.String(), "AUTH_SERVER"},
		{RoleGameClient.String(), "GAME_CLIENT"},
		{MessageTypeResponse.String(), "RESPONSE"},
		{StateEntityListener.String(), "LISTENER"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-A", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryState},
		{Timestamp: time.Now(), ConnectionID: "conn-B", Direction: DirectionOut, Layer: LayerWire, Category: CategoryMessage, LocalRole: RoleGameClient},
		{Timestamp: time.Now(), ConnectionID: "conn-A", Direction: DirectionIn, Layer: LayerService, Category: CategoryError, PeerName: "iyes Client"},
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].ConnectionID != "conn-A" || read[2].PeerName != "iyes Client" {
		t.Errorf("unexpected events: %+v", read)
	}
}

func TestReaderFilters(t *testing.T) {
	start := time.Now()
	events := []Event{
		{Timestamp: start, ConnectionID: "conn-A", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryState},
		{Timestamp: start.Add(time.Second), ConnectionID: "conn-B", Direction: DirectionOut, Layer: LayerWire, Category: CategoryMessage, LocalRole: RoleGameClient},
		{Timestamp: start.Add(2 * time.Second), ConnectionID: "conn-A", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage, PeerName: "iyes Client"},
	}
	path := createTestLogFile(t, events)

	out := DirectionOut
	wire := LayerWire
	client := RoleGameClient
	end := start.Add(2 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"connection", Filter{ConnectionID: "conn-A"}, 2},
		{"direction", Filter{Direction: &out}, 1},
		{"layer", Filter{Layer: &wire}, 2},
		{"role", Filter{Role: &client}, 1},
		{"peer", Filter{PeerName: "iyes Client"}, 1},
		{"time range", Filter{TimeEnd: &end}, 2},
		{"combined", Filter{ConnectionID: "conn-A", Layer: &wire}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestFileLoggerCloseTwice(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "x.mlog"))
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	logger.Log(Event{ConnectionID: "ignored"})
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}

	NewMultiLogger(mock1, mock2).Log(Event{ConnectionID: "conn-123"})

	for i, mock := range []*mockLogger{mock1, mock2} {
		if len(mock.events) != 1 || mock.events[0].ConnectionID != "conn-123" {
			t.Errorf("logger %d: events = %+v", i, mock.events)
		}
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	m := &mockLogger{}
	if OrNoop(m) != Logger(m) {
		t.Error("OrNoop should keep a non-nil logger")
	}
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		ConnectionID: "conn-xyz",
		Layer:        LayerWire,
		Category:     CategoryMessage,
		Message: &MessageEvent{
			Type:   MessageTypeResponse,
			Result: "AuthWelcome",
		},
	})

	out := buf.String()
	for _, want := range []string{"conn_id=conn-xyz", "msg_type=RESPONSE", "result=AuthWelcome", "layer=WIRE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestConnLogger(t *testing.T) {
	m := &mockLogger{}
	remote := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4000}
	cl := NewConnLogger(m, RoleAuthServer, "conn-1", remote, nil)

	cl.State(StateEntityConnection, StateNegotiating, StateAccepted, "")
	cl.WithPeer("iyes Client").Message(DirectionIn, &MessageEvent{Type: MessageTypeRequest})
	cl.Error(LayerService, errors.New("boom"), nil, "handshake")
	cl.Error(LayerService, nil, nil, "ignored")

	if len(m.events) != 3 {
		t.Fatalf("got %d events, want 3", len(m.events))
	}
	if ev := m.events[0]; ev.StateChange == nil || ev.StateChange.NewState != StateAccepted || ev.Layer != LayerTransport {
		t.Errorf("state event = %+v", ev)
	}
	if ev := m.events[1]; ev.PeerName != "iyes Client" || ev.RemoteAddr != "127.0.0.1:4000" || ev.Category != CategoryMessage {
		t.Errorf("message event = %+v", ev)
	}
	if ev := m.events[2]; ev.Error == nil || ev.Error.Message != "boom" {
		t.Errorf("error event = %+v", ev)
	}

	var nilLogger *ConnLogger
	nilLogger.State(StateEntitySession, "", StateClosed, "")
	if nilLogger.WithPeer("x") != nil {
		t.Error("WithPeer on nil should return nil")
	}
}
