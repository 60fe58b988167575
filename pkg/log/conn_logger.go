package log

import (
	"net"
	"time"
)

// ConnLogger stamps events with the identity of one connection.
// A nil *ConnLogger discards everything.
type ConnLogger struct {
	logger Logger
	role   Role
	connID string
	remote string
	local  string
	peer   string
}

// NewConnLogger returns a ConnLogger for one connection. A nil logger
// discards events.
func NewConnLogger(l Logger, role Role, connID string, remote, local net.Addr) *ConnLogger {
	return &ConnLogger{
		logger: OrNoop(l),
		role:   role,
		connID: connID,
		remote: addrString(remote),
		local:  addrString(local),
	}
}

// WithPeer returns a copy that also records the peer certificate name.
func (c *ConnLogger) WithPeer(name string) *ConnLogger {
	if c == nil {
		return nil
	}
	cp := *c
	cp.peer = name
	return &cp
}

// State logs a state change.
func (c *ConnLogger) State(entity StateEntity, oldState, newState, reason string) {
	if c == nil {
		return
	}
	layer := LayerTransport
	if entity != StateEntityConnection {
		layer = LayerService
	}
	ev := c.event(DirectionIn, layer, CategoryState)
	ev.StateChange = &StateChangeEvent{
		Entity:   entity,
		OldState: oldState,
		NewState: newState,
		Reason:   reason,
	}
	c.logger.Log(ev)
}

// Message logs a handshake message.
func (c *ConnLogger) Message(dir Direction, msg *MessageEvent) {
	if c == nil {
		return
	}
	ev := c.event(dir, LayerWire, CategoryMessage)
	ev.Message = msg
	c.logger.Log(ev)
}

// Error logs an error. code is the application close code, if any.
func (c *ConnLogger) Error(layer Layer, err error, code *int, context string) {
	if c == nil || err == nil {
		return
	}
	ev := c.event(DirectionIn, layer, CategoryError)
	ev.Error = &ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Code:    code,
		Context: context,
	}
	c.logger.Log(ev)
}

func (c *ConnLogger) event(dir Direction, layer Layer, cat Category) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        layer,
		Category:     cat,
		LocalRole:    c.role,
		RemoteAddr:   c.remote,
		LocalAddr:    c.local,
		PeerName:     c.peer,
	}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
