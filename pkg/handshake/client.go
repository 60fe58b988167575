package handshake

import (
	"context"
	"fmt"
	"time"

	"github.com/iyes-games/mpauth/pkg/log"
	"github.com/iyes-games/mpauth/pkg/transport"
	"github.com/iyes-games/mpauth/pkg/version"
	"github.com/iyes-games/mpauth/pkg/wire"
)

// Perform runs the client side of the handshake on an established
// connection: it opens a stream, sends req, closes the send side and waits
// for the response.
//
// A protocol error from the server is returned as an error wrapping both
// ErrRefused and the *wire.ResponseError[AE, GE]:
//
//	var refused *wire.ResponseError[AE, GE]
//	if errors.As(err, &refused) { ... }
//
// The deadline of ctx, if any, is applied to the stream.
func Perform[A, AE, G, GE any](ctx context.Context, conn transport.Conn, req *wire.HandshakeRequest[A, G]) (*wire.ResponseSuccess, error) {
	return PerformLogged[A, AE, G, GE](ctx, conn, req, nil)
}

// PerformLogged is Perform with protocol events sent to protoLog.
func PerformLogged[A, AE, G, GE any](ctx context.Context, conn transport.Conn, req *wire.HandshakeRequest[A, G], protoLog log.Logger) (*wire.ResponseSuccess, error) {
	start := time.Now()
	clog := log.NewConnLogger(log.OrNoop(protoLog), log.RoleGameClient, conn.ID(), conn.RemoteAddr(), nil).
		WithPeer(peerName(conn))

	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if len(data) > MaxRequestSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrRequestTooLarge, len(data))
	}

	stream, err := conn.OpenStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(dl)
	}

	if _, err := stream.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	clog.Message(log.DirectionOut, &log.MessageEvent{
		Type:          log.MessageTypeRequest,
		Size:          len(data),
		ProtoVersion:  version.Version{Major: req.ProtoVersionMajor, Minor: req.ProtoVersionMinor}.String(),
		ClientVersion: version.Version{Major: req.ClientVersionMajor, Minor: req.ClientVersionMinor}.String(),
		DisplayName:   req.DisplayName,
	})

	raw, err := readMessage(stream, MaxResponseSize, ErrResponseTooLarge)
	if err != nil {
		clog.Error(log.LayerWire, err, nil, "read response")
		return nil, err
	}

	resp, err := wire.DecodeResponse[AE, GE](raw)
	if err != nil {
		clog.Error(log.LayerWire, err, nil, "decode response")
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	elapsed := time.Since(start)
	clog.Message(log.DirectionIn, &log.MessageEvent{
		Type:           log.MessageTypeResponse,
		Size:           len(raw),
		Result:         resultTag(resp),
		Detail:         resultDetail(resp),
		ProcessingTime: &elapsed,
	})

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefused, resp.Error)
	}
	return resp.Success, nil
}
