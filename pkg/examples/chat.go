package examples

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/iyes-games/mpauth/pkg/verify"
	"github.com/iyes-games/mpauth/pkg/version"
	"github.com/iyes-games/mpauth/pkg/wire"
)

// DefaultSecretWord is the word accepted by a zero SecretWordVerifier.
const DefaultSecretWord = "friends"

// ChatClientVersion is the build version reported by the chat client.
var ChatClientVersion = version.Version{Major: 0, Minor: 1}

// ChatLogin is the account data of the chat game.
type ChatLogin struct {
	SecretWord string `cbor:"1,keyasint"`
}

// ChatExtras is the extras payload of the chat game.
type ChatExtras struct {
	AllowNSFW bool `cbor:"1,keyasint"`
}

// ChatExtrasError is returned to clients whose extras were refused.
type ChatExtrasError struct {
	Reason string `cbor:"1,keyasint"`
}

// String returns the reason.
func (e ChatExtrasError) String() string {
	return e.Reason
}

// Chat type aliases, for readability at call sites.
type (
	ChatRequest  = wire.HandshakeRequest[ChatLogin, ChatExtras]
	ChatResponse = wire.HandshakeResponse[wire.Never, ChatExtrasError]
	ChatRefusal  = wire.ResponseError[wire.Never, ChatExtrasError]
)

// NewChatRequest builds a handshake request for the chat game using the
// current protocol version.
func NewChatRequest(displayName, secretWord string, allowNSFW bool) *ChatRequest {
	proto := version.MustParse(version.Current)
	return &ChatRequest{
		ProtoVersionMajor:  proto.Major,
		ProtoVersionMinor:  proto.Minor,
		ClientVersionMajor: ChatClientVersion.Major,
		ClientVersionMinor: ChatClientVersion.Minor,
		DisplayName:        displayName,
		AccountData:        ChatLogin{SecretWord: secretWord},
		GameExtras:         ChatExtras{AllowNSFW: allowNSFW},
	}
}

// SecretWordVerifier accepts exactly one secret word and refuses everything
// else with BadCredentials.
type SecretWordVerifier struct {
	// Word is the accepted word. Empty means DefaultSecretWord.
	Word string

	attempts atomic.Uint64
	failures atomic.Uint64
}

// Verify implements verify.AccountVerifier.
func (v *SecretWordVerifier) Verify(_ context.Context, login ChatLogin) (*wire.AccountError[wire.Never], error) {
	v.attempts.Add(1)
	word := v.Word
	if word == "" {
		word = DefaultSecretWord
	}
	if login.SecretWord != word {
		v.failures.Add(1)
		return wire.NewAccountError[wire.Never](wire.BadCredentials), nil
	}
	return nil, nil
}

// Stats returns the number of verified requests and how many were refused.
func (v *SecretWordVerifier) Stats() (attempts, failures uint64) {
	return v.attempts.Load(), v.failures.Load()
}

// NSFWPolicy logs the NSFW preference of each client and optionally refuses
// clients asking for NSFW content.
type NSFWPolicy struct {
	Logger *slog.Logger

	// RefuseNSFW refuses clients with AllowNSFW set.
	RefuseNSFW bool

	nsfw atomic.Uint64
}

// Process implements verify.GameExtrasHandler.
func (p *NSFWPolicy) Process(_ context.Context, extras ChatExtras) (*ChatExtrasError, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Client NSFW preference", "allow_nsfw", extras.AllowNSFW)

	if !extras.AllowNSFW {
		return nil, nil
	}
	p.nsfw.Add(1)
	if p.RefuseNSFW {
		return &ChatExtrasError{Reason: "NSFW content is disabled on this server"}, nil
	}
	return nil, nil
}

// NSFWCount returns how many clients asked for NSFW content.
func (p *NSFWPolicy) NSFWCount() uint64 {
	return p.nsfw.Load()
}

// Describe returns a one-line description of a chat handshake response.
func Describe(resp *wire.ResponseSuccess, err error) string {
	if err != nil {
		return fmt.Sprintf("refused: %v", err)
	}
	if resp == nil {
		return "no response"
	}
	return resp.Kind.String()
}

var (
	_ verify.AccountVerifier[ChatLogin, wire.Never]          = (*SecretWordVerifier)(nil)
	_ verify.GameExtrasHandler[ChatExtras, ChatExtrasError] = (*NSFWPolicy)(nil)
)
