package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

type testAccount struct {
	Secret string `cbor:"1,keyasint"`
}

type testExtras struct {
	AllowNSFW bool `cbor:"1,keyasint"`
}

type testExtrasError struct {
	Reason string `cbor:"1,keyasint"`
}

func TestRequestRoundTrip(t *testing.T) {
	req := &HandshakeRequest[testAccount, testExtras]{
		ProtoVersionMajor:  1,
		ProtoVersionMinor:  0,
		ClientVersionMajor: 0,
		ClientVersionMinor: 3,
		DisplayName:        "Name",
		AccountData:        testAccount{Secret: "friends"},
		GameExtras:         testExtras{AllowNSFW: true},
	}

	data, err := EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	decoded, err := DecodeRequest[testAccount, testExtras](data)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if *decoded != *req {
		t.Errorf("decoded = %+v, want %+v", decoded, req)
	}
}

func TestRequestUsesIntegerKeys(t *testing.T) {
	req := &HandshakeRequest[Never, Never]{ProtoVersionMajor: 1, DisplayName: "x"}
	data, err := EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	var raw map[any]any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		t.Fatalf("generic decode failed: %v", err)
	}
	for k := range raw {
		if _, ok := k.(uint64); !ok {
			t.Errorf("key %v (%T) is not an integer", k, k)
		}
	}
	if raw[uint64(5)] != "x" {
		t.Errorf("display name at key 5 = %v, want x", raw[uint64(5)])
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff, 0x00, 0x13}},
		{"truncated map", []byte{0xa7, 0x01}},
		{"wrong type", []byte{0x63, 'a', 'b', 'c'}},
		{"duplicate key", []byte{0xa2, 0x01, 0x01, 0x01, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest[testAccount, testExtras](tt.data)
			if !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("DecodeRequest error = %v, want ErrInvalidMessage", err)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp *HandshakeResponse[Never, testExtrasError]
	}{
		{"welcome", Ok[Never, testExtrasError](Welcome())},
		{"hand off", Ok[Never, testExtrasError](HandOff(&HandOffData{
			SessionID:          7,
			ClientSessionNonce: 42,
			HostAddr:           "192.0.2.1:4433",
			HostName:           "host1.iyes.games",
			SessionCert:        []byte{1, 2, 3},
			SessionKey:         []byte{4, 5, 6},
		}))},
		{"too old", Fail(TooOld[Never, testExtrasError]())},
		{"too new", Fail(TooNew[Never, testExtrasError]())},
		{"bad credentials", Fail(AccountFailure[Never, testExtrasError](*NewAccountError[Never](BadCredentials)))},
		{"banned", Fail(AccountFailure[Never, testExtrasError](*NewAccountError[Never](Banned)))},
		{"extras", Fail(GameExtrasFailure[Never](testExtrasError{Reason: "nope"}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeResponse(tt.resp)
			if err != nil {
				t.Fatalf("EncodeResponse failed: %v", err)
			}

			decoded, err := DecodeResponse[Never, testExtrasError](data)
			if err != nil {
				t.Fatalf("DecodeResponse failed: %v", err)
			}

			again, err := EncodeResponse(decoded)
			if err != nil {
				t.Fatalf("re-encode failed: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Errorf("re-encoded bytes differ:\n got %x\nwant %x", again, data)
			}
		})
	}
}

func TestResponseOtherAccountError(t *testing.T) {
	resp := Fail(AccountFailure[testExtrasError, Never](*OtherAccount(testExtrasError{Reason: "quota"})))
	data, err := EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}

	decoded, err := DecodeResponse[testExtrasError, Never](data)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	_, rerr := decoded.Result()
	var respErr *ResponseError[testExtrasError, Never]
	if !errors.As(rerr, &respErr) {
		t.Fatalf("Result error = %v, want *ResponseError", rerr)
	}
	if respErr.Account.Other == nil || respErr.Account.Other.Reason != "quota" {
		t.Errorf("Other = %+v, want quota", respErr.Account.Other)
	}
}

func TestNeverPayloadRejected(t *testing.T) {
	// An Account/Other error whose payload is an integer cannot be decoded
	// when the game declares Never as its account error type.
	data, err := Marshal(map[int]any{
		2: map[int]any{
			1: uint8(AccountRejected),
			2: map[int]any{1: uint8(OtherAccountError), 2: 5},
		},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	_, err = DecodeResponse[Never, Never](data)
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("DecodeResponse error = %v, want ErrInvalidMessage", err)
	}
}

func TestEncodeResponseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		resp *HandshakeResponse[Never, Never]
	}{
		{"empty", &HandshakeResponse[Never, Never]{}},
		{"both arms", &HandshakeResponse[Never, Never]{Success: Welcome(), Error: TooOld[Never, Never]()}},
		{"hand off without data", Ok[Never, Never](&ResponseSuccess{Kind: HandOffNow})},
		{"welcome with data", Ok[Never, Never](&ResponseSuccess{Kind: AuthWelcome, HandOff: &HandOffData{}})},
		{"unknown success", Ok[Never, Never](&ResponseSuccess{Kind: 9})},
		{"account without payload", Fail(&ResponseError[Never, Never]{Kind: AccountRejected})},
		{"other without payload", Fail(AccountFailure[Never, Never](AccountError[Never]{Kind: OtherAccountError}))},
		{"unknown error", Fail(&ResponseError[Never, Never]{Kind: 42})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeResponse(tt.resp)
			if !errors.Is(err, ErrEncode) {
				t.Errorf("EncodeResponse error = %v, want ErrEncode", err)
			}
		})
	}
}

func TestDecodeResponseRejectsInvalid(t *testing.T) {
	data, err := Marshal(map[int]any{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeResponse[Never, Never](data); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("DecodeResponse error = %v, want ErrInvalidMessage", err)
	}
}

func TestResultSplitsArms(t *testing.T) {
	ok, err := Ok[Never, Never](Welcome()).Result()
	if err != nil || ok.Kind != AuthWelcome {
		t.Errorf("Result() = %v, %v, want AuthWelcome", ok, err)
	}

	s, err := Fail(TooOld[Never, Never]()).Result()
	if s != nil || err == nil {
		t.Fatalf("Result() = %v, %v, want error", s, err)
	}
	if err.Error() != "unsupported version: too old, please update the client" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestAccountErrorMessages(t *testing.T) {
	tests := []struct {
		err  *AccountError[string]
		want string
	}{
		{NewAccountError[string](NoSuchAccount), "account does not exist"},
		{NewAccountError[string](BadCredentials), "wrong credentials"},
		{NewAccountError[string](Banned), "banned from multiplayer services"},
		{OtherAccount("quota exceeded"), "other error: quota exceeded"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestMatchmakingMessages(t *testing.T) {
	data, err := Marshal(&ClientMsg{Kind: SearchSession})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var msg ClientMsg
	if err := Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if msg.Kind != SearchSession {
		t.Errorf("Kind = %d, want SearchSession", msg.Kind)
	}

	kick := &AuthMsg{Kind: Kick, KickFor: 90_000_000_000}
	data, err = Marshal(kick)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var auth AuthMsg
	if err := Unmarshal(data, &auth); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if auth.Kind != Kick || auth.KickFor != kick.KickFor {
		t.Errorf("decoded = %+v, want %+v", auth, kick)
	}
}
