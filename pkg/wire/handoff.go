package wire

// HandOffData is the ticket a client needs to perform a hand-off
// (connect to a Host server with a short-lived session certificate).
//
// CBOR encoding:
//
//	{
//	  1: sessionId,           // uint64
//	  2: clientSessionNonce,  // uint64
//	  3: hostAddr,            // "ip:port"
//	  4: hostName,            // text, expected TLS server name of the Host
//	  5: sessionCert,         // DER, signed by SessionAuth
//	  6: sessionKey           // DER
//	}
type HandOffData struct {
	SessionID          uint64 `cbor:"1,keyasint"`
	ClientSessionNonce uint64 `cbor:"2,keyasint"`
	HostAddr           string `cbor:"3,keyasint"`
	HostName           string `cbor:"4,keyasint"`
	SessionCert        []byte `cbor:"5,keyasint"`
	SessionKey         []byte `cbor:"6,keyasint"`
}
