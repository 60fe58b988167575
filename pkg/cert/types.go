// Package cert holds the certificate material of the iyes multiplayer trust
// hierarchy and loads it from disk.
//
// All material is kept as raw DER. A single Master CA signs the AuthSrv leaf
// and three intermediates:
//
//	Master ─┬─ AuthSrv      (Auth server identity)
//	        ├─ HostAuth     (signs Host server identities)
//	        ├─ ClientAuth   (signs game client identities)
//	        └─ SessionAuth  (signs short-lived hand-off certificates)
package cert

// Fixed file names used by the directory loaders.
const (
	MasterCertFile      = "master.cert.der"
	HostAuthCertFile    = "hostauth.cert.der"
	ClientAuthCertFile  = "clientauth.cert.der"
	SessionAuthCertFile = "sessionauth.cert.der"
	SessionAuthKeyFile  = "sessionauth.key.der"
	AuthSrvCertFile     = "authsrv.cert.der"
	AuthSrvKeyFile      = "authsrv.key.der"
	ClientCertFile      = "client.cert.der"
	ClientKeyFile       = "client.key.der"
)

// ServerCertificates are the certificates and keys the Auth server needs.
type ServerCertificates struct {
	// Master is the root of trust, signer of AuthSrv and every intermediate.
	Master []byte

	// ClientAuth verifies incoming connections from game clients.
	ClientAuth []byte

	// HostAuth verifies incoming connections from Host servers.
	HostAuth []byte

	// AuthSrvCert is presented to both kinds of peers.
	AuthSrvCert []byte
	AuthSrvKey  []byte

	// SessionAuth signs session certificates for hand-off.
	SessionAuthCert []byte
	SessionAuthKey  []byte
}

// ClientCertificates are the certificates and keys a game client needs.
type ClientCertificates struct {
	// Master verifies the Auth and Host servers.
	Master []byte

	// ClientAuth is the signer of Cert, sent as part of the chain.
	ClientAuth []byte

	Cert []byte
	Key  []byte
}
