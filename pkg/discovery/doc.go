// Package discovery implements optional mDNS/DNS-SD advertisement of an Auth
// server's client-facing endpoints, so game clients on the same LAN can find
// a server without configuration.
//
// # Service type (_iyesmp-auth._udp)
//
// One instance is registered per client-facing port. The instance name is
// chosen by the operator (defaults to the host name).
// TXT records include: sn (TLS server name the client must verify),
// pv (handshake protocol version "major.minor"), and optionally rg (region).
//
// Discovery only tells a client where to connect. Trust is still established
// by the mutual-TLS handshake.
package discovery
