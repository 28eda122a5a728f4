// Package klf200 implements the framed request/response/notification
// protocol a KLF 200 gateway speaks: SLIP framing, the wire frame codec,
// the command registry, the session table and dispatcher that correlate
// confirmations and notifications back to the requests that spawned them,
// and the TLS connection lifecycle that authenticates to the gateway.
package klf200
