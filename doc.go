/*Package bolt implements a client for version 5.1 of the Bolt
graph database protocol.

The driver speaks the authenticated handshake introduced in 5.1:
after version negotiation the client sends HELLO to introduce
itself and LOGON to authenticate, and the two are pipelined so a
fresh connection costs a single round trip.  LOGOFF returns an
authenticated connection to the unauthenticated state, which makes
credential rotation possible without tearing connections down.

The interface is built around pipelining.  Operations like Run,
Begin, Pull and Discard only queue messages; nothing touches the
network until SendAll, and responses are drained with FetchOne or
FetchAll.  Bolt carries no correlation identifiers - responses
arrive strictly in request order - so the driver maintains the
request/response pairing internally and a single desynchronized
message renders the connection defunct and unusable.

Results of queries come back as the proper go-specific types where
one exists.  All integer widths decode to int64 regardless of how
many bytes the server chose to encode them with.  Maps are always
map[string]interface{} and lists are always []interface{}.

Connections are not safe for concurrent use.  The Pool type hands
out connections safely across goroutines, refusing to reuse any
connection that has gone stale or suffered an unrecoverable error.

Authentication tokens carry secrets.  The driver writes credentials
to the wire as the protocol demands, but every printable
representation and every log line masks them.
*/
package bolt
