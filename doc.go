// The [surrealengine] package is an Object-Document Mapper for SurrealDB,
// layered on top of the official Go SDK.
//
// # Models
//
// Models are plain Go structs implementing [Model]. Field metadata for
// schema generation is declared through `surreal` struct tags, and documents
// are serialized with the SDK's CBOR codec, so the SDK's native data types
// (record IDs, durations, geometries, ranges) pass through untouched.
//
// # Queries
//
// Queries are composed through the chainable [QuerySet] and the
// [github.com/iristech-systems/surrealengine/ql] condition and statement
// builders. A QuerySet accumulates filters, ordering and pagination state
// fluently; translation to SurrealQL happens only at execution time, and
// every user value is bound to a query parameter.
//
// # Connections
//
// [Connect] dials SurrealDB over WebSocket or HTTP depending on the endpoint
// URL scheme, optionally through the SDK's auto-reconnecting connection.
// Engines can be registered under names in a process-wide registry, and
// [Pool] maintains a fixed-capacity pool of independent connections.
//
// # Live queries
//
// [QuerySet.Live] starts a LIVE SELECT subscription and returns a
// [Subscription] whose event channel survives reconnection: the server-side
// live query UUID may change when the subscription is re-established, but
// the channel handed to the consumer does not.
package surrealengine
