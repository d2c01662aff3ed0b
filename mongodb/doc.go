// Package mongodb holds the per-connection MongoDB objects a slot is built
// from: connection details, client settings and factory, database factory,
// conversions, mapping, templates, transactions and GridFS, in a blocking
// and a streaming flavor.
//
// Nothing in this package touches the network until an operation runs:
// mongo.Connect is lazy, so a whole slot can be assembled without a server.
package mongodb
