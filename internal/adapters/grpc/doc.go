// Package grpc is the duplex transport between a logship client and a log
// collector: the BeamFnLogging/Logging bidirectional stream.
//
// Messages are encoded with a hand-written protobuf codec that produces the
// same bytes as generated code, so either side can talk to peers built from
// the original protocol definitions.
package grpc
