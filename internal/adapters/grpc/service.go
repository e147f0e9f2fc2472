package grpc

import (
	"google.golang.org/grpc"

	"github.com/bft-labs/logship/internal/domain"
)

const (
	// ServiceName is the fully qualified logging service name.
	ServiceName = "org.apache.beam.model.fn_execution.v1.BeamFnLogging"

	// LoggingMethod is the full method name of the logging stream.
	LoggingMethod = "/" + ServiceName + "/Logging"
)

// LoggingServer is implemented by collectors.
type LoggingServer interface {
	Logging(*ServerStream) error
}

// ServerStream is the collector side of one logging stream.
type ServerStream struct {
	grpc.ServerStream
}

// Recv returns the next batch, or io.EOF once the client completed.
func (s *ServerStream) Recv() ([]domain.LogEntry, error) {
	var m entryList
	if err := s.RecvMsg(&m); err != nil {
		return nil, err
	}
	return m.entries, nil
}

// SendControl sends a LogControl message. raw is written as the message
// body; it is empty for a well-formed control message.
func (s *ServerStream) SendControl(raw []byte) error {
	return s.SendMsg(&controlMessage{unknown: raw})
}

var loggingStreamDesc = grpc.StreamDesc{
	StreamName:    "Logging",
	Handler:       loggingHandler,
	ServerStreams: true,
	ClientStreams: true,
}

// ServiceDesc describes the logging service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LoggingServer)(nil),
	Streams:     []grpc.StreamDesc{loggingStreamDesc},
	Metadata:    "beam_fn_api.proto",
}

func loggingHandler(srv any, stream grpc.ServerStream) error {
	return srv.(LoggingServer).Logging(&ServerStream{ServerStream: stream})
}

// RegisterLoggingServer registers srv on s. The server must be created with
// ServerOptions so the logging codec is used.
func RegisterLoggingServer(s grpc.ServiceRegistrar, srv LoggingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServerOptions returns the options a grpc.Server needs to serve the logging
// service.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{grpc.ForceServerCodec(Codec{})}
}
