package grpc

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/bft-labs/logship/internal/domain"
)

// Field numbers of org.apache.beam.model.fn_execution.v1.LogEntry.
const (
	fieldSeverity      protowire.Number = 1
	fieldTimestamp     protowire.Number = 2
	fieldMessage       protowire.Number = 3
	fieldTrace         protowire.Number = 4
	fieldInstructionID protowire.Number = 5
	fieldLogLocation   protowire.Number = 7
	fieldThread        protowire.Number = 8
	fieldCustomData    protowire.Number = 9

	// LogEntry.List.log_entries
	fieldLogEntries protowire.Number = 1
)

var deterministic = proto.MarshalOptions{Deterministic: true}

// entryList is the client-to-collector message, LogEntry.List.
type entryList struct {
	entries []domain.LogEntry
}

// controlMessage is the collector-to-client message, LogControl. It has no
// fields; anything received is kept to detect protocol anomalies.
type controlMessage struct {
	unknown []byte
}

// Codec marshals the logging service messages with the protobuf wire format.
// It registers under the name "proto" so peers using generated code
// interoperate.
type Codec struct{}

// Name implements encoding.Codec.
func (Codec) Name() string { return "proto" }

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case *entryList:
		return EncodeEntryList(m.entries)
	case *controlMessage:
		return append([]byte(nil), m.unknown...), nil
	default:
		return nil, fmt.Errorf("logging codec: cannot marshal %T", v)
	}
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *entryList:
		entries, err := DecodeEntryList(data)
		if err != nil {
			return err
		}
		m.entries = entries
		return nil
	case *controlMessage:
		m.unknown = append(m.unknown[:0], data...)
		return nil
	default:
		return fmt.Errorf("logging codec: cannot unmarshal into %T", v)
	}
}

// EncodeEntryList serializes entries as one LogEntry.List message.
func EncodeEntryList(entries []domain.LogEntry) ([]byte, error) {
	var b []byte
	for i := range entries {
		entry, err := EncodeEntry(entries[i])
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldLogEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

// EncodeEntry serializes one LogEntry. Fields are written in field number
// order and empty optional fields are omitted.
func EncodeEntry(e domain.LogEntry) ([]byte, error) {
	var b []byte

	if e.Severity != domain.SeverityUnspecified {
		b = protowire.AppendTag(b, fieldSeverity, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.Severity))
	}

	ts, err := deterministic.Marshal(&timestamppb.Timestamp{Seconds: e.Seconds, Nanos: e.Nanos})
	if err != nil {
		return nil, fmt.Errorf("encode timestamp: %w", err)
	}
	b = protowire.AppendTag(b, fieldTimestamp, protowire.BytesType)
	b = protowire.AppendBytes(b, ts)

	b = appendString(b, fieldMessage, e.Message)
	b = appendString(b, fieldTrace, e.Trace)
	b = appendString(b, fieldInstructionID, e.InstructionID)
	b = appendString(b, fieldLogLocation, e.LogLocation)
	b = appendString(b, fieldThread, e.Thread)

	if len(e.CustomData) > 0 {
		fields := make(map[string]*structpb.Value, len(e.CustomData))
		for k, v := range e.CustomData {
			fields[k] = structpb.NewStringValue(v)
		}
		data, err := deterministic.Marshal(&structpb.Struct{Fields: fields})
		if err != nil {
			return nil, fmt.Errorf("encode custom data: %w", err)
		}
		b = protowire.AppendTag(b, fieldCustomData, protowire.BytesType)
		b = protowire.AppendBytes(b, data)
	}

	return b, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// DecodeEntryList parses a LogEntry.List message. Unknown fields are skipped.
func DecodeEntryList(data []byte) ([]domain.LogEntry, error) {
	var entries []domain.LogEntry
	err := walk(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldLogEntries || typ != protowire.BytesType {
			return nil
		}
		e, err := DecodeEntry(v)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// DecodeEntry parses one LogEntry message. Unknown fields are skipped.
func DecodeEntry(data []byte) (domain.LogEntry, error) {
	var e domain.LogEntry
	err := walk(data, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == fieldSeverity && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return protowire.ParseError(n)
			}
			e.Severity = domain.Severity(int32(x))
		case num == fieldTimestamp && typ == protowire.BytesType:
			var ts timestamppb.Timestamp
			if err := proto.Unmarshal(v, &ts); err != nil {
				return fmt.Errorf("decode timestamp: %w", err)
			}
			e.Seconds, e.Nanos = ts.GetSeconds(), ts.GetNanos()
		case typ == protowire.BytesType && isStringField(num):
			setString(&e, num, string(v))
		case num == fieldCustomData && typ == protowire.BytesType:
			var s structpb.Struct
			if err := proto.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("decode custom data: %w", err)
			}
			e.CustomData = structToStrings(&s)
		}
		return nil
	})
	return e, err
}

func isStringField(num protowire.Number) bool {
	switch num {
	case fieldMessage, fieldTrace, fieldInstructionID, fieldLogLocation, fieldThread:
		return true
	}
	return false
}

func setString(e *domain.LogEntry, num protowire.Number, s string) {
	switch num {
	case fieldMessage:
		e.Message = s
	case fieldTrace:
		e.Trace = s
	case fieldInstructionID:
		e.InstructionID = s
	case fieldLogLocation:
		e.LogLocation = s
	case fieldThread:
		e.Thread = s
	}
}

func structToStrings(s *structpb.Struct) map[string]string {
	if len(s.GetFields()) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.GetFields()))
	for k := range s.GetFields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v := s.GetFields()[k]
		if sv, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out[k] = sv.StringValue
			continue
		}
		out[k] = fmt.Sprint(v.AsInterface())
	}
	return out
}

// walk calls fn for every field in data. For bytes fields v is the payload;
// for other types v holds the raw value encoding.
func walk(data []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		var v []byte
		if typ == protowire.BytesType {
			payload, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			v, n = payload, m
		} else {
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			v, n = data[:m], m
		}

		if err := fn(num, typ, v); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
