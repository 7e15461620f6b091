package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/internal/domain/record"
	"github.com/Azure-Samples/media-services-javascript-azure-media-player-diagnostic-logger-plugin/pkg/logger"
)

// Output formats accepted by EncoderFor.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatPretty  = "pretty"
)

// Encoder writes one record to w.
type Encoder interface {
	Encode(w io.Writer, rec record.Record) error
}

// EncoderFor resolves an output format name.
func EncoderFor(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return JSONEncoder{}, nil
	case FormatMsgpack:
		return MsgpackEncoder{}, nil
	case FormatPretty:
		return PrettyEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// JSONEncoder writes one JSON object per line.
type JSONEncoder struct{}

// Encode implements Encoder.
func (JSONEncoder) Encode(w io.Writer, rec record.Record) error {
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// MsgpackEncoder writes records as a msgpack stream.
type MsgpackEncoder struct{}

// Encode implements Encoder.
func (MsgpackEncoder) Encode(w io.Writer, rec record.Record) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

var (
	errorLevelColor = color.New(color.FgRed, color.Bold)
	infoLevelColor  = color.New(color.FgGreen)
	keyColor        = color.New(color.Faint)
)

// PrettyEncoder writes one human-readable line per record.
type PrettyEncoder struct{}

// Encode implements Encoder.
func (PrettyEncoder) Encode(w io.Writer, rec record.Record) error {
	var b strings.Builder
	lvl := infoLevelColor.Sprint("INFO ")
	if rec.Level == record.LevelError {
		lvl = errorLevelColor.Sprint("ERROR")
	}
	b.WriteString(lvl)
	b.WriteByte(' ')
	b.WriteString(string(rec.EventID))
	writeFields(&b, "", rec.Data)
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

func writeFields(b *strings.Builder, prefix string, data record.Data) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nested, ok := data[k].(record.Data); ok {
			writeFields(b, prefix+k+".", nested)
			continue
		}
		fmt.Fprintf(b, " %s=%v", keyColor.Sprint(prefix+k), data[k])
	}
}

// Writer returns a callback encoding each record to w. Encode failures are
// logged through l and do not reach the caller.
func Writer(w io.Writer, enc Encoder, l logger.Logger) Callback {
	if enc == nil {
		enc = JSONEncoder{}
	}
	return func(rec record.Record) {
		if err := enc.Encode(w, rec); err != nil && l != nil {
			l.Error(context.Background(), "failed to write diagnostic record",
				logger.String("eventId", string(rec.EventID)),
				logger.Error(err),
			)
		}
	}
}
