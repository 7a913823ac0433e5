// Package encoding renders scored artifacts as NDJSON: one self-contained
// JSON object per line, appendable and streamable, so callers can process
// artifacts one at a time without buffering a batch.
package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// Record is the output row for one scored artifact.
type Record struct {
	Name            string
	Category        types.Category
	Results         []metrics.Result
	NetScore        float64
	NetScoreLatency int64
}

// MarshalLine renders the record as a single JSON line with a stable key
// order: name, category, then value/latency pairs per metric in result
// order, then net_score and net_score_latency. encoding/json sorts map
// keys, so map-valued metrics are deterministic too.
func (r Record) MarshalLine() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeField(&buf, "name", r.Name, false); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "category", r.Category, true); err != nil {
		return nil, err
	}

	for _, res := range r.Results {
		var value any = res.Value
		if res.ByDevice != nil {
			value = res.ByDevice
		}
		if err := writeField(&buf, res.Name, value, true); err != nil {
			return nil, err
		}
		if err := writeField(&buf, res.Name+"_latency", res.LatencyMS, true); err != nil {
			return nil, err
		}
	}

	if err := writeField(&buf, "net_score", r.NetScore, true); err != nil {
		return nil, err
	}
	if err := writeField(&buf, "net_score_latency", r.NetScoreLatency, true); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value any, comma bool) error {
	if comma {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode field %s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// Encoder appends records to a stream, one line each.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one record followed by a newline.
func (e *Encoder) Encode(r Record) error {
	line, err := r.MarshalLine()
	if err != nil {
		return err
	}
	line = append(line, '\n')
	if _, err := e.w.Write(line); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
