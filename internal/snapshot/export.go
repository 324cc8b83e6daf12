// Package snapshot encodes graph snapshots and delivers them to files, S3
// buckets and git repositories, once or on a schedule.
package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alfredjeanlab/hypergraph/internal/hypergraph"
	"github.com/alfredjeanlab/hypergraph/internal/model"
)

// FormatVersion is written to every JSONL header.
const FormatVersion = "1"

// ErrDigestMismatch indicates a JSONL export whose records do not hash to the
// digest recorded in its header.
var ErrDigestMismatch = errors.New("snapshot digest mismatch")

// now is replaced in tests.
var now = time.Now

// Source produces snapshots to export.
type Source interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// GraphSource adapts a graph that is not shared with other goroutines.
type GraphSource struct {
	Graph *hypergraph.Graph
}

func (s GraphSource) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Graph.ToJSON()
}

// Format selects the encoding of an export.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatJSONL:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (must be json or jsonl)", s)
}

// FormatFromPath picks json for a .json path and jsonl for anything else.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatJSONL
}

// ContentType returns the media type of the encoding.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/x-ndjson"
}

// Header is the first JSONL record written by WriteJSONL.
type Header struct {
	Version   string         `json:"version"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Graph     string         `json:"graph"`
	Label     string         `json:"label"`
	GraphType string         `json:"graph_type"`
	Directed  bool           `json:"directed"`
	Metadata  model.Metadata `json:"metadata"`
	NodeCount int            `json:"node_count"`
	EdgeCount int            `json:"edge_count"`
	Digest    string         `json:"digest"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WriteJSON writes the snapshot document. A non-empty indent pretty-prints it.
func WriteJSON(w io.Writer, snap *model.Snapshot, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// WriteJSONL writes a header line followed by one node record per node and
// one edge record per edge, in insertion order.
func WriteJSONL(w io.Writer, snap *model.Snapshot) error {
	digest, err := Digest(snap)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(Header{
		Version:   FormatVersion,
		Type:      "header",
		Timestamp: now().UTC(),
		Graph:     snap.ID,
		Label:     snap.Label,
		GraphType: snap.Type,
		Directed:  snap.Directed,
		Metadata:  snap.Metadata,
		NodeCount: len(snap.Nodes),
		EdgeCount: len(snap.Hyperedges),
		Digest:    digest,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, n := range snap.Nodes {
		if err := encodeRecord(enc, "node", n); err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
	}
	for _, e := range snap.Hyperedges {
		if err := encodeRecord(enc, "edge", e); err != nil {
			return fmt.Errorf("encode edge %s: %w", e.ID, err)
		}
	}
	return nil
}

func encodeRecord(enc *json.Encoder, typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return enc.Encode(record{Type: typ, Data: data})
}

// ReadJSONL parses a WriteJSONL export and checks its counts and digest.
func ReadJSONL(r io.Reader) (*model.Snapshot, *Header, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		h    *Header
		snap = &model.Snapshot{}
		line int
	)
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		if h == nil {
			h = &Header{}
			if err := json.Unmarshal(raw, h); err != nil {
				return nil, nil, fmt.Errorf("line %d: decode header: %w", line, err)
			}
			if h.Type != "header" || h.Version != FormatVersion {
				return nil, nil, fmt.Errorf("line %d: expected version %s header, got type %q version %q", line, FormatVersion, h.Type, h.Version)
			}
			continue
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		switch rec.Type {
		case "node":
			var n model.Node
			if err := json.Unmarshal(rec.Data, &n); err != nil {
				return nil, nil, fmt.Errorf("line %d: decode node: %w", line, err)
			}
			snap.Nodes = append(snap.Nodes, &n)
		case "edge":
			var e model.Hyperedge
			if err := json.Unmarshal(rec.Data, &e); err != nil {
				return nil, nil, fmt.Errorf("line %d: decode edge: %w", line, err)
			}
			snap.Hyperedges = append(snap.Hyperedges, &e)
		default:
			return nil, nil, fmt.Errorf("line %d: unknown record type %q", line, rec.Type)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}
	if h == nil {
		return nil, nil, errors.New("empty export: missing header")
	}

	snap.ID = h.Graph
	snap.Label = h.Label
	snap.Type = h.GraphType
	snap.Directed = h.Directed
	snap.Metadata = h.Metadata

	if len(snap.Nodes) != h.NodeCount || len(snap.Hyperedges) != h.EdgeCount {
		return nil, nil, fmt.Errorf("header counts %d/%d, read %d nodes and %d edges", h.NodeCount, h.EdgeCount, len(snap.Nodes), len(snap.Hyperedges))
	}
	digest, err := Digest(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("digest: %w", err)
	}
	if digest != h.Digest {
		return nil, nil, fmt.Errorf("%w: header %s, content %s", ErrDigestMismatch, h.Digest, digest)
	}
	return snap, h, nil
}

// Export encodes the current snapshot of src.
func Export(ctx context.Context, src Source, format Format) ([]byte, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return Encode(snap, format)
}

// Encode renders snap in the given format.
func Encode(snap *model.Snapshot, format Format) ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)
	switch format {
	case FormatJSON:
		err = WriteJSON(&buf, snap, "")
	case FormatJSONL:
		err = WriteJSONL(&buf, snap)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
