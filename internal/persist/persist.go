// Package persist implements the canonical binary encoding of a graph and
// its read/write through a zstd-compressed file, the project's single
// on-disk artifact.
package persist

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/codegraph-dev/codegraph/internal/graph"
	"github.com/codegraph-dev/codegraph/internal/model"
	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

var magic = [4]byte{'C', 'G', 'R', '1'}

// Version is the current binary format version.
const Version uint16 = 1

// LanguageEnumVersion bumps whenever the model.Language enum's ordinal
// assignment changes, forcing old index files to be treated as stale.
const LanguageEnumVersion uint16 = 1

// Encode writes the canonical binary encoding of g to w, uncompressed.
// The layout is exactly: magic, version, language_enum_version, node
// count + nodes, edge count + edges (§4.4).
func Encode(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := writeU16(bw, Version); err != nil {
		return err
	}
	if err := writeU16(bw, LanguageEnumVersion); err != nil {
		return err
	}

	nodes := g.Nodes()
	if err := writeU32(bw, uint32(len(nodes))); err != nil {
		return err
	}
	for _, s := range nodes {
		if err := encodeSymbol(bw, s); err != nil {
			return err
		}
	}

	edges := g.Edges()
	if err := writeU32(bw, uint32(len(edges))); err != nil {
		return err
	}
	for _, r := range edges {
		if err := encodeRelation(bw, r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeSymbol(w *bufio.Writer, s model.Symbol) error {
	if err := writeString(w, s.Name); err != nil {
		return err
	}
	if err := writeString(w, s.File); err != nil {
		return err
	}
	if err := writeU32(w, uint32(s.Line)); err != nil {
		return err
	}
	if err := w.WriteByte(byte(s.Kind)); err != nil {
		return err
	}
	if err := w.WriteByte(byte(s.Language)); err != nil {
		return err
	}
	if err := w.WriteByte(byte(s.Visibility)); err != nil {
		return err
	}
	if err := writeString(w, s.Signature); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, int64(s.Parent))
}

func encodeRelation(w *bufio.Writer, r model.Relation) error {
	if err := writeU32(w, uint32(r.Source)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(r.Target)); err != nil {
		return err
	}
	if err := w.WriteByte(byte(r.Kind)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, r.Confidence); err != nil {
		return err
	}
	return writeU32(w, uint32(r.Line))
}

// Decode reads and validates the canonical encoding from r, rejecting
// unknown magic, unsupported version, or truncated/inconsistent counts
// with a *cgerr.Error of kind CorruptIndex (§4.4, §7).
func Decode(r io.Reader) (*graph.Graph, error) {
	br := bufio.NewReader(r)

	var gotMagic [4]byte
	if _, err := io.ReadFull(br, gotMagic[:]); err != nil {
		return nil, cgerr.CorruptIndex(fmt.Errorf("reading magic: %w", err))
	}
	if gotMagic != magic {
		return nil, cgerr.CorruptIndex(fmt.Errorf("unknown magic %q", gotMagic))
	}

	version, err := readU16(br)
	if err != nil {
		return nil, cgerr.CorruptIndex(fmt.Errorf("reading version: %w", err))
	}
	if version != Version {
		return nil, cgerr.CorruptIndex(fmt.Errorf("unsupported version %d", version))
	}

	langVersion, err := readU16(br)
	if err != nil {
		return nil, cgerr.CorruptIndex(fmt.Errorf("reading language_enum_version: %w", err))
	}
	if langVersion != LanguageEnumVersion {
		return nil, cgerr.CorruptIndex(fmt.Errorf("stale language_enum_version %d", langVersion))
	}

	nodeCount, err := readU32(br)
	if err != nil {
		return nil, cgerr.CorruptIndex(fmt.Errorf("reading node count: %w", err))
	}
	nodes := make([]model.Symbol, nodeCount)
	for i := range nodes {
		s, err := decodeSymbol(br)
		if err != nil {
			return nil, cgerr.CorruptIndex(fmt.Errorf("decoding node %d: %w", i, err))
		}
		s.ID = model.SymbolID(i)
		nodes[i] = s
	}

	edgeCount, err := readU32(br)
	if err != nil {
		return nil, cgerr.CorruptIndex(fmt.Errorf("reading edge count: %w", err))
	}
	edges := make([]model.Relation, edgeCount)
	for i := range edges {
		e, err := decodeRelation(br)
		if err != nil {
			return nil, cgerr.CorruptIndex(fmt.Errorf("decoding edge %d: %w", i, err))
		}
		if int(e.Source) >= len(nodes) || int(e.Target) >= len(nodes) {
			return nil, cgerr.CorruptIndex(fmt.Errorf("edge %d references out-of-range symbol id", i))
		}
		edges[i] = e
	}

	return graph.Rebuild(nodes, edges), nil
}

func decodeSymbol(r *bufio.Reader) (model.Symbol, error) {
	var s model.Symbol
	var err error
	if s.Name, err = readString(r); err != nil {
		return s, err
	}
	if s.File, err = readString(r); err != nil {
		return s, err
	}
	line, err := readU32(r)
	if err != nil {
		return s, err
	}
	s.Line = int(line)
	kind, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	s.Kind = model.Kind(kind)
	lang, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	s.Language = model.Language(lang)
	vis, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	s.Visibility = model.Visibility(vis)
	if s.Signature, err = readString(r); err != nil {
		return s, err
	}
	var parent int64
	if err := binary.Read(r, binary.LittleEndian, &parent); err != nil {
		return s, err
	}
	s.Parent = model.SymbolID(parent)
	return s, nil
}

func decodeRelation(r *bufio.Reader) (model.Relation, error) {
	var e model.Relation
	source, err := readU32(r)
	if err != nil {
		return e, err
	}
	target, err := readU32(r)
	if err != nil {
		return e, err
	}
	kind, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	var confidence float32
	if err := binary.Read(r, binary.LittleEndian, &confidence); err != nil {
		return e, err
	}
	line, err := readU32(r)
	if err != nil {
		return e, err
	}
	e.Source = model.SymbolID(source)
	e.Target = model.SymbolID(target)
	e.Kind = model.RelationKind(kind)
	e.Confidence = confidence
	e.Line = int(line)
	return e, nil
}

func writeU16(w io.Writer, v uint16) error { return binary.Write(w, binary.LittleEndian, v) }
func writeU32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }

func readU16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteFile encodes g and writes it, zstd-compressed, to path, creating
// parent directories as needed. This is the sole on-disk persistent state
// (§6): no lock files, no auxiliary caches.
func WriteFile(path string, g *graph.Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cgerr.IOFailure(err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		return cgerr.IOFailure(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return cgerr.IOFailure(err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return cgerr.IOFailure(err)
	}
	if _, err := zw.Write(buf.Bytes()); err != nil {
		zw.Close()
		return cgerr.IOFailure(err)
	}
	return zw.Close()
}

// ReadFile decompresses and decodes the graph stored at path.
func ReadFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cgerr.IOFailure(err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, cgerr.CorruptIndex(err)
	}
	defer zr.Close()

	return Decode(zr)
}
