// pdse-go: Pixel Dungeon save edit suite
// Copyright (C) 2026  Jonas Mehl
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package save decodes, mutates, and re-encodes Pixel Dungeon save
// documents. A save file is a small binary container: a magic number, a
// format version, the compressed and raw payload sizes, and one lz4 block
// holding a JSON document.
package save

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
)

const (
	// Magic is the magic number of the save container, "spd1" on disk.
	Magic int32 = 0x31647073
	// Ver is the container format version.
	Ver int32 = 0x00000001
)

// ErrFormat reports a payload that is not a valid save container or does
// not hold a valid JSON document.
var ErrFormat = errors.New("malformed save data")

// maxRawSize bounds the decompressed payload so a corrupt size field
// cannot drive a huge allocation.
const maxRawSize = 1 << 26

func readInt32(r io.Reader) (int32, error) {
	var v int32

	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}

	return v, nil
}

func writeInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// Decode parses the binary save container and returns the document it
// holds. All failures wrap ErrFormat.
func Decode(b []byte) (Document, error) {
	r := bytes.NewReader(b)

	m, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic number: %v", ErrFormat, err)
	}
	if m != Magic {
		return nil, fmt.Errorf("%w: incorrect magic number %#08x", ErrFormat, m)
	}

	v, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading version: %v", ErrFormat, err)
	}
	if v != Ver {
		return nil, fmt.Errorf("%w: unsupported version %#08x", ErrFormat, v)
	}

	sizeCom, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading compressed size: %v", ErrFormat, err)
	}

	sizeRaw, err := readInt32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading raw size: %v", ErrFormat, err)
	}

	if sizeCom < 0 || sizeRaw < 0 || sizeRaw > maxRawSize {
		return nil, fmt.Errorf("%w: implausible sizes %d/%d", ErrFormat, sizeCom, sizeRaw)
	}

	block := make([]byte, sizeCom)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("%w: truncated block: %v", ErrFormat, err)
	}

	raw := block
	if sizeCom != sizeRaw {
		raw = make([]byte, sizeRaw)

		n, err := lz4.UncompressBlock(block, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if int32(n) != sizeRaw {
			return nil, fmt.Errorf("%w: expecting %d bytes, read %d", ErrFormat, sizeRaw, n)
		}
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Encode serializes the document back into the binary save container.
// Payloads that do not shrink under lz4 are stored raw, signalled by equal
// compressed and raw sizes.
func Encode(doc Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}

	block := make([]byte, lz4.CompressBlockBound(len(raw)))

	n, err := lz4.CompressBlock(raw, block, make([]int, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("compressing document: %w", err)
	}

	// lz4.CompressBlock returns 0 if the data is not compressible.
	if n == 0 || n >= len(raw) {
		block = raw
		n = len(raw)
	} else {
		block = block[:n]
	}

	var buf bytes.Buffer

	for _, v := range []int32{Magic, Ver, int32(n), int32(len(raw))} {
		if err := writeInt32(&buf, v); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	if _, err := buf.Write(block); err != nil {
		return nil, fmt.Errorf("writing block: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseDocument parses a bare JSON document, as found in a staging file.
func ParseDocument(b []byte) (Document, error) {
	var doc Document

	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	return doc, nil
}

// MarshalPretty renders the document as indented JSON for the staging
// file, where a human may inspect or hand-edit it between runs.
func MarshalPretty(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
