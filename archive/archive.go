/*
 * archive.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package archive exports the documents of a collection as zstd-compressed JSON lines,
//and uploads exports to S3-compatible object storage.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/rmera/molingest/store"
)

//Entry is one line of an export.
type Entry struct {
	Kind store.Kind      `json:"kind"`
	ID   store.ID        `json:"id"`
	Doc  json.RawMessage `json:"doc"`
}

//maxLine is the longest line Read accepts.
const maxLine = 64 << 20

//Export writes every document of the collection to w, one Entry per line, compressed with
//zstd. It returns the number of documents written.
func Export(ctx context.Context, db store.Database, collection string, w io.Writer) (int, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(enc)
	n := 0
	for _, kind := range store.Kinds {
		err := db.Documents(ctx, collection, kind, func(id store.ID, doc []byte) error {
			line, err := json.Marshal(Entry{Kind: kind, ID: id, Doc: doc})
			if err != nil {
				return err
			}
			if _, err := bw.Write(append(line, '\n')); err != nil {
				return err
			}
			n++
			return nil
		})
		if err != nil {
			enc.Close()
			return n, err
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return n, err
	}
	return n, enc.Close()
}

//ExportFile exports the collection to the named file.
func ExportFile(ctx context.Context, db store.Database, collection, name string) (int, error) {
	f, err := os.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := Export(ctx, db, collection, f)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return n, err
}

//Read calls fn with each entry of an export read from r.
func Read(r io.Reader, fn func(Entry) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1<<20), maxLine)
	line := 0
	for sc.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}
