/*
 * compress.go, part of molingest.
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

package xyz

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//zstdReadCloser is needed because *zstd.Decoder's Close does not return an error,
//so it doesn't implement io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (s zstdReadCloser) Close() error {
	s.Decoder.Close()
	return nil
}

//fileCloser closes both the decompressor and the file under it.
type fileCloser struct {
	io.Reader
	closers []io.Closer
}

func (f *fileCloser) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

//compression returns the compression format implied by the file name suffix:
//"gz", "zst" or "" for plain text.
func compression(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.HasSuffix(n, ".gz"):
		return "gz"
	case strings.HasSuffix(n, ".zst"), strings.HasSuffix(n, ".zstd"):
		return "zst"
	}
	return ""
}

//Open opens the named file, transparently decompressing it
//if the suffix says it is compressed.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewReader(f)
	var dec io.ReadCloser
	switch compression(name) {
	case "gz":
		dec, err = gzip.NewReader(buf)
	case "zst":
		var z *zstd.Decoder
		z, err = zstd.NewReader(buf)
		if err == nil {
			dec = zstdReadCloser{z}
		}
	default:
		return &fileCloser{Reader: buf, closers: []io.Closer{f}}, nil
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileCloser{Reader: dec, closers: []io.Closer{dec, f}}, nil
}

//Create creates the named file, compressing what is written to it if the suffix
//asks for it.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	var enc io.WriteCloser
	switch compression(name) {
	case "gz":
		enc = gzip.NewWriter(f)
	case "zst":
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	default:
		return f, nil
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return &writeCloser{enc, f}, nil
}

type writeCloser struct {
	io.WriteCloser
	f *os.File
}

func (w *writeCloser) Close() error {
	err := w.WriteCloser.Close()
	if err2 := w.f.Close(); err == nil {
		err = err2
	}
	return err
}
