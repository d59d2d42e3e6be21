/*
 * writer.go, part of molingest.
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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/molingest"
)

//Writer writes structures as extended XYZ frames.
type Writer struct {
	filename  string
	wc        io.Closer
	h         *bufio.Writer
	writeable bool
	prec      int
}

//NewWriter creates the named file for writing. Names ending in .gz or .zst are compressed.
func NewWriter(name string) (*Writer, error) {
	wc, err := Create(name)
	if err != nil {
		return nil, err
	}
	W := NewStreamWriter(wc, name)
	W.wc = wc
	return W, nil
}

//NewStreamWriter returns a Writer that writes to w. Close flushes but does not close w.
func NewStreamWriter(w io.Writer, name string) *Writer {
	return &Writer{filename: name, h: bufio.NewWriter(w), writeable: true, prec: 8}
}

//SetPrecision sets the number of decimals used for coordinates and per-atom arrays.
func (W *Writer) SetPrecision(prec int) {
	if prec > 0 {
		W.prec = prec
	}
}

//WNext writes S as the next frame.
func (W *Writer) WNext(S *molingest.Structure) error {
	if !W.writeable {
		return fmt.Errorf("xyz: %s: %s", W.filename, TrajUnIniWrite)
	}
	if err := S.Check(); err != nil {
		return molingest.ErrDecorate(err, "WNext")
	}
	cols := []column{{"species", 'S', 1}, {"pos", 'R', 3}}
	for _, k := range sortedKeys(S.Arrays) {
		_, c := S.Arrays[k].Dims()
		cols = append(cols, column{k, 'R', c})
	}
	parts := make([]string, 0, len(S.Info)+3)
	if S.Cell != nil {
		var lattice []float64
		for _, r := range S.Cell.Rows() {
			lattice = append(lattice, r...)
		}
		v, _ := formatValue(lattice)
		parts = append(parts, "Lattice="+v)
	}
	parts = append(parts, "Properties="+formatColumns(cols))
	for _, k := range sortedKeys(S.Info) {
		if k == "comment" {
			continue
		}
		v, err := formatValue(S.Info[k])
		if err != nil {
			return molingest.ErrDecorate(molingest.NewSchemaError("", k, "%s", err), "WNext")
		}
		parts = append(parts, k+"="+v)
	}
	if S.Cell != nil || S.PBC != [3]bool{} {
		p := make([]string, 3)
		for i, b := range S.PBC {
			p[i], _ = formatValue(b)
		}
		parts = append(parts, `pbc="`+strings.Join(p, " ")+`"`)
	}
	fmt.Fprintf(W.h, "%d\n%s\n", S.Len(), strings.Join(parts, " "))
	for i, a := range S.Atoms {
		line := make([]string, 0, 8)
		line = append(line, fmt.Sprintf("%-2s", a.Symbol))
		for j := 0; j < 3; j++ {
			line = append(line, strconv.FormatFloat(S.Coords.At(i, j), 'f', W.prec, 64))
		}
		for _, c := range cols[2:] {
			for j := 0; j < c.width; j++ {
				line = append(line, strconv.FormatFloat(S.Arrays[c.name].At(i, j), 'f', W.prec, 64))
			}
		}
		if _, err := W.h.WriteString(strings.Join(line, " ") + "\n"); err != nil {
			return fmt.Errorf("xyz: writing %s: %w", W.filename, err)
		}
	}
	return nil
}

//Close flushes the writer and closes the file, if the Writer created one.
func (W *Writer) Close() error {
	if !W.writeable {
		return nil
	}
	W.writeable = false
	err := W.h.Flush()
	if W.wc != nil {
		if err2 := W.wc.Close(); err == nil {
			err = err2
		}
	}
	return err
}
