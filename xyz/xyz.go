/*
 * xyz.go, part of molingest.
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

//Package xyz reads and writes plain and extended XYZ files, optionally gzip or zstd compressed.
//
//Each frame is an atom-count line, a comment line and one line per atom. In extended XYZ the
//comment line holds key=value pairs: Lattice gives the cell, Properties describes the atom
//columns (species:S:1:pos:R:3:forces:R:3 ...) and every other key becomes an Info value.
package xyz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rmera/molingest"
	v3 "github.com/rmera/molingest/v3"
	"gonum.org/v1/gonum/mat"
)

//Options control how structures are labeled and filtered while reading.
type Options struct {
	//Elements, if not empty, is the set of elements allowed in the dataset.
	//A structure with any other element is a parse error.
	Elements []string `json:"elements" yaml:"elements"`

	//NameField is the Info key whose value names the structure (e.g. config_type).
	NameField string `json:"name_field" yaml:"name_field"`

	//DefaultName names the structures that have no NameField value.
	DefaultName string `json:"default_name" yaml:"default_name"`

	//PlainComment keeps the comment line verbatim under the "comment" key, even if it
	//contains key=value pairs. Used for raw formats with their own comment layout.
	PlainComment bool `json:"plain_comment" yaml:"plain_comment"`
}

//Label adds the names given by the options to S.
func (O Options) Label(S *molingest.Structure) {
	if O.NameField != "" {
		if v, ok := S.Info[O.NameField]; ok {
			S.AddName(fmt.Sprint(v))
			return
		}
	}
	S.AddName(O.DefaultName)
}

//Allowed returns an error if S contains an element not in the Elements set.
func (O Options) Allowed(S *molingest.Structure) error {
	if len(O.Elements) == 0 {
		return nil
	}
	for _, e := range S.Elements() {
		found := false
		for _, a := range O.Elements {
			if molingest.NormalizeSymbol(a) == e {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("element %s is not among the dataset elements %v", e, O.Elements)
		}
	}
	return nil
}

//Reader reads the frames of an XYZ stream one by one.
type Reader struct {
	filename string
	rc       io.Closer
	h        *bufio.Reader
	line     int //last line read, 1-based
	comment  int //comment line of the last frame read
	index    int //next frame index
	opts     Options
	readable bool
	done     bool //the last frame was reached
}

//New opens the named XYZ file for reading. Files ending in .gz or .zst are decompressed.
func New(name string, opts ...Options) (*Reader, error) {
	rc, err := Open(name)
	if err != nil {
		return nil, molingest.WrapParseError(name, 0, err)
	}
	R := NewReader(rc, name, opts...)
	R.rc = rc
	return R, nil
}

//NewReader returns a Reader that reads XYZ frames from r. name is used in errors and as
//the structures' Source.
func NewReader(r io.Reader, name string, opts ...Options) *Reader {
	R := &Reader{filename: name, h: bufio.NewReader(r), readable: true}
	if len(opts) > 0 {
		R.opts = opts[0]
	}
	return R
}

//Readable returns true if it is possible to call Next on the reader.
func (R *Reader) Readable() bool {
	return R.readable
}

//CommentLine returns the line number of the comment of the last frame read.
func (R *Reader) CommentLine() int {
	return R.comment
}

//Close closes the underlying file, if the Reader opened one, and marks the Reader
//as unreadable.
func (R *Reader) Close() error {
	R.readable = false
	if R.rc != nil {
		err := R.rc.Close()
		R.rc = nil
		return err
	}
	return nil
}

//readLine returns the next line without its line terminator. The error is io.EOF only
//if nothing at all could be read.
func (R *Reader) readLine() (string, error) {
	s, err := R.h.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	R.line++
	return strings.TrimRight(s, "\r\n"), nil
}

//Next returns the next frame of the file as a structure record. At the end of the file it
//returns an error implementing molingest.LastFrameError. Malformed frames give a
//*molingest.ParseError, after which the Reader is no longer readable.
func (R *Reader) Next() (*molingest.Structure, error) {
	if !R.readable {
		if R.done {
			return nil, molingest.NewLastFrameError(R.filename, "Next")
		}
		return nil, molingest.NewParseError(R.filename, R.line, TrajUnIniRead)
	}
	S, err := R.next()
	if err != nil {
		R.done = molingest.IsLastFrame(err)
		R.Close()
		return nil, molingest.ErrDecorate(err, "Next")
	}
	return S, nil
}

func (R *Reader) next() (*molingest.Structure, error) {
	var line string
	var err error
	//blank lines between frames, or at the end of the file, are tolerated.
	for {
		line, err = R.readLine()
		if errors.Is(err, io.EOF) {
			return nil, molingest.NewLastFrameError(R.filename, "Next")
		}
		if err != nil {
			return nil, molingest.WrapParseError(R.filename, R.line, err)
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	fields := strings.Fields(line)
	natoms, err := strconv.Atoi(fields[0])
	if err != nil || len(fields) > 1 {
		return nil, molingest.NewParseError(R.filename, R.line, "expected an atom count, found %q", line)
	}
	if natoms < 1 {
		return nil, molingest.NewParseError(R.filename, R.line, "atom count must be positive, found %d", natoms)
	}
	countline := R.line
	comment, err := R.readLine()
	if err != nil {
		return nil, molingest.NewParseError(R.filename, R.line, "missing comment line after atom count %d", natoms)
	}
	R.comment = R.line
	info, keys, cols, cell, pbc, err := R.parseHeader(comment)
	if err != nil {
		return nil, molingest.NewParseError(R.filename, R.line, "%s", err.Error())
	}
	atoms := make([]*molingest.Atom, natoms)
	coords := v3.Zeros(natoms)
	arrays := make(map[string]*mat.Dense)
	for _, c := range cols {
		if c.name != "species" && c.name != "pos" && c.name != "Z" && c.kind != 'S' {
			arrays[c.name] = mat.NewDense(natoms, c.width, nil)
		}
	}
	for i := 0; i < natoms; i++ {
		l, err := R.readLine()
		if errors.Is(err, io.EOF) {
			return nil, molingest.NewParseError(R.filename, countline, "declared %d atoms but only %d coordinate lines are present", natoms, i)
		}
		if err != nil {
			return nil, molingest.WrapParseError(R.filename, R.line, err)
		}
		if err := R.parseAtom(l, cols, i, atoms, coords, arrays); err != nil {
			return nil, molingest.NewParseError(R.filename, R.line, "%s", err.Error())
		}
	}
	S, err := molingest.NewStructure(atoms, coords)
	if err != nil {
		return nil, molingest.NewParseError(R.filename, countline, "%s", err.Error())
	}
	S.Cell = cell
	S.PBC = pbc
	for _, k := range keys {
		S.Info[k] = info[k]
	}
	for k, v := range arrays {
		S.Arrays[k] = v
	}
	S.Source = R.filename
	S.Index = R.index
	if err := R.opts.Allowed(S); err != nil {
		return nil, molingest.NewParseError(R.filename, countline, "%s", err.Error())
	}
	R.opts.Label(S)
	R.index++
	return S, nil
}

//parseHeader reads the comment line. Plain comments are kept under the "comment" key.
func (R *Reader) parseHeader(comment string) (info map[string]any, keys []string, cols []column, cell *v3.Matrix, pbc [3]bool, err error) {
	info = make(map[string]any)
	cols = defaultColumns
	if R.opts.PlainComment || !isExtended(comment) {
		if c := strings.TrimSpace(comment); c != "" {
			info["comment"] = c
			keys = append(keys, "comment")
		}
		return info, keys, cols, nil, pbc, nil
	}
	kv, order, err := splitComment(comment)
	if err != nil {
		return nil, nil, nil, nil, pbc, err
	}
	for _, k := range order {
		v := kv[k].text
		switch strings.ToLower(k) {
		case "lattice":
			f := strings.Fields(v)
			data := make([]float64, len(f))
			for i, s := range f {
				if data[i], err = strconv.ParseFloat(s, 64); err != nil {
					return nil, nil, nil, nil, pbc, fmt.Errorf("bad Lattice value %q", v)
				}
			}
			if len(data) != 9 {
				return nil, nil, nil, nil, pbc, fmt.Errorf("Lattice needs 9 numbers, found %d", len(data))
			}
			cell, _ = v3.NewMatrix(data)
			if math.Abs(cell.Det()) < minCellVolume {
				return nil, nil, nil, nil, pbc, fmt.Errorf("Lattice vectors %q span no volume", v)
			}
			pbc = [3]bool{true, true, true}
		case "pbc":
			f := strings.Fields(v)
			if len(f) != 3 {
				return nil, nil, nil, nil, pbc, fmt.Errorf("pbc needs 3 values, found %q", v)
			}
			for i, s := range f {
				b, ok := parseBool(s)
				if !ok {
					return nil, nil, nil, nil, pbc, fmt.Errorf("bad pbc value %q", v)
				}
				pbc[i] = b
			}
		case "properties":
			if cols, err = parseColumns(v); err != nil {
				return nil, nil, nil, nil, pbc, err
			}
		default:
			info[k] = parseValue(kv[k])
			keys = append(keys, k)
		}
	}
	var hasSpecies, hasPos bool
	for _, c := range cols {
		hasSpecies = hasSpecies || (c.name == "species" && c.kind == 'S' && c.width == 1) || (c.name == "Z" && c.kind == 'I' && c.width == 1)
		hasPos = hasPos || (c.name == "pos" && c.kind == 'R' && c.width == 3)
	}
	if !hasSpecies || !hasPos {
		return nil, nil, nil, nil, pbc, fmt.Errorf("Properties must declare species:S:1 (or Z:I:1) and pos:R:3")
	}
	return info, keys, cols, cell, pbc, nil
}

//parseAtom fills the ith atom, coordinates and per-atom arrays from an atom line.
func (R *Reader) parseAtom(line string, cols []column, i int, atoms []*molingest.Atom, coords *v3.Matrix, arrays map[string]*mat.Dense) error {
	fields := strings.Fields(line)
	need := 0
	for _, c := range cols {
		need += c.width
	}
	if len(fields) < need {
		return fmt.Errorf("atom line %d has %d fields, %d expected: %q", i+1, len(fields), need, line)
	}
	pos := 0
	for _, c := range cols {
		f := fields[pos : pos+c.width]
		pos += c.width
		switch {
		case c.name == "species" && c.kind == 'S':
			a, err := molingest.NewAtom(f[0])
			if err != nil {
				return err
			}
			atoms[i] = a
		case c.name == "Z" && c.kind == 'I':
			z, err := strconv.Atoi(f[0])
			if err != nil {
				return fmt.Errorf("bad atomic number %q", f[0])
			}
			if atoms[i] != nil {
				continue //species wins
			}
			a, err := molingest.AtomFromNumber(z)
			if err != nil {
				return err
			}
			atoms[i] = a
		case c.kind == 'S':
			//string columns other than species have no per-atom numeric array.
		default:
			var dest []float64
			if c.name == "pos" {
				dest = make([]float64, 3)
			} else {
				dest = make([]float64, c.width)
			}
			for j, s := range f {
				if c.kind == 'L' {
					b, ok := parseBool(s)
					if !ok {
						return fmt.Errorf("bad logical value %q in column %s", s, c.name)
					}
					if b {
						dest[j] = 1
					}
					continue
				}
				x, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("bad number %q in column %s", s, c.name)
				}
				dest[j] = x
			}
			if c.name == "pos" {
				coords.SetVec(i, [3]float64{dest[0], dest[1], dest[2]})
			} else {
				arrays[c.name].SetRow(i, dest)
			}
		}
	}
	return nil
}

//ReadAll reads every frame of the named file.
func ReadAll(name string, opts ...Options) ([]*molingest.Structure, error) {
	R, err := New(name, opts...)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "ReadAll")
	}
	defer R.Close()
	return Collect(R)
}

//Collect reads all the records from R until its last frame.
func Collect(R molingest.Reader) ([]*molingest.Structure, error) {
	var ret []*molingest.Structure
	for {
		S, err := R.Next()
		if molingest.IsLastFrame(err) {
			return ret, nil
		}
		if err != nil {
			return nil, molingest.ErrDecorate(err, "Collect")
		}
		ret = append(ret, S)
	}
}

//minCellVolume is the smallest cell volume, in cubic Angstrom, accepted from a Lattice.
const minCellVolume = 1e-6

const (
	TrajUnIniRead  = "reader is closed or was not initialized"
	TrajUnIniWrite = "writer is closed or was not initialized"
)
