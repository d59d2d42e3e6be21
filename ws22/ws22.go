/*
 * ws22.go, part of molingest.
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

//Package ws22 reads the conformations of the WS22 database, stored as NumPy .npz archives
//with one array per quantity.
package ws22

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/v3"
	"github.com/rmera/molingest/xyz"
)

//Array names in the archives.
const (
	Numbers   = "Z"
	Positions = "R"
	Energies  = "E"
	Forces    = "F"
	Dipoles   = "DP"
	Gaps      = "HL"
)

//GapKey is the Info key for the HOMO-LUMO gap.
const GapKey = "homolumo"

//Reader yields one structure per conformation in an archive.
type Reader struct {
	name   string
	src    Arrays
	opts   xyz.Options
	atoms  []*molingest.Atom
	confs  int
	r      []float64
	e      []float64
	f      []float64
	dp     []float64
	dpw    int
	hl     []float64
	hlw    int
	next   int
	closed bool
}

//New opens the named .npz archive and checks that its arrays are consistent.
func New(name string, opts ...xyz.Options) (*Reader, error) {
	src, err := OpenNPZ(name)
	if err != nil {
		return nil, molingest.WrapParseError(name, 0, err)
	}
	R, err := NewReader(src, name, opts...)
	if err != nil {
		src.Close()
		return nil, molingest.ErrDecorate(err, "New")
	}
	return R, nil
}

//NewReader reads the arrays from src, which is named name in errors. It takes ownership
//of src. The Z array may hold one row of atomic numbers shared by all conformations, or
//one row per conformation, which must all be equal.
func NewReader(src Arrays, name string, opts ...xyz.Options) (*Reader, error) {
	R := &Reader{name: name, src: src}
	if len(opts) > 0 {
		R.opts = opts[0]
	}
	perr := func(format string, a ...any) error {
		return molingest.ErrDecorate(molingest.NewParseError(name, 0, format, a...), "NewReader")
	}
	rshape, err := src.Shape(Positions)
	if err != nil {
		return nil, perr("%s", err)
	}
	if len(rshape) != 3 || rshape[2] != 3 || rshape[1] < 1 {
		return nil, perr("positions have shape %v, want (conformations, atoms, 3)", rshape)
	}
	R.confs = rshape[0]
	natoms := rshape[1]
	z, err := src.Floats(Numbers)
	if err != nil {
		return nil, perr("%s", err)
	}
	switch len(z) {
	case natoms:
	case natoms * R.confs:
		for i := natoms; i < len(z); i++ {
			if z[i] != z[i%natoms] {
				return nil, perr("atomic numbers change in conformation %d", i/natoms)
			}
		}
		z = z[:natoms]
	default:
		return nil, perr("%d atomic numbers for %d atoms", len(z), natoms)
	}
	for _, n := range z {
		a, err := molingest.AtomFromNumber(int(n))
		if err != nil {
			return nil, perr("%s", err)
		}
		R.atoms = append(R.atoms, a)
	}
	empty, err := molingest.NewStructure(R.atoms, v3.Zeros(natoms))
	if err != nil {
		return nil, perr("%s", err)
	}
	if err := R.opts.Allowed(empty); err != nil {
		return nil, perr("%s", err)
	}
	if R.r, err = src.Floats(Positions); err != nil {
		return nil, perr("%s", err)
	}
	if R.e, _, err = R.read(Energies, 1, true); err != nil {
		return nil, perr("%s", err)
	}
	if R.f, _, err = R.read(Forces, 3*natoms, false); err != nil {
		return nil, perr("%s", err)
	}
	if R.dp, R.dpw, err = R.read(Dipoles, 0, false); err != nil {
		return nil, perr("%s", err)
	}
	if R.hl, R.hlw, err = R.read(Gaps, 0, false); err != nil {
		return nil, perr("%s", err)
	}
	return R, nil
}

//read reads the named array, which must have per values per conformation, and returns
//it with that width. If per is 0, any width that splits the array evenly among the
//conformations is accepted.
func (R *Reader) read(name string, per int, required bool) ([]float64, int, error) {
	if !R.src.Has(name) {
		if required {
			return nil, 0, fmt.Errorf("no array %s", name)
		}
		return nil, 0, nil
	}
	v, err := R.src.Floats(name)
	if err != nil {
		return nil, 0, err
	}
	if per == 0 {
		if len(v) == 0 || len(v)%R.confs != 0 {
			return nil, 0, fmt.Errorf("array %s has %d values, not a multiple of %d conformations", name, len(v), R.confs)
		}
		return v, len(v) / R.confs, nil
	}
	if len(v) != per*R.confs {
		return nil, 0, fmt.Errorf("array %s has %d values, want %d for %d conformations", name, len(v), per*R.confs, R.confs)
	}
	return v, per, nil
}

//row returns a copy of the values of conformation i in an array of width w.
func row(v []float64, w, i int) []float64 {
	ret := make([]float64, w)
	copy(ret, v[i*w:(i+1)*w])
	return ret
}

//Len returns the number of conformations in the archive.
func (R *Reader) Len() int {
	return R.confs
}

//Next returns the next conformation.
func (R *Reader) Next() (*molingest.Structure, error) {
	if R.next >= R.confs {
		R.Close()
		return nil, molingest.NewLastFrameError(R.name, "Next")
	}
	i := R.next
	n := len(R.atoms)
	atoms := make([]*molingest.Atom, n)
	for j, a := range R.atoms {
		atoms[j] = a.Copy()
	}
	pos := make([]float64, 3*n)
	copy(pos, R.r[i*3*n:(i+1)*3*n])
	coords, err := v3.NewMatrix(pos)
	if err != nil {
		return nil, molingest.ErrDecorate(molingest.WrapParseError(R.name, 0, err), "Next")
	}
	S, err := molingest.NewStructure(atoms, coords)
	if err != nil {
		return nil, molingest.ErrDecorate(molingest.WrapParseError(R.name, 0, err), "Next")
	}
	S.Source = R.name
	S.Index = i
	S.Info[molingest.EnergyKey] = R.e[i]
	if R.f != nil {
		f := make([]float64, 3*n)
		copy(f, R.f[i*3*n:(i+1)*3*n])
		S.Arrays[molingest.ForcesKey] = mat.NewDense(n, 3, f)
	}
	if R.dp != nil {
		S.Info[molingest.DipoleKey] = row(R.dp, R.dpw, i)
	}
	switch {
	case R.hl == nil:
	case R.hlw == 1:
		S.Info[GapKey] = R.hl[i]
	default:
		S.Info[GapKey] = row(R.hl, R.hlw, i)
	}
	R.opts.Label(S)
	R.next++
	return S, nil
}

//Close releases the archive.
func (R *Reader) Close() error {
	if R.closed {
		return nil
	}
	R.closed = true
	return R.src.Close()
}
