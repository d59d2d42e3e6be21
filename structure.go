/*
 * structure.go, part of molingest.
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

package molingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	v3 "github.com/rmera/molingest/v3"
	"gonum.org/v1/gonum/mat"
)

//Conventional keys for the quantities most datasets carry.
const (
	EnergyKey = "energy"
	ForcesKey = "forces"
	DipoleKey = "dipole_moment"
)

//Reader is implemented by every dataset reader. Next returns the next structure record of the
//input, or an error implementing LastFrameError when there are no more records. A Reader is
//not restartable: open the input again to re-read it.
type Reader interface {
	Next() (*Structure, error)
}

//Structure is one molecular configuration: the ordered atoms with their positions, an optional
//periodic cell and the physical quantities the raw data provided for it.
type Structure struct {
	Atoms  []*Atom
	Coords *v3.Matrix
	Cell   *v3.Matrix //nil for non-periodic structures
	PBC    [3]bool

	//Info holds per-structure values: float64, int, bool, string or []float64.
	Info map[string]any

	//Arrays holds per-atom values, one row per atom.
	Arrays map[string]*mat.Dense

	Names  []string //labels used to group configurations into sets
	Source string   //file the structure was read from
	Index  int      //0-based position of the structure in Source
}

//NewStructure returns a structure with the given atoms and coordinates, and empty Info and Arrays.
func NewStructure(atoms []*Atom, coords *v3.Matrix) (*Structure, error) {
	if coords == nil {
		return nil, fmt.Errorf("nil coordinates")
	}
	if n := coords.NVecs(); n != len(atoms) {
		return nil, fmt.Errorf("%d atoms but %d coordinates", len(atoms), n)
	}
	return &Structure{
		Atoms:  atoms,
		Coords: coords,
		Info:   make(map[string]any),
		Arrays: make(map[string]*mat.Dense),
	}, nil
}

//Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

//Symbols returns the element symbols of the atoms, in order.
func (S *Structure) Symbols() []string {
	ret := make([]string, len(S.Atoms))
	for i, a := range S.Atoms {
		ret[i] = a.Symbol
	}
	return ret
}

//Numbers returns the atomic numbers of the atoms, in order.
func (S *Structure) Numbers() []int {
	ret := make([]int, len(S.Atoms))
	for i, a := range S.Atoms {
		ret[i] = a.Z
	}
	return ret
}

//Elements returns the sorted set of element symbols in the structure.
func (S *Structure) Elements() []string {
	set := make(map[string]bool)
	for _, a := range S.Atoms {
		set[a.Symbol] = true
	}
	ret := make([]string, 0, len(set))
	for s := range set {
		ret = append(ret, s)
	}
	sort.Strings(ret)
	return ret
}

//Formula returns the Hill formula of the structure: C first, then H, then the rest
//in alphabetical order. Without carbon, all elements are alphabetical.
func (S *Structure) Formula() string {
	count := make(map[string]int)
	for _, a := range S.Atoms {
		count[a.Symbol]++
	}
	elems := S.Elements()
	if count["C"] > 0 {
		head := []string{"C"}
		if count["H"] > 0 {
			head = append(head, "H")
		}
		rest := make([]string, 0, len(elems))
		for _, e := range elems {
			if e != "C" && e != "H" {
				rest = append(rest, e)
			}
		}
		elems = append(head, rest...)
	}
	var b strings.Builder
	for _, e := range elems {
		b.WriteString(e)
		if count[e] > 1 {
			b.WriteString(strconv.Itoa(count[e]))
		}
	}
	return b.String()
}

//Float returns the Info value under key as a float64. Integers and bools are converted.
func (S *Structure) Float(key string) (float64, bool) {
	switch v := S.Info[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

//Energy returns the value under EnergyKey, if present.
func (S *Structure) Energy() (float64, bool) {
	return S.Float(EnergyKey)
}

//Forces returns the per-atom array under ForcesKey, if present.
func (S *Structure) Forces() (*v3.Matrix, bool) {
	f, ok := S.Arrays[ForcesKey]
	if !ok || f == nil {
		return nil, false
	}
	if _, c := f.Dims(); c != 3 {
		return nil, false
	}
	return v3.Dense2Matrix(f), true
}

//Dipole returns the dipole moment vector under DipoleKey, if present.
func (S *Structure) Dipole() ([]float64, bool) {
	switch v := S.Info[DipoleKey].(type) {
	case []float64:
		return v, true
	case float64:
		return []float64{v}, true
	}
	return nil, false
}

//SetArray stores a per-atom array under key. The array must have one row per atom.
func (S *Structure) SetArray(key string, m *mat.Dense) error {
	if r, _ := m.Dims(); r != len(S.Atoms) {
		return NewSchemaError("", key, "per-atom array has %d rows for %d atoms", r, len(S.Atoms))
	}
	if S.Arrays == nil {
		S.Arrays = make(map[string]*mat.Dense)
	}
	S.Arrays[key] = m
	return nil
}

//Check verifies the invariants of the record: one coordinate and one row of each per-atom
//array per atom, and a 3x3 cell if a cell is present.
func (S *Structure) Check() error {
	n := len(S.Atoms)
	if S.Coords == nil {
		return NewSchemaError("", "positions", "missing coordinates")
	}
	if r, c := S.Coords.Dims(); r != n || c != 3 {
		return NewSchemaError("", "positions", "coordinates are %dx%d for %d atoms", r, c, n)
	}
	for k, v := range S.Arrays {
		if r, _ := v.Dims(); r != n {
			return NewSchemaError("", k, "per-atom array has %d rows for %d atoms", r, n)
		}
	}
	if S.Cell != nil {
		if r, c := S.Cell.Dims(); r != 3 || c != 3 {
			return NewSchemaError("", "cell", "cell is %dx%d, not 3x3", r, c)
		}
	}
	return nil
}

//Copy returns a deep copy of the structure. Info slices are copied, the atoms are not shared.
func (S *Structure) Copy() *Structure {
	r := &Structure{
		Atoms:  make([]*Atom, len(S.Atoms)),
		PBC:    S.PBC,
		Info:   make(map[string]any, len(S.Info)),
		Arrays: make(map[string]*mat.Dense, len(S.Arrays)),
		Names:  append([]string(nil), S.Names...),
		Source: S.Source,
		Index:  S.Index,
	}
	for i, a := range S.Atoms {
		r.Atoms[i] = a.Copy()
	}
	if S.Coords != nil {
		r.Coords = S.Coords.Clone()
	}
	if S.Cell != nil {
		r.Cell = S.Cell.Clone()
	}
	for k, v := range S.Info {
		if f, ok := v.([]float64); ok {
			v = append([]float64(nil), f...)
		}
		r.Info[k] = v
	}
	for k, v := range S.Arrays {
		r.Arrays[k] = mat.DenseCopyOf(v)
	}
	return r
}

//AddName appends a label to the structure's names, if it is not already there.
func (S *Structure) AddName(name string) {
	if name == "" {
		return
	}
	for _, n := range S.Names {
		if n == name {
			return
		}
	}
	S.Names = append(S.Names, name)
}

//Provenance ties a dataset back to its source study.
type Provenance struct {
	Name        string   `json:"name" yaml:"name"`
	Authors     []string `json:"authors" yaml:"authors"`
	Links       []string `json:"links" yaml:"links"`
	Description string   `json:"description" yaml:"description"`
}

//Validate checks that the provenance has at least a name.
func (P Provenance) Validate() error {
	if strings.TrimSpace(P.Name) == "" {
		return fmt.Errorf("provenance without a name")
	}
	return nil
}
