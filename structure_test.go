/*
 * structure_test.go, part of molingest.
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
	"errors"
	"io"
	"math"
	"testing"

	v3 "github.com/rmera/molingest/v3"
	"gonum.org/v1/gonum/mat"
)

//water returns an H2O structure with an energy and forces.
func water(Te *testing.T) *Structure {
	var atoms []*Atom
	for _, s := range []string{"O", "h", "H"} {
		a, err := NewAtom(s)
		if err != nil {
			Te.Fatal(err)
		}
		atoms = append(atoms, a)
	}
	coords, _ := v3.NewMatrix([]float64{0, 0, 0, 0.757, 0.586, 0, -0.757, 0.586, 0})
	S, err := NewStructure(atoms, coords)
	if err != nil {
		Te.Fatal(err)
	}
	S.Info[EnergyKey] = -76.4
	S.Arrays[ForcesKey] = mat.NewDense(3, 3, []float64{0, 0.1, 0, 0.01, -0.05, 0, -0.01, -0.05, 0})
	return S
}

func TestAtoms(Te *testing.T) {
	a, err := NewAtom("cl")
	if err != nil {
		Te.Fatal(err)
	}
	if a.Symbol != "Cl" || a.Z != 17 {
		Te.Errorf("expected Cl, Z=17, got %s, Z=%d", a.Symbol, a.Z)
	}
	b, err := AtomFromNumber(35)
	if err != nil || b.Symbol != "Br" {
		Te.Errorf("expected Br for Z=35, got %v %v", b, err)
	}
	if _, err := NewAtom("Xx"); err == nil {
		Te.Error("Xx is not an element")
	}
	if _, err := AtomFromNumber(0); err == nil {
		Te.Error("0 is not an atomic number")
	}
}

func TestStructureAccessors(Te *testing.T) {
	S := water(Te)
	if S.Formula() != "H2O" {
		Te.Errorf("expected H2O, got %s", S.Formula())
	}
	if e, ok := S.Energy(); !ok || e != -76.4 {
		Te.Errorf("wrong energy %v %v", e, ok)
	}
	f, ok := S.Forces()
	if !ok || f.NVecs() != 3 {
		Te.Errorf("wrong forces %v", ok)
	}
	if _, ok := S.Dipole(); ok {
		Te.Error("water record has no dipole")
	}
	if err := S.Check(); err != nil {
		Te.Error(err)
	}
}

func TestStructureCheck(Te *testing.T) {
	S := water(Te)
	S.Arrays[ForcesKey] = mat.NewDense(2, 3, nil)
	err := S.Check()
	var serr *SchemaError
	if !errors.As(err, &serr) || serr.Field != ForcesKey {
		Te.Errorf("expected a SchemaError naming forces, got %v", err)
	}
	if err := S.SetArray("charges", mat.NewDense(1, 1, nil)); err == nil {
		Te.Error("a 1-row array can't be set on a 3-atom structure")
	}
}

func TestStructureCopy(Te *testing.T) {
	S := water(Te)
	S.Info[DipoleKey] = []float64{0, 0.38, 0}
	C := S.Copy()
	C.Coords.Set(0, 0, 5)
	C.Info[DipoleKey].([]float64)[1] = 1
	C.Atoms[0].Symbol = "S"
	if S.Coords.At(0, 0) != 0 || S.Atoms[0].Symbol != "O" {
		Te.Error("Copy shares coordinates or atoms with the original")
	}
	if d, _ := S.Dipole(); d[1] != 0.38 {
		Te.Error("Copy shares Info slices with the original")
	}
}

func TestFormula(Te *testing.T) {
	var atoms []*Atom
	for _, s := range []string{"N", "C", "H", "H", "C", "O", "H"} {
		a, _ := NewAtom(s)
		atoms = append(atoms, a)
	}
	S, err := NewStructure(atoms, v3.Zeros(len(atoms)))
	if err != nil {
		Te.Fatal(err)
	}
	if S.Formula() != "C2H3NO" {
		Te.Errorf("expected C2H3NO, got %s", S.Formula())
	}
}

func TestErrors(Te *testing.T) {
	p := NewParseError("a.xyz", 3, "expected %d atoms", 3)
	p.Decorate("Next")
	if d := p.Decorate(""); len(d) != 1 || d[0] != "Next" {
		Te.Errorf("wrong decoration %v", d)
	}
	if !IsParseError(ErrDecorate(p, "ReadAll")) {
		Te.Error("decorated ParseError is not a ParseError")
	}
	cause := errors.New("disk full")
	s := NewStorageError("configurations", "Submit", cause)
	if !errors.Is(s, cause) || !IsStorageError(s) {
		Te.Error("StorageError must keep its cause")
	}
	l := NewLastFrameError("a.xyz", "Next")
	if !errors.Is(l, io.EOF) || !IsLastFrame(l) {
		Te.Error("last frame error must unwrap to io.EOF")
	}
	if IsLastFrame(p) {
		Te.Error("a ParseError is not a last frame")
	}
}

func TestUnits(Te *testing.T) {
	cases := []struct {
		unit string
		v    float64
		want float64
		can  string
	}{
		{"eV", 1, 1, "eV"},
		{"Kcal/Mol", 1, 0.0433641, "eV"},
		{"kcal/mol", 627.509474, H2eV, "eV"},
		{"Hartrees", 1, 27.2113862, "eV"},
		{"Hartrees/Bohr", 1, 51.4220675, "eV/Ang"},
		{"kcal/mol/A", 1, 0.0433641, "eV/Ang"},
		{"eV/Ang", 2, 2, "eV/Ang"},
		{"Debye", 1, 0.2081943, "e*Ang"},
	}
	for _, c := range cases {
		got, can, err := ToCanonical(c.v, c.unit)
		if err != nil {
			Te.Errorf("%s: %v", c.unit, err)
			continue
		}
		if math.Abs(got-c.want) > 1e-5 || can != c.can {
			Te.Errorf("%s: got %f %s, want %f %s", c.unit, got, can, c.want, c.can)
		}
	}
	if _, _, err := ToCanonical(1, "furlong"); err == nil {
		Te.Error("unknown unit accepted")
	}
	if _, err := Convert(1, "eV", "GPa"); err == nil {
		Te.Error("energy converted to stress")
	}
	kcal, err := Convert(1, "Hartree", "kcal/mol")
	if err != nil || math.Abs(kcal-H2Kcal) > 1e-6 {
		Te.Errorf("Hartree to kcal/mol: %f %v", kcal, err)
	}
}
