/*
 * mapper_test.go, part of molingest.
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

package mapper

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/property"
	"github.com/rmera/molingest/v3"
	"github.com/rmera/molingest/xyz"
)

func h2(energy float64) *molingest.Structure {
	a1, _ := molingest.NewAtom("H")
	a2, _ := molingest.NewAtom("H")
	coords, _ := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 0.74})
	S, err := molingest.NewStructure([]*molingest.Atom{a1, a2}, coords)
	if err != nil {
		panic(err)
	}
	S.Info[molingest.EnergyKey] = energy
	return S
}

func energyMap() property.Map {
	return property.Map{
		"potential-energy": {{
			Fields: map[string]property.Source{
				"energy":   {Field: "energy", Units: "eV"},
				"per-atom": {Field: "per-atom"},
			},
			Metadata: map[string]property.Source{"method": {Value: "DFT/PBE"}},
		}},
	}
}

func forcesMap() property.Map {
	m := energyMap()
	m["atomic-forces"] = []property.Mapping{{
		Fields: map[string]property.Source{"forces": {Field: "forces", Units: "eV/Ang"}},
	}}
	return m
}

var perAtomFalse = SetInfo(map[string]any{"per-atom": false})

func TestEnergyOnly(Te *testing.T) {
	M, err := New(property.Builtin(), energyMap(), perAtomFalse)
	if err != nil {
		Te.Fatal(err)
	}
	S := h2(-31.5)
	rec, err := M.Map(S)
	if err != nil {
		Te.Fatal(err)
	}
	if len(rec.Properties) != 1 {
		Te.Fatalf("got %d properties, want 1", len(rec.Properties))
	}
	p, ok := rec.Property("potential-energy")
	if !ok || p.Fields["energy"].Data != -31.5 || p.Fields["energy"].Units != "eV" {
		Te.Errorf("wrong energy %+v", p)
	}
	if p.Fields["per-atom"].Data != false {
		Te.Errorf("the transform was not applied: %+v", p.Fields["per-atom"])
	}
	if p.Metadata["method"] != "DFT/PBE" {
		Te.Errorf("wrong metadata %v", p.Metadata)
	}
	for _, pr := range rec.Properties {
		if _, ok := pr.Fields["forces"]; ok {
			Te.Errorf("record has a forces field")
		}
	}
	if _, ok := S.Info["per-atom"]; ok {
		Te.Errorf("the transform modified the structure")
	}
}

func TestForcesRequired(Te *testing.T) {
	M, err := New(property.Builtin(), forcesMap(), perAtomFalse)
	if err != nil {
		Te.Fatal(err)
	}
	_, err = M.Map(h2(-31.5))
	var serr *molingest.SchemaError
	if !errors.As(err, &serr) {
		Te.Fatalf("expected a SchemaError, got %v", err)
	}
	if serr.Field != "forces" || !strings.Contains(err.Error(), "forces") {
		Te.Errorf("the error should name the forces field: %v", err)
	}
	//The same property, optional, is skipped.
	m := forcesMap()
	m["atomic-forces"][0].Optional = true
	M.PropertyMap = m
	rec, err := M.Map(h2(-31.5))
	if err != nil {
		Te.Fatal(err)
	}
	if _, ok := rec.Property("atomic-forces"); ok {
		Te.Errorf("optional property without values was not skipped")
	}
}

func TestValidate(Te *testing.T) {
	cases := map[string]property.Map{
		"nodefinition": {"homo-energy": {{Fields: map[string]property.Source{"energy": {Field: "e", Units: "eV"}}}}},
		"undeclared":   {"potential-energy": {{Fields: map[string]property.Source{"energies": {Field: "e", Units: "eV"}}}}},
		"nounits":      {"potential-energy": {{Fields: map[string]property.Source{"energy": {Field: "e"}}}}},
		"extraunits":   {"potential-energy": {{Fields: map[string]property.Source{"per-atom": {Field: "p", Units: "eV"}}}}},
		"badunits":     {"potential-energy": {{Fields: map[string]property.Source{"energy": {Field: "e", Units: "furlongs"}}}}},
	}
	for name, m := range cases {
		_, err := New(property.Builtin(), m, nil)
		if !molingest.IsSchemaError(err) {
			Te.Errorf("%s: expected a SchemaError, got %v", name, err)
		}
	}
}

func TestUnits(Te *testing.T) {
	m := forcesMap()
	m["potential-energy"][0].Fields["energy"] = property.Source{Field: "energy", Units: "kcal/mol"}
	m["atomic-forces"][0].Fields["forces"] = property.Source{Field: "forces", Units: "Hartree/Bohr"}
	M, err := New(property.Builtin(), m, perAtomFalse)
	if err != nil {
		Te.Fatal(err)
	}
	S := h2(-1)
	if err := S.SetArray("forces", mat.NewDense(2, 3, []float64{0, 0, 1, 0, 0, -1})); err != nil {
		Te.Fatal(err)
	}
	rec, err := M.Map(S)
	if err != nil {
		Te.Fatal(err)
	}
	e, _ := rec.Property("potential-energy")
	if v := e.Fields["energy"]; math.Abs(v.Data.(float64)+molingest.Kcal2eV) > 1e-12 || v.SourceUnits != "kcal/mol" {
		Te.Errorf("wrong conversion %+v", v)
	}
	f, _ := rec.Property("atomic-forces")
	forces := f.Fields["forces"].Data.([][]float64)
	want := molingest.H2eV / molingest.Bohr2A
	if len(forces) != 2 || math.Abs(forces[0][2]-want) > 1e-9 || math.Abs(forces[1][2]+want) > 1e-9 {
		Te.Errorf("wrong forces %v, want +-%v", forces, want)
	}
	if S.Arrays["forces"].At(0, 2) != 1 {
		Te.Errorf("conversion modified the structure")
	}
}

func TestShapes(Te *testing.T) {
	defs := property.Builtin()
	m := property.Map{
		"dipole-moment": {{Fields: map[string]property.Source{"dipole": {Field: "dipole_moment", Units: "Debye"}}}},
		"cauchy-stress": {{Fields: map[string]property.Source{
			"stress":            {Field: "virial", Units: "GPa"},
			"volume-normalized": {Value: false},
		}}},
	}
	M, err := New(defs, m, nil)
	if err != nil {
		Te.Fatal(err)
	}
	S := h2(0)
	S.Info["dipole_moment"] = []float64{0, 0, 1}
	S.Info["virial"] = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	rec, err := M.Map(S)
	if err != nil {
		Te.Fatal(err)
	}
	st, _ := rec.Property("cauchy-stress")
	if s := st.Fields["stress"].Data.([][]float64); len(s) != 3 || s[1][1] != 1 {
		Te.Errorf("wrong stress %v", s)
	}
	dp, _ := rec.Property("dipole-moment")
	if d := dp.Fields["dipole"].Data.([]float64); math.Abs(d[2]-molingest.Debye2eA) > 1e-12 {
		Te.Errorf("wrong dipole %v", d)
	}
	S.Info["dipole_moment"] = []float64{0, 1}
	if _, err := M.Map(S); !molingest.IsSchemaError(err) {
		Te.Errorf("a 2-vector dipole should be a SchemaError, got %v", err)
	}
	S.Info["dipole_moment"] = []float64{0, 0, 1}
	S.Info["virial"] = "big"
	if _, err := M.Map(S); !molingest.IsSchemaError(err) {
		Te.Errorf("a string stress should be a SchemaError, got %v", err)
	}
}

func TestMapAll(Te *testing.T) {
	M, err := New(property.Builtin(), energyMap(), perAtomFalse)
	if err != nil {
		Te.Fatal(err)
	}
	R, err := xyz.New("../xyz/testdata/h2.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	defer R.Close()
	recs, err := M.MapAll(R)
	if err != nil {
		Te.Fatal(err)
	}
	if len(recs) != 2 {
		Te.Errorf("got %d records, want 2", len(recs))
	}
	R2, err := xyz.New("../xyz/testdata/h2.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	defer R2.Close()
	M.PropertyMap = forcesMap()
	if _, err := M.MapAll(R2); !molingest.IsSchemaError(err) {
		Te.Errorf("expected a SchemaError, got %v", err)
	}
}

func chain(n int, forces bool) *molingest.Structure {
	atoms := make([]*molingest.Atom, n)
	for i := range atoms {
		atoms[i], _ = molingest.NewAtom("C")
	}
	coords := v3.Zeros(n)
	S, _ := molingest.NewStructure(atoms, coords)
	S.Info["energy"] = -float64(n)
	if forces {
		S.Arrays["forces"] = mat.NewDense(n, 3, nil)
	}
	return S
}

func TestPropertyShapes(Te *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	M, err := New(property.Builtin(), forcesMap(), perAtomFalse)
	if err != nil {
		Te.Fatal(err)
	}
	properties.Property("per-atom rows differing from the atom count are a schema error", prop.ForAll(
		func(natoms, rows int) bool {
			S := chain(natoms, false)
			S.Arrays["forces"] = mat.NewDense(rows, 3, nil)
			_, err := M.Map(S)
			if rows == natoms {
				return err == nil
			}
			return molingest.IsSchemaError(err)
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 20),
	))
	properties.Property("structures with every required value map without error", prop.ForAll(
		func(natoms int, e float64) bool {
			S := chain(natoms, true)
			S.Info["energy"] = e
			rec, err := M.Map(S)
			return err == nil && len(rec.Properties) == 2
		},
		gen.IntRange(1, 50),
		gen.Float64Range(-1e4, 1e4),
	))
	properties.TestingRun(Te)
}
