/*
 * ws22_test.go, part of molingest.
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

package ws22

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/xyz"
)

type fakeArray struct {
	shape []int
	data  []float64
}

type fakeArrays map[string]fakeArray

func (F fakeArrays) Has(name string) bool {
	_, ok := F[name]
	return ok
}

func (F fakeArrays) Shape(name string) ([]int, error) {
	a, ok := F[name]
	if !ok {
		return nil, fmt.Errorf("no array %s", name)
	}
	return a.shape, nil
}

func (F fakeArrays) Floats(name string) ([]float64, error) {
	a, ok := F[name]
	if !ok {
		return nil, fmt.Errorf("no array %s", name)
	}
	return a.data, nil
}

func (F fakeArrays) Close() error { return nil }

func h2(confs int) fakeArrays {
	r := make([]float64, 0, confs*6)
	e := make([]float64, 0, confs)
	for i := 0; i < confs; i++ {
		r = append(r, 0, 0, 0, 0, 0, 0.7+0.01*float64(i))
		e = append(e, -1.17+0.001*float64(i))
	}
	return fakeArrays{
		Numbers:   {[]int{2}, []float64{1, 1}},
		Positions: {[]int{confs, 2, 3}, r},
		Energies:  {[]int{confs}, e},
	}
}

func TestNPZ(Te *testing.T) {
	R, err := New("testdata/water.npz", xyz.Options{Elements: []string{"C", "N", "O", "H"}, DefaultName: "ws22_water"})
	if err != nil {
		Te.Fatal(err)
	}
	defer R.Close()
	mols, err := xyz.Collect(R)
	if err != nil {
		Te.Fatal(err)
	}
	if len(mols) != 2 || R.Len() != 2 {
		Te.Fatalf("got %d conformations, want 2", len(mols))
	}
	m := mols[1]
	if m.Formula() != "H2O" {
		Te.Errorf("wrong formula %s", m.Formula())
	}
	if e, _ := m.Energy(); e != -47600.25 {
		Te.Errorf("wrong energy %v", e)
	}
	if m.Coords.At(1, 1) != 0.760 {
		Te.Errorf("wrong coordinates %v", m.Coords.Rows())
	}
	f, ok := m.Forces()
	if !ok || f.At(0, 0) != 0.9 {
		Te.Errorf("wrong forces")
	}
	if d, ok := m.Dipole(); !ok || d[2] != 0.81 {
		Te.Errorf("wrong dipole %v", d)
	}
	if m.Info[GapKey] != 7.4 {
		Te.Errorf("wrong gap %v", m.Info[GapKey])
	}
	if len(m.Names) != 1 || m.Names[0] != "ws22_water" || m.Index != 1 {
		Te.Errorf("wrong names or index %v %d", m.Names, m.Index)
	}
}

func TestFortranOrder(Te *testing.T) {
	N, err := OpenNPZ("testdata/fortran.npz")
	if err != nil {
		Te.Fatal(err)
	}
	defer N.Close()
	want := map[string][]float64{
		"M": {1, 2, 3, 4, 5, 6},
		"N": {0, 1, 2, 3, 4, 5, 6, 7},
	}
	for name, w := range want {
		v, err := N.Floats(name)
		if err != nil {
			Te.Fatal(err)
		}
		if fmt.Sprint(v) != fmt.Sprint(w) {
			Te.Errorf("array %s read as %v, want %v", name, v, w)
		}
	}
	if _, err := cOrder([]float64{1, 2, 3}, []int{2, 2}); err == nil {
		Te.Errorf("a 2x2 array with 3 values was accepted")
	}
}

func TestReaderFake(Te *testing.T) {
	R, err := NewReader(h2(5), "h2.npz")
	if err != nil {
		Te.Fatal(err)
	}
	mols, err := xyz.Collect(R)
	if err != nil {
		Te.Fatal(err)
	}
	if len(mols) != 5 {
		Te.Fatalf("got %d conformations, want 5", len(mols))
	}
	if _, ok := mols[0].Forces(); ok {
		Te.Errorf("no forces array, but the structure has forces")
	}
	if _, err := R.Next(); !molingest.IsLastFrame(err) {
		Te.Errorf("expected the last frame, got %v", err)
	}
}

func TestWidths(Te *testing.T) {
	a := h2(3)
	a[Gaps] = fakeArray{[]int{3, 2}, []float64{7.1, 7.2, 7.3, 7.4, 7.5, 7.6}}
	a[Dipoles] = fakeArray{[]int{3, 1}, []float64{0.1, 0.2, 0.3}}
	R, err := NewReader(a, "h2.npz")
	if err != nil {
		Te.Fatal(err)
	}
	mols, err := xyz.Collect(R)
	if err != nil {
		Te.Fatal(err)
	}
	hl, ok := mols[1].Info[GapKey].([]float64)
	if !ok || len(hl) != 2 || hl[0] != 7.3 || hl[1] != 7.4 {
		Te.Errorf("wrong gaps %v", mols[1].Info[GapKey])
	}
	if d, ok := mols[2].Dipole(); !ok || len(d) != 1 || d[0] != 0.3 {
		Te.Errorf("wrong dipole %v", d)
	}
	hl[0] = 0
	if mols[2].Info[GapKey].([]float64)[0] != 7.5 {
		Te.Errorf("conformations share their gap rows")
	}
}

func TestInconsistent(Te *testing.T) {
	cases := map[string]func(fakeArrays){
		"energies": func(a fakeArrays) { a[Energies] = fakeArray{[]int{2}, []float64{1, 2}} },
		"forces":   func(a fakeArrays) { a[Forces] = fakeArray{[]int{3, 2, 2}, make([]float64, 12)} },
		"dipoles":  func(a fakeArrays) { a[Dipoles] = fakeArray{[]int{4}, make([]float64, 4)} },
		"gaps":     func(a fakeArrays) { a[Gaps] = fakeArray{[]int{5}, make([]float64, 5)} },
		"numbers":  func(a fakeArrays) { a[Numbers] = fakeArray{[]int{3}, []float64{1, 1, 1}} },
		"changing": func(a fakeArrays) { a[Numbers] = fakeArray{[]int{3, 2}, []float64{1, 1, 1, 1, 1, 8}} },
		"element":  func(a fakeArrays) { a[Numbers] = fakeArray{[]int{2}, []float64{1, 200}} },
		"shape":    func(a fakeArrays) { a[Positions] = fakeArray{[]int{3, 6}, a[Positions].data} },
		"noenergy": func(a fakeArrays) { delete(a, Energies) },
	}
	for name, spoil := range cases {
		a := h2(3)
		spoil(a)
		_, err := NewReader(a, "h2.npz")
		var perr *molingest.ParseError
		if !errors.As(err, &perr) {
			Te.Errorf("%s: expected a ParseError, got %v", name, err)
		}
	}
	_, err := NewReader(h2(3), "h2.npz", xyz.Options{Elements: []string{"C"}})
	if err == nil {
		Te.Errorf("hydrogen is not allowed, but the archive was accepted")
	}
}
