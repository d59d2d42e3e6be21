/*
 * summary.go, part of molingest.
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

//Package stats summarizes the structures of a dataset: element and formula counts, and the
//distribution of the energies.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rmera/molingest"
)

//Moments describes a sample of values.
type Moments struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func moments(v []float64) Moments {
	if len(v) == 0 {
		return Moments{}
	}
	m := Moments{N: len(v), Min: floats.Min(v), Max: floats.Max(v)}
	if len(v) == 1 {
		m.Mean = v[0]
		return m
	}
	m.Mean, m.Std = stat.MeanStdDev(v, nil)
	return m
}

//Summary describes a dataset.
type Summary struct {
	Configurations int            `json:"configurations"`
	Atoms          int            `json:"atoms"`
	Elements       map[string]int `json:"elements"`
	Formulas       map[string]int `json:"formulas"`
	Names          map[string]int `json:"names"`
	Energy         Moments        `json:"energy"`
	EnergyPerAtom  Moments        `json:"energy_per_atom"`
	Key            string         `json:"energy_key"`
}

//Collector accumulates structures into a Summary.
type Collector struct {
	key      string
	s        Summary
	energies []float64
	perAtom  []float64
}

//NewCollector returns a collector that takes the energies from the Info key given, or
//from the conventional energy key if key is empty.
func NewCollector(key string) *Collector {
	if key == "" {
		key = molingest.EnergyKey
	}
	return &Collector{
		key: key,
		s: Summary{
			Elements: make(map[string]int),
			Formulas: make(map[string]int),
			Names:    make(map[string]int),
			Key:      key,
		},
	}
}

//Add adds S to the summary.
func (C *Collector) Add(S *molingest.Structure) {
	C.s.Configurations++
	C.s.Atoms += S.Len()
	for _, a := range S.Atoms {
		C.s.Elements[a.Symbol]++
	}
	C.s.Formulas[S.Formula()]++
	for _, n := range S.Names {
		C.s.Names[n]++
	}
	if e, ok := S.Float(C.key); ok && !math.IsNaN(e) && S.Len() > 0 {
		C.energies = append(C.energies, e)
		C.perAtom = append(C.perAtom, e/float64(S.Len()))
	}
}

//Energies returns the energies collected so far.
func (C *Collector) Energies() []float64 {
	return append([]float64(nil), C.energies...)
}

//Summary returns the summary of the structures added so far.
func (C *Collector) Summary() Summary {
	s := C.s
	s.Energy = moments(C.energies)
	s.EnergyPerAtom = moments(C.perAtom)
	return s
}

//Histogram returns a histogram of the energies with n bins spanning their range.
func (C *Collector) Histogram(n int) *Histogram {
	if len(C.energies) == 0 {
		return NewHistogram(Dividers(0, 1, n), nil)
	}
	return NewHistogram(Dividers(floats.Min(C.energies), floats.Max(C.energies), n), C.energies)
}

//SortedKeys returns the keys of a count map, most frequent first, then alphabetically.
func SortedKeys(m map[string]int) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool {
		if m[ret[i]] != m[ret[j]] {
			return m[ret[i]] > m[ret[j]]
		}
		return ret[i] < ret[j]
	})
	return ret
}
