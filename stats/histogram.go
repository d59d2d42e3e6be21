/*
 * histogram.go, part of molingest.
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

package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Histogram counts values in the bins given by a sorted slice of dividers. Values outside
//the first and last dividers are not counted.
type Histogram struct {
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

//Dividers returns n+1 evenly spaced dividers for n bins from min to max. The last
//divider is nudged up so max itself is counted.
func Dividers(min, max float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if max <= min {
		max = min + 1
	}
	d := make([]float64, n+1)
	floats.Span(d, min, max)
	d[n] += (max - min) * 1e-9
	return d
}

//NewHistogram returns a histogram with the given dividers, filled with rawdata,
//which can be nil. rawdata is not modified.
func NewHistogram(dividers []float64, rawdata []float64) *Histogram {
	if len(dividers) < 2 {
		panic("stats.NewHistogram: at least 2 dividers are needed")
	}
	H := &Histogram{dividers: append([]float64(nil), dividers...)}
	H.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		H.rehisto(append([]float64(nil), rawdata...))
	}
	return H
}

func (H *Histogram) rehisto(rawdata []float64) {
	sort.Float64s(rawdata)
	//stat.Histogram panics with values off limits, so they are removed here.
	maxi := sort.SearchFloat64s(rawdata, H.dividers[len(H.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, H.dividers[0])
	rawdata = rawdata[mini:maxi]
	H.total = len(rawdata)
	H.histo = stat.Histogram(nil, H.dividers, rawdata, nil)
}

//Add adds the given values to the histogram.
func (H *Histogram) Add(point ...float64) {
	norma := H.normalized
	if norma {
		H.UnNormalize()
	}
	last := len(H.dividers) - 1
	for _, v := range point {
		if v < H.dividers[0] || v >= H.dividers[last] {
			continue
		}
		i := sort.SearchFloat64s(H.dividers, v)
		if i == len(H.dividers) || H.dividers[i] != v {
			i--
		}
		H.histo[i]++
		H.total++
	}
	if norma {
		H.Normalize()
	}
}

//Total returns the number of values counted.
func (H *Histogram) Total() int {
	return H.total
}

//Normalized returns true if the histogram is normalized.
func (H *Histogram) Normalized() bool {
	return H.normalized
}

//Normalize divides each bin by the total count.
func (H *Histogram) Normalize() {
	H.normaunnorma(true)
}

//UnNormalize returns the bins to counts.
func (H *Histogram) UnNormalize() {
	H.normaunnorma(false)
}

func (H *Histogram) normaunnorma(normalize bool) {
	if H.total <= 0 || H.normalized == normalize {
		return
	}
	n := float64(H.total)
	if normalize {
		n = 1 / n
	}
	H.normalized = normalize
	floats.Scale(n, H.histo)
}

//Dividers returns a copy of the dividers.
func (H *Histogram) Dividers() []float64 {
	return append([]float64(nil), H.dividers...)
}

//Bins returns a copy of the bin values.
func (H *Histogram) Bins() []float64 {
	return append([]float64(nil), H.histo...)
}

//Sum returns the sum of the bins.
func (H *Histogram) Sum() float64 {
	return floats.Sum(H.histo)
}

func (H *Histogram) String() string {
	ret := fmt.Sprintf("Normalized: %v, Total: %d\n", H.normalized, H.total)
	d := make([]string, 0, len(H.histo))
	h := make([]string, 0, len(H.histo))
	for i, v := range H.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", H.dividers[i], H.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + strings.Join(d, " ") + "\n" + strings.Join(h, " ")
}

type histogramJSON struct {
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (H *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(histogramJSON{
		Normalized: H.normalized,
		Total:      H.total,
		Dividers:   H.dividers,
		Histo:      H.histo,
	})
}

func (H *Histogram) UnmarshalJSON(b []byte) error {
	var a histogramJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) < 2 || len(a.Histo) != len(a.Dividers)-1 {
		return fmt.Errorf("histogram with %d dividers and %d bins", len(a.Dividers), len(a.Histo))
	}
	H.normalized = a.Normalized
	H.total = a.Total
	H.dividers = a.Dividers
	H.histo = a.Histo
	return nil
}
