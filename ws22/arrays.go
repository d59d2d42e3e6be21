/*
 * arrays.go, part of molingest.
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
	"fmt"
	"strings"

	"github.com/sbinet/npyio/npz"
)

//Arrays gives access to named numeric arrays, flattened in C order.
type Arrays interface {
	Has(name string) bool
	Shape(name string) ([]int, error)
	Floats(name string) ([]float64, error)
	Close() error
}

//NPZ reads arrays from a NumPy .npz archive.
type NPZ struct {
	r    *npz.Reader
	keys map[string]string
}

//OpenNPZ opens the named .npz archive.
func OpenNPZ(name string) (*NPZ, error) {
	r, err := npz.Open(name)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]string)
	for _, k := range r.Keys() {
		keys[strings.TrimSuffix(k, ".npy")] = k
	}
	return &NPZ{r: r, keys: keys}, nil
}

func (N *NPZ) key(name string) (string, error) {
	k, ok := N.keys[name]
	if !ok {
		return "", fmt.Errorf("no array %q in archive", name)
	}
	return k, nil
}

func (N *NPZ) Has(name string) bool {
	_, ok := N.keys[name]
	return ok
}

func (N *NPZ) Shape(name string) ([]int, error) {
	k, err := N.key(name)
	if err != nil {
		return nil, err
	}
	h := N.r.Header(k)
	if h == nil {
		return nil, fmt.Errorf("no header for array %q", name)
	}
	return h.Descr.Shape, nil
}

//Floats reads the named array as float64, converting from the integer and
//single precision types numpy uses for atomic numbers and positions.
//Arrays stored in Fortran order are returned in C order.
func (N *NPZ) Floats(name string) ([]float64, error) {
	k, err := N.key(name)
	if err != nil {
		return nil, err
	}
	h := N.r.Header(k)
	if h == nil {
		return nil, fmt.Errorf("no header for array %q", name)
	}
	var v []float64
	typ := strings.TrimLeft(h.Descr.Type, "<>|=")
	switch typ {
	case "f8":
		err = N.r.Read(k, &v)
	case "f4":
		v, err = readAs[float32](N.r, k)
	case "i8":
		v, err = readAs[int64](N.r, k)
	case "i4":
		v, err = readAs[int32](N.r, k)
	case "u1":
		v, err = readAs[uint8](N.r, k)
	default:
		return nil, fmt.Errorf("array %q has unsupported type %s", name, h.Descr.Type)
	}
	if err != nil {
		return nil, err
	}
	if h.Descr.Fortran {
		return cOrder(v, h.Descr.Shape)
	}
	return v, nil
}

func readAs[T float32 | int64 | int32 | uint8](r *npz.Reader, key string) ([]float64, error) {
	var v []T
	if err := r.Read(key, &v); err != nil {
		return nil, err
	}
	return convert(v), nil
}

//cOrder returns the values of an array of the given shape, stored in Fortran
//(column-major) order, in C (row-major) order.
func cOrder(v []float64, shape []int) ([]float64, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(v) {
		return nil, fmt.Errorf("%d values for shape %v", len(v), shape)
	}
	ret := make([]float64, n)
	idx := make([]int, len(shape))
	for c := range ret {
		f, stride := 0, 1
		for d, i := range idx {
			f += i * stride
			stride *= shape[d]
		}
		ret[c] = v[f]
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return ret, nil
}

func (N *NPZ) Close() error {
	return N.r.Close()
}

func convert[T float32 | int64 | int32 | uint8](v []T) []float64 {
	ret := make([]float64, len(v))
	for i, x := range v {
		ret[i] = float64(x)
	}
	return ret
}
