/*
 * conform.go, part of molingest.
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
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rmera/molingest/property"
	"github.com/rmera/molingest/v3"
)

//conform returns raw in the normalized form for a field of f's type and extent, in a
//structure with natoms atoms, or an error if it can't be made to fit.
func conform(raw any, f *property.Field, natoms int) (any, error) {
	shape := f.Extent.Shape(natoms)
	switch len(shape) {
	case 0:
		return scalar(raw, f.Type)
	case 1:
		if f.Type != property.Float && f.Type != property.Int {
			return nil, fmt.Errorf("only numeric vectors are supported")
		}
		v, err := flat(raw)
		if err != nil {
			return nil, err
		}
		if len(v) != shape[0] {
			if f.Extent.IsPerAtom() {
				return nil, fmt.Errorf("per-atom vector has %d values for %d atoms", len(v), natoms)
			}
			return nil, fmt.Errorf("vector has %d values, want %d", len(v), shape[0])
		}
		return v, nil
	case 2:
		if f.Type != property.Float && f.Type != property.Int {
			return nil, fmt.Errorf("only numeric matrices are supported")
		}
		return matrix(raw, shape, f.Extent.IsPerAtom())
	}
	return nil, fmt.Errorf("unsupported extent %v", f.Extent)
}

func scalar(raw any, typ string) (any, error) {
	switch typ {
	case property.Float:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case []float64:
			if len(v) == 1 {
				return v[0], nil
			}
		}
	case property.Int:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
	case property.Bool:
		if v, ok := raw.(bool); ok {
			return v, nil
		}
	case property.String:
		if v, ok := raw.(string); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("expected a %s scalar, got %T %v", typ, raw, raw)
}

//flat returns the values of raw in row-major order.
func flat(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		ret := make([]float64, len(v))
		copy(ret, v)
		return ret, nil
	case []any:
		ret := make([]float64, len(v))
		for i, x := range v {
			f, err := scalar(x, property.Float)
			if err != nil {
				return nil, err
			}
			ret[i] = f.(float64)
		}
		return ret, nil
	case [][]float64:
		var ret []float64
		for _, row := range v {
			ret = append(ret, row...)
		}
		return ret, nil
	case *mat.Dense:
		r, c := v.Dims()
		ret := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			ret = append(ret, mat.Row(nil, i, v)...)
		}
		return ret, nil
	case *v3.Matrix:
		return flat(v.Dense)
	case float64:
		return []float64{v}, nil
	}
	return nil, fmt.Errorf("expected numeric values, got %T", raw)
}

//matrix returns raw as a shape[0] x shape[1] matrix. A flat vector of the right
//length is reshaped in row-major order.
func matrix(raw any, shape []int, perAtom bool) ([][]float64, error) {
	rows, cols := -1, -1
	switch v := raw.(type) {
	case *mat.Dense:
		rows, cols = v.Dims()
	case *v3.Matrix:
		rows, cols = v.Dims()
	case [][]float64:
		rows = len(v)
		if rows > 0 {
			cols = len(v[0])
		}
		for _, r := range v {
			if len(r) != cols {
				return nil, fmt.Errorf("ragged matrix")
			}
		}
	}
	if rows >= 0 && (rows != shape[0] || cols != shape[1]) {
		if perAtom && rows != shape[0] {
			return nil, fmt.Errorf("per-atom array has %d rows for %d atoms", rows, shape[0])
		}
		return nil, fmt.Errorf("matrix is %dx%d, want %dx%d", rows, cols, shape[0], shape[1])
	}
	v, err := flat(raw)
	if err != nil {
		return nil, err
	}
	if len(v) != shape[0]*shape[1] {
		if perAtom {
			return nil, fmt.Errorf("per-atom array has %d values for %d atoms", len(v), shape[0])
		}
		return nil, fmt.Errorf("got %d values for a %dx%d matrix", len(v), shape[0], shape[1])
	}
	ret := make([][]float64, shape[0])
	for i := range ret {
		ret[i] = v[i*shape[1] : (i+1)*shape[1]]
	}
	return ret, nil
}
