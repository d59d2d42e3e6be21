/*
 * v3_test.go, part of molingest.
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

package v3

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("expected 3 vectors, got %d", A.NVecs())
	}
	if v := A.Vec(1); v != [3]float64{4, 5, 6} {
		Te.Errorf("wrong second vector: %v", v)
	}
	if _, err := NewMatrix([]float64{1, 2}); err == nil {
		Te.Error("a slice not divisible by 3 should not make a Matrix")
	}
}

func TestRowsAndClone(Te *testing.T) {
	A := Zeros(2)
	A.SetVec(1, [3]float64{1, 2, 3})
	rows := A.Rows()
	rows[1][0] = 10
	if A.At(1, 0) != 1 {
		Te.Error("Rows should return a copy of the data")
	}
	B := A.Clone()
	B.Set(1, 1, 4)
	if A.At(1, 1) != 2 || B.At(1, 1) != 4 {
		Te.Errorf("Clone should not share data: %v %v", A.Rows(), B.Rows())
	}
	if !mat.Equal(A, Dense2Matrix(mat.DenseCopyOf(A))) {
		Te.Errorf("matrix changed when wrapping a copy of its Dense")
	}
}

func TestDet(Te *testing.T) {
	cell, _ := NewMatrix([]float64{10, 0, 0, 0, 10, 0, 0, 0, 10})
	if d := cell.Det(); d < 999.999 || d > 1000.001 {
		Te.Errorf("cubic cell of side 10 should have volume 1000, got %f", d)
	}
	flat, _ := NewMatrix([]float64{10, 0, 0, 0, 10, 0, 5, 5, 0})
	if d := flat.Det(); d > 1e-9 || d < -1e-9 {
		Te.Errorf("coplanar cell vectors should give no volume, got %f", d)
	}
}
