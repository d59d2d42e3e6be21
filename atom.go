/*
 * atom.go, part of molingest.
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
	"strings"
)

//Atom contains the information about one atom in a structure record.
type Atom struct {
	Symbol string
	Z      int
	Mass   float64
}

//NewAtom returns an atom of the element with the given symbol.
//The symbol is normalized, so "cl", "CL" and "Cl" are all chlorine.
func NewAtom(symbol string) (*Atom, error) {
	s := NormalizeSymbol(symbol)
	z, ok := symbolNumber[s]
	if !ok {
		return nil, fmt.Errorf("unknown element symbol %q", symbol)
	}
	return &Atom{Symbol: s, Z: z, Mass: symbolMass[s]}, nil
}

//AtomFromNumber returns an atom of the element with atomic number z.
func AtomFromNumber(z int) (*Atom, error) {
	if z < 1 || z >= len(numberSymbol) {
		return nil, fmt.Errorf("unsupported atomic number %d", z)
	}
	s := numberSymbol[z]
	return &Atom{Symbol: s, Z: z, Mass: symbolMass[s]}, nil
}

//Copy returns a copy of the atom.
func (A *Atom) Copy() *Atom {
	r := *A
	return &r
}

//NormalizeSymbol capitalizes the first letter of an element symbol and lowers the rest.
func NormalizeSymbol(symbol string) string {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

//numberSymbol maps atomic numbers to element symbols. Index 0 is unused.
var numberSymbol = []string{"",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
}

var symbolNumber = func() map[string]int {
	m := make(map[string]int, len(numberSymbol))
	for i, s := range numberSymbol[1:] {
		m[s] = i + 1
	}
	return m
}()

//Standard atomic weights, rounded.
var symbolMass = map[string]float64{
	"H": 1.008, "He": 4.0026,
	"Li": 6.94, "Be": 9.012, "B": 10.81, "C": 12.011, "N": 14.007, "O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974, "S": 32.06, "Cl": 35.45, "Ar": 39.948,
	"K": 39.098, "Ca": 40.078, "Sc": 44.956, "Ti": 47.867, "V": 50.942, "Cr": 51.996, "Mn": 54.938,
	"Fe": 55.845, "Co": 58.933, "Ni": 58.693, "Cu": 63.546, "Zn": 65.38, "Ga": 69.723, "Ge": 72.630,
	"As": 74.922, "Se": 78.971, "Br": 79.904, "Kr": 83.798,
	"Rb": 85.468, "Sr": 87.62, "Y": 88.906, "Zr": 91.224, "Nb": 92.906, "Mo": 95.95, "Tc": 98.0,
	"Ru": 101.07, "Rh": 102.91, "Pd": 106.42, "Ag": 107.87, "Cd": 112.41, "In": 114.82, "Sn": 118.71,
	"Sb": 121.76, "Te": 127.60, "I": 126.90, "Xe": 131.29,
}
