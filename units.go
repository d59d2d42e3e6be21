/*
 * units.go, part of molingest.
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

//Conversions
const (
	H2Kcal    = 627.509474 //Hartree to kcal/mol
	Kcal2H    = 1 / H2Kcal
	H2eV      = 27.211386245988
	Kcal2eV   = H2eV / H2Kcal
	KJ2Kcal   = 1 / 4.184
	Kcal2KJ   = 4.184
	A2Bohr    = 1.889726124565
	Bohr2A    = 1 / A2Bohr
	Debye2eA  = 0.20819433622 //Debye to e*Angstrom
	eVA3toGPa = 160.21766208  //eV/Angstrom^3 to GPa
)

//Dimension is the physical dimension of a quantity.
type Dimension string

const (
	Energy        Dimension = "energy"
	Force         Dimension = "force"
	Length        Dimension = "length"
	DipoleMoment  Dimension = "dipole"
	Stress        Dimension = "stress"
	Charge        Dimension = "charge"
	Dimensionless Dimension = "none"
)

//Unit is a named unit and the factor that converts a value in it to the canonical
//unit of its dimension.
type Unit struct {
	Name   string
	Dim    Dimension
	Factor float64
}

//canonical units for each dimension. Mapped values are stored in these.
var canonical = map[Dimension]string{
	Energy:        "eV",
	Force:         "eV/Ang",
	Length:        "Ang",
	DipoleMoment:  "e*Ang",
	Stress:        "GPa",
	Charge:        "e",
	Dimensionless: "",
}

var units = map[string]Unit{
	"ev":       {"eV", Energy, 1},
	"mev":      {"meV", Energy, 1e-3},
	"hartree":  {"Hartree", Energy, H2eV},
	"ha":       {"Hartree", Energy, H2eV},
	"kcal/mol": {"kcal/mol", Energy, Kcal2eV},
	"kj/mol":   {"kJ/mol", Energy, Kcal2eV * KJ2Kcal},
	"rydberg":  {"Rydberg", Energy, H2eV / 2},
	"ry":       {"Rydberg", Energy, H2eV / 2},

	"ev/ang":       {"eV/Ang", Force, 1},
	"hartree/bohr": {"Hartree/Bohr", Force, H2eV * A2Bohr},
	"hartree/ang":  {"Hartree/Ang", Force, H2eV},
	"kcal/mol/ang": {"kcal/mol/Ang", Force, Kcal2eV},
	"kj/mol/ang":   {"kJ/mol/Ang", Force, Kcal2eV * KJ2Kcal},

	"ang":  {"Ang", Length, 1},
	"bohr": {"Bohr", Length, Bohr2A},
	"nm":   {"nm", Length, 10},

	"e*ang":  {"e*Ang", DipoleMoment, 1},
	"e*bohr": {"e*Bohr", DipoleMoment, Bohr2A},
	"debye":  {"Debye", DipoleMoment, Debye2eA},

	"gpa":      {"GPa", Stress, 1},
	"kbar":     {"kbar", Stress, 0.1},
	"bar":      {"bar", Stress, 1e-4},
	"ev/ang^3": {"eV/Ang^3", Stress, eVA3toGPa},

	"e": {"e", Charge, 1},
}

//spelling variants seen in the raw datasets, applied to each "/"-separated part.
var unitAliases = map[string]string{
	"a":         "ang",
	"å":         "ang",
	"angstrom":  "ang",
	"angstroms": "ang",
	"hartrees":  "hartree",
	"eh":        "hartree",
	"bohrs":     "bohr",
}

func normalizeUnit(name string) string {
	s := strings.ToLower(strings.Join(strings.Fields(name), ""))
	s = strings.ReplaceAll(s, "·", "*")
	parts := strings.Split(s, "/")
	for i, p := range parts {
		if a, ok := unitAliases[p]; ok {
			parts[i] = a
		}
		if strings.HasPrefix(p, "e*") {
			if a, ok := unitAliases[p[2:]]; ok {
				parts[i] = "e*" + a
			}
		}
	}
	return strings.Join(parts, "/")
}

//LookupUnit returns the Unit with the given name. Names are case-insensitive and
//common spellings ("Kcal/Mol", "Hartrees/Bohr", "eV/A") are accepted.
func LookupUnit(name string) (Unit, error) {
	u, ok := units[normalizeUnit(name)]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q", name)
	}
	return u, nil
}

//CanonicalUnit returns the unit in which values of dimension d are stored.
func CanonicalUnit(d Dimension) string {
	return canonical[d]
}

//ToCanonical converts v, expressed in the given unit, to the canonical unit of the
//unit's dimension, and returns the converted value and the canonical unit name.
func ToCanonical(v float64, unit string) (float64, string, error) {
	u, err := LookupUnit(unit)
	if err != nil {
		return 0, "", err
	}
	return v * u.Factor, canonical[u.Dim], nil
}

//Convert converts v from one unit to another of the same dimension.
func Convert(v float64, from, to string) (float64, error) {
	f, err := LookupUnit(from)
	if err != nil {
		return 0, err
	}
	t, err := LookupUnit(to)
	if err != nil {
		return 0, err
	}
	if f.Dim != t.Dim {
		return 0, fmt.Errorf("can't convert %s (%s) to %s (%s)", f.Name, f.Dim, t.Name, t.Dim)
	}
	return v * f.Factor / t.Factor, nil
}
