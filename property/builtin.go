/*
 * builtin.go, part of molingest.
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

package property

import (
	"embed"
	"fmt"
	"path"
)

//go:embed definitions/*.json
var definitions embed.FS

//Builtin returns a new set with the built-in definitions: potential-energy, atomic-forces,
//cauchy-stress, atomization-energy, dipole-moment, interaction-energy and band-gap.
//It panics if an embedded definition is invalid.
func Builtin() Set {
	entries, err := definitions.ReadDir("definitions")
	if err != nil {
		panic(err)
	}
	S := make(Set, len(entries))
	for _, e := range entries {
		b, err := definitions.ReadFile(path.Join("definitions", e.Name()))
		if err != nil {
			panic(err)
		}
		D, err := Parse(b)
		if err != nil {
			panic(fmt.Sprintf("built-in definition %s: %v", e.Name(), err))
		}
		S[D.Name] = D
	}
	return S
}
