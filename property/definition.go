/*
 * definition.go, part of molingest.
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

//Package property holds the property definitions records are mapped to, and the
//property maps that bind definition fields to the values of a dataset.
//
//Definitions are read from and written to the JSON layout of the KIM property
//definitions: "property-id", "property-name", "property-title" and
//"property-description" keys, plus one object per field.
package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rmera/molingest"
)

//Field types.
const (
	Float  = "float"
	Int    = "int"
	Bool   = "bool"
	String = "string"
)

//PerAtom in an extent stands for the number of atoms of the structure (":" in JSON).
const PerAtom = -1

//Extent is the shape of a field. An empty extent is a scalar.
type Extent []int

//Shape returns the shape of the extent for a structure with natoms atoms.
func (E Extent) Shape(natoms int) []int {
	ret := make([]int, len(E))
	for i, d := range E {
		if d == PerAtom {
			d = natoms
		}
		ret[i] = d
	}
	return ret
}

//IsPerAtom returns true if the first dimension of the extent is the number of atoms.
func (E Extent) IsPerAtom() bool {
	return len(E) > 0 && E[0] == PerAtom
}

func (E Extent) MarshalJSON() ([]byte, error) {
	parts := make([]any, len(E))
	for i, d := range E {
		if d == PerAtom {
			parts[i] = ":"
		} else {
			parts[i] = d
		}
	}
	return json.Marshal(parts)
}

func (E *Extent) UnmarshalJSON(b []byte) error {
	var parts []any
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	ext := make(Extent, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			if v != ":" {
				return fmt.Errorf("invalid extent %q", v)
			}
			ext[i] = PerAtom
		case float64:
			if v < 1 || v != float64(int(v)) {
				return fmt.Errorf("invalid extent %v", v)
			}
			ext[i] = int(v)
		default:
			return fmt.Errorf("invalid extent %v", p)
		}
	}
	*E = ext
	return nil
}

//Field is one field of a property definition.
type Field struct {
	Type        string `json:"type"`
	HasUnit     bool   `json:"has-unit"`
	Extent      Extent `json:"extent"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

//Definition is a property definition.
type Definition struct {
	ID          string
	Name        string
	Title       string
	Description string
	Fields      map[string]*Field
}

var header = []string{"property-id", "property-name", "property-title", "property-description"}

//FieldNames returns the names of the fields of the definition, sorted.
func (D *Definition) FieldNames() []string {
	ret := make([]string, 0, len(D.Fields))
	for k := range D.Fields {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Validate checks that the definition is complete and its fields well formed.
func (D *Definition) Validate() error {
	if D.ID == "" || D.Name == "" {
		return molingest.NewSchemaError(D.Name, "", "definitions need an id and a name")
	}
	if len(D.Fields) == 0 {
		return molingest.NewSchemaError(D.Name, "", "definition has no fields")
	}
	for _, name := range D.FieldNames() {
		f := D.Fields[name]
		switch f.Type {
		case Float, Int, Bool, String:
		default:
			return molingest.NewSchemaError(D.Name, name, "unknown type %q", f.Type)
		}
		if f.HasUnit && f.Type != Float && f.Type != Int {
			return molingest.NewSchemaError(D.Name, name, "fields of type %s can't have units", f.Type)
		}
		for i, d := range f.Extent {
			if d == PerAtom && i != 0 {
				return molingest.NewSchemaError(D.Name, name, "only the first dimension can be per-atom")
			}
		}
		if len(f.Extent) > 2 {
			return molingest.NewSchemaError(D.Name, name, "extents of more than 2 dimensions are not supported")
		}
	}
	return nil
}

func (D *Definition) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"property-id":          D.ID,
		"property-name":        D.Name,
		"property-title":       D.Title,
		"property-description": D.Description,
	}
	for k, f := range D.Fields {
		m[k] = f
	}
	return json.Marshal(m)
}

func (D *Definition) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	str := make([]string, len(header))
	for i, h := range header {
		raw, ok := m[h]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &str[i]); err != nil {
			return fmt.Errorf("%s: %w", h, err)
		}
		delete(m, h)
	}
	D.ID, D.Name, D.Title, D.Description = str[0], str[1], str[2], str[3]
	D.Fields = make(map[string]*Field, len(m))
	for k, raw := range m {
		f := new(Field)
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(f); err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		if f.Extent == nil {
			f.Extent = Extent{}
		}
		D.Fields[k] = f
	}
	return nil
}

//Parse reads a definition in JSON and validates it.
func Parse(b []byte) (*Definition, error) {
	D := new(Definition)
	if err := json.Unmarshal(b, D); err != nil {
		return nil, molingest.NewSchemaError("", "", "invalid definition: %s", err)
	}
	if err := D.Validate(); err != nil {
		return nil, err
	}
	return D, nil
}

//Load reads a definition from a JSON file.
func Load(name string) (*Definition, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	D, err := Parse(b)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Load "+name)
	}
	return D, nil
}

//Set is a collection of definitions indexed by property name.
type Set map[string]*Definition

//Add adds D to the set. Adding a definition with the name of another one is an error.
func (S Set) Add(D *Definition) error {
	if old, ok := S[D.Name]; ok && old.ID != D.ID {
		return molingest.NewSchemaError(D.Name, "", "two definitions named %s: %s and %s", D.Name, old.ID, D.ID)
	}
	S[D.Name] = D
	return nil
}

//Names returns the property names in the set, sorted.
func (S Set) Names() []string {
	ret := make([]string, 0, len(S))
	for k := range S {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Resolve returns a set with the definitions named in names. A name is either the name of
//a built-in definition or the path of a JSON definition file.
func Resolve(names []string) (Set, error) {
	S := make(Set, len(names))
	builtin := Builtin()
	for _, n := range names {
		D, ok := builtin[n]
		if !ok {
			if !strings.HasSuffix(strings.ToLower(n), ".json") {
				return nil, molingest.NewSchemaError(n, "", "no built-in definition %s, and not a JSON file", n)
			}
			var err error
			if D, err = Load(n); err != nil {
				return nil, err
			}
		}
		if err := S.Add(D); err != nil {
			return nil, err
		}
	}
	return S, nil
}
