/*
 * map.go, part of molingest.
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
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//MetadataKey is the key of the metadata in a mapping.
const MetadataKey = "_metadata"

//OptionalKey marks a mapping whose property may be missing from some structures.
const OptionalKey = "_optional"

//Source gives the value of a field: either the structure key Field, with its units, or
//the constant Value.
type Source struct {
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Units string `json:"units,omitempty" yaml:"units,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

//IsConstant returns true if the source is a constant value.
func (S Source) IsConstant() bool {
	return S.Value != nil
}

func (S Source) validate() error {
	if S.Field == "" && S.Value == nil {
		return fmt.Errorf("needs either a field or a value")
	}
	if S.Field != "" && S.Value != nil {
		return fmt.Errorf("can't have both a field and a value")
	}
	return nil
}

//Mapping binds the fields of one property definition to the values of a structure.
type Mapping struct {
	Fields   map[string]Source
	Metadata map[string]Source

	//Optional mappings are skipped for the structures that lack the values of a
	//required field, instead of failing.
	Optional bool
}

//FieldNames returns the names of the mapped fields, sorted.
func (M Mapping) FieldNames() []string {
	ret := make([]string, 0, len(M.Fields))
	for k := range M.Fields {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func (M *Mapping) fromRaw(raw map[string]any) error {
	M.Fields = make(map[string]Source)
	M.Metadata = make(map[string]Source)
	for k, v := range raw {
		switch k {
		case OptionalKey:
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%s must be a boolean", OptionalKey)
			}
			M.Optional = b
		case MetadataKey:
			meta, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%s must be a mapping", MetadataKey)
			}
			for mk, mv := range meta {
				s, err := toSource(mv)
				if err != nil {
					return fmt.Errorf("%s.%s: %w", MetadataKey, mk, err)
				}
				M.Metadata[mk] = s
			}
		default:
			s, err := toSource(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			M.Fields[k] = s
		}
	}
	return nil
}

func toSource(v any) (Source, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Source{}, fmt.Errorf("expected {field, units} or {value}, got %v", v)
	}
	var s Source
	for k, x := range m {
		switch k {
		case "field":
			s.Field = fmt.Sprint(x)
		case "units":
			if x != nil {
				s.Units = fmt.Sprint(x)
			}
		case "value":
			s.Value = x
		default:
			return s, fmt.Errorf("unknown key %q", k)
		}
	}
	return s, s.validate()
}

func (M Mapping) raw() map[string]any {
	ret := make(map[string]any, len(M.Fields)+2)
	for k, s := range M.Fields {
		ret[k] = s
	}
	if len(M.Metadata) > 0 {
		ret[MetadataKey] = M.Metadata
	}
	if M.Optional {
		ret[OptionalKey] = true
	}
	return ret
}

func (M *Mapping) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return M.fromRaw(raw)
}

func (M Mapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(M.raw())
}

func (M *Mapping) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return M.fromRaw(raw)
}

func (M Mapping) MarshalYAML() (any, error) {
	return M.raw(), nil
}

//Map is a property map: for each property name, the mappings that produce its instances.
type Map map[string][]Mapping

//Names returns the property names in the map, sorted.
func (M Map) Names() []string {
	ret := make([]string, 0, len(M))
	for k := range M {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
