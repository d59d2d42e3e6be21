/*
 * mapper.go, part of molingest.
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

//Package mapper converts structure records into records that conform to a set of
//property definitions, following a property map.
package mapper

import (
	"fmt"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/property"
)

//Value is the value of one field of a property instance. Data is a float64, int, bool or
//string for scalar fields, a []float64 for vectors and a [][]float64 for matrices.
//Values with units are stored in Units, converted from SourceUnits.
type Value struct {
	Data        any    `json:"data"`
	Units       string `json:"units,omitempty"`
	SourceUnits string `json:"source-units,omitempty"`
}

//Property is an instance of a property definition.
type Property struct {
	ID       string           `json:"property-id"`
	Name     string           `json:"property-name"`
	Fields   map[string]Value `json:"fields"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

//Record is a structure together with the property instances mapped from it.
//The structure is shared with the reader and must not be modified.
type Record struct {
	Structure  *molingest.Structure
	Properties []Property
}

//Property returns the first instance of the named property in the record.
func (R *Record) Property(name string) (*Property, bool) {
	for i := range R.Properties {
		if R.Properties[i].Name == name {
			return &R.Properties[i], true
		}
	}
	return nil, false
}

//Transform modifies a copy of the Info of a structure before it is mapped.
type Transform func(info map[string]any)

//SetInfo returns a Transform that sets the given Info values, such as per-atom=false.
func SetInfo(values map[string]any) Transform {
	return func(info map[string]any) {
		for k, v := range values {
			info[k] = v
		}
	}
}

//Mapper maps structures to records.
type Mapper struct {
	Definitions property.Set
	PropertyMap property.Map
	Transform   Transform
}

//New returns a Mapper after checking the map against the definitions.
func New(defs property.Set, m property.Map, t Transform) (*Mapper, error) {
	M := &Mapper{Definitions: defs, PropertyMap: m, Transform: t}
	if err := M.Validate(); err != nil {
		return nil, molingest.ErrDecorate(err, "New")
	}
	return M, nil
}

//Validate checks that every mapped property has a definition, every mapped field is
//declared, and units are given for, and only for, the fields that have units.
func (M *Mapper) Validate() error {
	for _, name := range M.PropertyMap.Names() {
		def, ok := M.Definitions[name]
		if !ok {
			return molingest.NewSchemaError(name, "", "property has no declared definition")
		}
		for _, mp := range M.PropertyMap[name] {
			for _, fname := range mp.FieldNames() {
				f, ok := def.Fields[fname]
				if !ok {
					return molingest.NewSchemaError(name, fname, "field not declared in the definition")
				}
				src := mp.Fields[fname]
				if src.IsConstant() {
					continue
				}
				switch {
				case f.HasUnit && src.Units == "":
					return molingest.NewSchemaError(name, fname, "no units declared")
				case !f.HasUnit && src.Units != "":
					return molingest.NewSchemaError(name, fname, "field has no units, but %q were declared", src.Units)
				case f.HasUnit:
					if _, err := molingest.LookupUnit(src.Units); err != nil {
						return molingest.NewSchemaError(name, fname, "%s", err)
					}
				}
			}
		}
	}
	return nil
}

//Map maps S to a record with one property instance per mapping. It fails with a
//SchemaError if a required field has no value in S, or a value does not have the type
//or shape its definition declares. Optional mappings whose required values are missing
//are skipped.
func (M *Mapper) Map(S *molingest.Structure) (*Record, error) {
	if err := M.Validate(); err != nil {
		return nil, molingest.ErrDecorate(err, "Map")
	}
	if err := S.Check(); err != nil {
		return nil, molingest.ErrDecorate(err, "Map")
	}
	info := make(map[string]any, len(S.Info))
	for k, v := range S.Info {
		info[k] = v
	}
	if M.Transform != nil {
		M.Transform(info)
	}
	rec := &Record{Structure: S}
	for _, name := range M.PropertyMap.Names() {
		def := M.Definitions[name]
		for _, mp := range M.PropertyMap[name] {
			p, missing, err := M.property(S, info, def, mp)
			if err != nil {
				if missing && mp.Optional {
					continue
				}
				return nil, molingest.ErrDecorate(err, "Map")
			}
			rec.Properties = append(rec.Properties, *p)
		}
	}
	return rec, nil
}

//property builds one instance of def. missing is true when the error is due to a
//required value absent from the structure.
func (M *Mapper) property(S *molingest.Structure, info map[string]any, def *property.Definition, mp property.Mapping) (*Property, bool, error) {
	p := &Property{ID: def.ID, Name: def.Name, Fields: make(map[string]Value)}
	for _, fname := range def.FieldNames() {
		f := def.Fields[fname]
		src, ok := mp.Fields[fname]
		if !ok {
			if f.Required {
				return nil, true, molingest.NewSchemaError(def.Name, fname, "required field is not mapped")
			}
			continue
		}
		raw, ok := lookup(S, info, src)
		if !ok {
			if f.Required {
				return nil, true, molingest.NewSchemaError(def.Name, fname, "required value %q is absent", src.Field)
			}
			continue
		}
		data, err := conform(raw, f, S.Len())
		if err != nil {
			return nil, false, molingest.NewSchemaError(def.Name, fname, "%s", err)
		}
		v := Value{Data: data}
		if f.HasUnit && !src.IsConstant() {
			v, err = convert(data, src.Units)
			if err != nil {
				return nil, false, molingest.NewSchemaError(def.Name, fname, "%s", err)
			}
		}
		p.Fields[fname] = v
	}
	if len(mp.Metadata) > 0 {
		p.Metadata = make(map[string]any, len(mp.Metadata))
		for k, src := range mp.Metadata {
			if v, ok := lookup(S, info, src); ok {
				p.Metadata[k] = v
			}
		}
	}
	return p, false, nil
}

//lookup returns the value of src: its constant, or the Info or per-atom array under its key.
func lookup(S *molingest.Structure, info map[string]any, src property.Source) (any, bool) {
	if src.IsConstant() {
		return src.Value, true
	}
	if v, ok := info[src.Field]; ok {
		return v, true
	}
	if a, ok := S.Arrays[src.Field]; ok && a != nil {
		return a, true
	}
	return nil, false
}

//convert converts data to the canonical units of the given unit.
func convert(data any, units string) (Value, error) {
	factor, canon, err := molingest.ToCanonical(1, units)
	if err != nil {
		return Value{}, err
	}
	v := Value{Units: canon, SourceUnits: units}
	switch d := data.(type) {
	case float64:
		v.Data = d * factor
	case int:
		if factor != 1 {
			return Value{}, fmt.Errorf("integer values can't be converted from %s to %s", units, canon)
		}
		v.Data = d
	case []float64:
		c := make([]float64, len(d))
		for i, x := range d {
			c[i] = x * factor
		}
		v.Data = c
	case [][]float64:
		c := make([][]float64, len(d))
		for i, row := range d {
			c[i] = make([]float64, len(row))
			for j, x := range row {
				c[i][j] = x * factor
			}
		}
		v.Data = c
	default:
		return Value{}, fmt.Errorf("can't convert %T values", data)
	}
	return v, nil
}

//Each maps every structure of R, calling fn with each record. It stops at the end
//of R or at the first error, from R, the mapping or fn.
func (M *Mapper) Each(R molingest.Reader, fn func(*Record) error) error {
	for {
		S, err := R.Next()
		if molingest.IsLastFrame(err) {
			return nil
		}
		if err != nil {
			return molingest.ErrDecorate(err, "Each")
		}
		rec, err := M.Map(S)
		if err != nil {
			return molingest.ErrDecorate(err, "Each")
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

//MapAll maps every structure of R and returns the records.
func (M *Mapper) MapAll(R molingest.Reader) ([]*Record, error) {
	var recs []*Record
	err := M.Each(R, func(r *Record) error {
		recs = append(recs, r)
		return nil
	})
	if err != nil {
		return nil, molingest.ErrDecorate(err, "MapAll")
	}
	return recs, nil
}
