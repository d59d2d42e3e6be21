/*
 * documents.go, part of molingest.
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

package store

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/mapper"
)

//namespace for the name-based UUIDs of documents.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/rmera/molingest"))

//Prefixes of the IDs of each kind of document.
const (
	definitionPrefix    = "PD_"
	configurationPrefix = "CO_"
	propertyPrefix      = "PI_"
	setPrefix           = "CS_"
	datasetPrefix       = "DS_"
)

func newID(prefix string, content ...[]byte) ID {
	var all []byte
	for _, c := range content {
		all = append(all, c...)
		all = append(all, 0)
	}
	return ID(prefix + uuid.NewSHA1(namespace, all).String())
}

//Configuration is the document of one atomic configuration.
type Configuration struct {
	ID        ID          `json:"_id"`
	Numbers   []int       `json:"atomic_numbers"`
	Positions [][]float64 `json:"positions"`
	Cell      [][]float64 `json:"cell,omitempty"`
	PBC       [3]bool     `json:"pbc"`
	Formula   string      `json:"chemical_formula_hill"`
	Elements  []string    `json:"elements"`
	NSites    int         `json:"nsites"`
	Names     []string    `json:"names"`
}

//geometry is the content that identifies a configuration.
type geometry struct {
	Numbers   []int       `json:"atomic_numbers"`
	Positions [][]float64 `json:"positions"`
	Cell      [][]float64 `json:"cell,omitempty"`
	PBC       [3]bool     `json:"pbc"`
}

func configurationDoc(S *molingest.Structure) (*Configuration, error) {
	g := geometry{Numbers: S.Numbers(), Positions: S.Coords.Rows(), PBC: S.PBC}
	if S.Cell != nil {
		g.Cell = S.Cell.Rows()
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), S.Names...)
	sort.Strings(names)
	return &Configuration{
		ID:        newID(configurationPrefix, b),
		Numbers:   g.Numbers,
		Positions: g.Positions,
		Cell:      g.Cell,
		PBC:       g.PBC,
		Formula:   S.Formula(),
		Elements:  S.Elements(),
		NSites:    S.Len(),
		Names:     names,
	}, nil
}

//merge adds to C the names of other.
func (C *Configuration) merge(other *Configuration) {
	for _, n := range other.Names {
		found := false
		for _, m := range C.Names {
			if m == n {
				found = true
				break
			}
		}
		if !found {
			C.Names = append(C.Names, n)
		}
	}
	sort.Strings(C.Names)
}

//Property is the document of one property instance.
type Property struct {
	ID            ID                      `json:"_id"`
	Type          string                  `json:"type"`
	Definition    string                  `json:"property-id"`
	Configuration ID                      `json:"configuration"`
	Fields        map[string]mapper.Value `json:"fields"`
	Metadata      map[string]any          `json:"metadata,omitempty"`
	Dataset       string                  `json:"dataset,omitempty"`
}

func propertyDoc(p *mapper.Property, config ID, dataset string) (*Property, error) {
	fields, err := json.Marshal(p.Fields)
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(p.Metadata)
	if err != nil {
		return nil, err
	}
	return &Property{
		ID:            newID(propertyPrefix, []byte(p.ID), []byte(config), fields, meta),
		Type:          p.Name,
		Definition:    p.ID,
		Configuration: config,
		Fields:        p.Fields,
		Metadata:      p.Metadata,
		Dataset:       dataset,
	}, nil
}

//ConfigurationSet is the document of a named group of configurations.
type ConfigurationSet struct {
	ID             ID       `json:"_id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Pattern        string   `json:"pattern"`
	Configurations []ID     `json:"configurations"`
	NConfigs       int      `json:"nconfigurations"`
	NSites         int      `json:"nsites"`
	Elements       []string `json:"elements"`
}

//Dataset is the document of a dataset.
type Dataset struct {
	ID                ID             `json:"_id"`
	Name              string         `json:"name"`
	Authors           []string       `json:"authors"`
	Links             []string       `json:"links"`
	Description       string         `json:"description"`
	ConfigurationSets []ID           `json:"configuration_sets"`
	Properties        []ID           `json:"properties"`
	NConfigs          int            `json:"nconfigurations"`
	PropertyTypes     map[string]int `json:"property_types"`
	Elements          []string       `json:"elements"`
}

func idBytes(ids []ID) []byte {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = string(id)
	}
	sort.Strings(s)
	b, _ := json.Marshal(s)
	return b
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var ret []string
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			ret = append(ret, s)
		}
	}
	sort.Strings(ret)
	return ret
}
