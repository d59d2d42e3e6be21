/*
 * db.go, part of molingest.
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
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/mapper"
	"github.com/rmera/molingest/property"
)

//Store implements Database on top of a backend.
type Store struct {
	b backend
}

var _ Database = (*Store)(nil)

func storageErr(collection, op string, err error) error {
	return molingest.ErrDecorate(molingest.NewStorageError(collection, op, err), op)
}

//Submit writes the records and their configurations in a single batch.
//A configuration already in the collection keeps its ID and gains the names of the new
//record. Records are not modified.
func (D *Store) Submit(ctx context.Context, collection string, recs []*mapper.Record, defs property.Set, prov molingest.Provenance) ([]ID, error) {
	ids, _, err := D.InsertData(ctx, collection, recs, defs, prov)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Submit")
	}
	return ids, nil
}

//InsertData is Submit, but it also returns the IDs of the properties written, in the
//order of the records and of their properties.
func (D *Store) InsertData(ctx context.Context, collection string, recs []*mapper.Record, defs property.Set, prov molingest.Provenance) ([]ID, []ID, error) {
	const op = "InsertData"
	ids := make([]ID, len(recs))
	var props []ID
	configs := make(map[ID]*Configuration)
	var order []ID
	var docs []doc
	for i, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, nil, storageErr(collection, op, err)
		}
		c, err := configurationDoc(r.Structure)
		if err != nil {
			return nil, nil, storageErr(collection, op, err)
		}
		ids[i] = c.ID
		if old, ok := configs[c.ID]; ok {
			old.merge(c)
		} else {
			stored, found, err := D.configuration(ctx, collection, c.ID)
			if err != nil {
				return nil, nil, storageErr(collection, op, err)
			}
			if found {
				stored.merge(c)
				c = stored
			}
			configs[c.ID] = c
			order = append(order, c.ID)
		}
		for j := range r.Properties {
			p := &r.Properties[j]
			def, ok := defs[p.Name]
			if !ok || def.ID != p.ID {
				return nil, nil, molingest.ErrDecorate(molingest.NewSchemaError(p.Name, "", "no matching definition given"), op)
			}
			pd, err := propertyDoc(p, c.ID, prov.Name)
			if err != nil {
				return nil, nil, storageErr(collection, op, err)
			}
			b, err := json.Marshal(pd)
			if err != nil {
				return nil, nil, storageErr(collection, op, err)
			}
			docs = append(docs, doc{Properties, pd.ID, b})
			props = append(props, pd.ID)
		}
	}
	for _, id := range order {
		b, err := json.Marshal(configs[id])
		if err != nil {
			return nil, nil, storageErr(collection, op, err)
		}
		docs = append(docs, doc{Configurations, id, b})
	}
	if err := D.b.write(ctx, collection, docs); err != nil {
		return nil, nil, storageErr(collection, op, err)
	}
	return ids, props, nil
}

func (D *Store) configuration(ctx context.Context, collection string, id ID) (*Configuration, bool, error) {
	b, ok, err := D.b.get(ctx, collection, Configurations, id)
	if err != nil || !ok {
		return nil, false, err
	}
	c := new(Configuration)
	if err := json.Unmarshal(b, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (D *Store) InsertPropertyDefinition(ctx context.Context, collection string, def *property.Definition) (ID, error) {
	const op = "InsertPropertyDefinition"
	if err := def.Validate(); err != nil {
		return "", molingest.ErrDecorate(err, op)
	}
	id := newID(definitionPrefix, []byte(def.Name))
	old, found, err := D.b.get(ctx, collection, Definitions, id)
	if err != nil {
		return "", storageErr(collection, op, err)
	}
	if found {
		var stored property.Definition
		if err := json.Unmarshal(old, &stored); err != nil {
			return "", storageErr(collection, op, err)
		}
		if stored.ID != def.ID {
			return "", storageErr(collection, op, fmt.Errorf("definition %s already stored with id %s", def.Name, stored.ID))
		}
	}
	b, err := json.Marshal(def)
	if err != nil {
		return "", storageErr(collection, op, err)
	}
	if err := D.b.write(ctx, collection, []doc{{Definitions, id, b}}); err != nil {
		return "", storageErr(collection, op, err)
	}
	return id, nil
}

func (D *Store) PropertyIDs(ctx context.Context, collection string, configs []ID) ([]ID, error) {
	want := make(map[ID]bool, len(configs))
	for _, c := range configs {
		want[c] = true
	}
	var ret []ID
	err := D.b.each(ctx, collection, Properties, func(id ID, b []byte) error {
		var p struct {
			Configuration ID `json:"configuration"`
		}
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		if want[p.Configuration] {
			ret = append(ret, id)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(collection, "PropertyIDs", err)
	}
	return ret, nil
}

func (D *Store) InsertConfigurationSet(ctx context.Context, collection, name, description, pattern string, ids []ID) (ID, error) {
	const op = "InsertConfigurationSet"
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", storageErr(collection, op, err)
	}
	var among map[ID]bool
	if ids != nil {
		among = make(map[ID]bool, len(ids))
		for _, id := range ids {
			among[id] = true
		}
	}
	set := &ConfigurationSet{Name: name, Description: description, Pattern: pattern, Configurations: []ID{}}
	err = D.b.each(ctx, collection, Configurations, func(id ID, b []byte) error {
		if among != nil && !among[id] {
			return nil
		}
		var c Configuration
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		for _, n := range c.Names {
			if re.MatchString(n) {
				set.Configurations = append(set.Configurations, id)
				set.NSites += c.NSites
				set.Elements = union(set.Elements, c.Elements)
				break
			}
		}
		return nil
	})
	if err != nil {
		return "", storageErr(collection, op, err)
	}
	set.NConfigs = len(set.Configurations)
	set.ID = newID(setPrefix, []byte(name), []byte(description), idBytes(set.Configurations))
	b, err := json.Marshal(set)
	if err != nil {
		return "", storageErr(collection, op, err)
	}
	if err := D.b.write(ctx, collection, []doc{{ConfigurationSets, set.ID, b}}); err != nil {
		return "", storageErr(collection, op, err)
	}
	return set.ID, nil
}

func (D *Store) InsertDataset(ctx context.Context, collection string, prov molingest.Provenance, sets, props []ID) (ID, error) {
	const op = "InsertDataset"
	if err := prov.Validate(); err != nil {
		return "", storageErr(collection, op, err)
	}
	ds := &Dataset{
		Name:              prov.Name,
		Authors:           prov.Authors,
		Links:             prov.Links,
		Description:       prov.Description,
		ConfigurationSets: append([]ID{}, sets...),
		Properties:        append([]ID{}, props...),
		PropertyTypes:     make(map[string]int),
	}
	configs := make(map[ID]bool)
	for _, id := range sets {
		b, ok, err := D.b.get(ctx, collection, ConfigurationSets, id)
		if err == nil && !ok {
			err = fmt.Errorf("no configuration set %s", id)
		}
		if err != nil {
			return "", storageErr(collection, op, err)
		}
		var cs ConfigurationSet
		if err := json.Unmarshal(b, &cs); err != nil {
			return "", storageErr(collection, op, err)
		}
		for _, c := range cs.Configurations {
			configs[c] = true
		}
		ds.Elements = union(ds.Elements, cs.Elements)
	}
	ds.NConfigs = len(configs)
	for _, id := range props {
		b, ok, err := D.b.get(ctx, collection, Properties, id)
		if err == nil && !ok {
			err = fmt.Errorf("no property %s", id)
		}
		if err != nil {
			return "", storageErr(collection, op, err)
		}
		var p struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(b, &p); err != nil {
			return "", storageErr(collection, op, err)
		}
		ds.PropertyTypes[p.Type]++
	}
	sort.Slice(ds.ConfigurationSets, func(i, j int) bool { return ds.ConfigurationSets[i] < ds.ConfigurationSets[j] })
	ds.ID = newID(datasetPrefix, []byte(prov.Name), idBytes(sets), idBytes(props))
	b, err := json.Marshal(ds)
	if err != nil {
		return "", storageErr(collection, op, err)
	}
	if err := D.b.write(ctx, collection, []doc{{Datasets, ds.ID, b}}); err != nil {
		return "", storageErr(collection, op, err)
	}
	return ds.ID, nil
}

func (D *Store) Documents(ctx context.Context, collection string, kind Kind, fn func(ID, []byte) error) error {
	if err := D.b.each(ctx, collection, kind, fn); err != nil {
		return storageErr(collection, "Documents", err)
	}
	return nil
}

//Configurations returns the configurations in the collection.
func (D *Store) Configurations(ctx context.Context, collection string) ([]*Configuration, error) {
	var ret []*Configuration
	err := D.Documents(ctx, collection, Configurations, func(_ ID, b []byte) error {
		c := new(Configuration)
		if err := json.Unmarshal(b, c); err != nil {
			return err
		}
		ret = append(ret, c)
		return nil
	})
	return ret, err
}

//Dataset returns the dataset with the given ID.
func (D *Store) Dataset(ctx context.Context, collection string, id ID) (*Dataset, error) {
	b, ok, err := D.b.get(ctx, collection, Datasets, id)
	if err == nil && !ok {
		err = fmt.Errorf("no dataset %s", id)
	}
	if err != nil {
		return nil, storageErr(collection, "Dataset", err)
	}
	ds := new(Dataset)
	if err := json.Unmarshal(b, ds); err != nil {
		return nil, storageErr(collection, "Dataset", err)
	}
	return ds, nil
}

func (D *Store) Reset(ctx context.Context, collection string) error {
	if err := D.b.reset(ctx, collection); err != nil {
		return storageErr(collection, "Reset", err)
	}
	return nil
}

func (D *Store) Close() error {
	return D.b.close()
}
