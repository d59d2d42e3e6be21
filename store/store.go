/*
 * store.go, part of molingest.
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

//Package store persists mapped records as documents: property definitions, configurations,
//property instances, configuration sets and datasets. Documents live in named collections
//and are kept by a backend, SQLite or memory.
package store

import (
	"context"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/mapper"
	"github.com/rmera/molingest/property"
)

//ID identifies a document. IDs are derived from the document content, so inserting the
//same content twice gives the same ID.
type ID string

//Kind is a kind of document, and the name of the table that keeps it.
type Kind string

const (
	Definitions       Kind = "property_definitions"
	Configurations    Kind = "configurations"
	Properties        Kind = "properties"
	ConfigurationSets Kind = "configuration_sets"
	Datasets          Kind = "datasets"
)

//Kinds lists all the kinds of documents, in the order they are exported.
var Kinds = []Kind{Definitions, Configurations, Properties, ConfigurationSets, Datasets}

//Writer persists mapped records.
type Writer interface {
	//Submit writes the records to the collection, with their configurations, and returns
	//the ID of the configuration of each record. Every property of the records must have
	//its definition in defs. Failures are returned as StorageErrors, with the cause unmodified.
	Submit(ctx context.Context, collection string, recs []*mapper.Record, defs property.Set, prov molingest.Provenance) ([]ID, error)
}

//Database is a Writer that also groups what was written into configuration sets and datasets.
type Database interface {
	Writer

	//InsertPropertyDefinition stores a definition. Storing it again is not an error,
	//but storing another definition with the same name is.
	InsertPropertyDefinition(ctx context.Context, collection string, def *property.Definition) (ID, error)

	//InsertData is Submit, also returning the IDs of the properties written by the call.
	//A dataset is made of these, not of every property its configurations have.
	InsertData(ctx context.Context, collection string, recs []*mapper.Record, defs property.Set, prov molingest.Provenance) (configs, props []ID, err error)

	//PropertyIDs returns the IDs of all the properties of the given configurations, whatever
	//call or dataset wrote them.
	PropertyIDs(ctx context.Context, collection string, configs []ID) ([]ID, error)

	//InsertConfigurationSet groups the configurations among ids (or among all those in the
	//collection, if ids is nil) with a name matching the regular expression pattern.
	InsertConfigurationSet(ctx context.Context, collection, name, description, pattern string, ids []ID) (ID, error)

	//InsertDataset stores a dataset made of the given configuration sets and properties.
	InsertDataset(ctx context.Context, collection string, prov molingest.Provenance, sets, props []ID) (ID, error)

	//Documents calls fn with each document of the given kind in the collection, in
	//insertion order.
	Documents(ctx context.Context, collection string, kind Kind, fn func(ID, []byte) error) error

	//Reset deletes every document in the collection.
	Reset(ctx context.Context, collection string) error

	Close() error
}

//doc is a document to write.
type doc struct {
	kind Kind
	id   ID
	data []byte
}

//backend keeps documents. Writes of a batch are atomic.
type backend interface {
	get(ctx context.Context, collection string, kind Kind, id ID) ([]byte, bool, error)
	each(ctx context.Context, collection string, kind Kind, fn func(ID, []byte) error) error
	write(ctx context.Context, collection string, docs []doc) error
	reset(ctx context.Context, collection string) error
	close() error
}
