/*
 * doc.go, part of molingest.
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

//Package molingest provides the structure records, errors and unit handling shared by the
//dataset readers, the schema mapper and the stores of molingest.
//
//A dataset is ingested in a single linear pass: a Reader yields Structure records from a raw
//file, mapper.Mapper turns each record into a schema-conformant mapper.Record using a set of
//property definitions, and a store.Writer persists the records under a Provenance label.
package molingest
