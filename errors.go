/*
 * errors.go, part of molingest.
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
	"errors"
	"fmt"
	"io"
)

//Error is the interface for errors that all packages in this module implement. The Decorate method
//adds the name of a function in the calling stack, and returns the resulting decoration slice.
//If passed an empty string, it just returns the current value.
type Error interface {
	Error() string
	Decorate(string) []string
}

//LastFrameError is returned by a Reader when the input is exhausted. It is not a failure.
//It unwraps to io.EOF.
type LastFrameError interface {
	Error
	FileName() string
	NormalLastFrameTermination() //does nothing, just to separate this interface from other errors
}

//ErrDecorate decorates err with the caller's name if err implements Error, and returns it.
//Other errors are returned unchanged.
func ErrDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}

//ParseError is returned when a raw dataset file is malformed. Line is 1-based, or 0 if the
//problem is not tied to a line.
type ParseError struct {
	File string
	Line int
	Msg  string
	Err  error
	deco []string
}

//NewParseError returns a ParseError for the given file and line.
func NewParseError(file string, line int, format string, a ...any) *ParseError {
	return &ParseError{File: file, Line: line, Msg: fmt.Sprintf(format, a...)}
}

//WrapParseError returns a ParseError with err as its cause.
func WrapParseError(file string, line int, err error) *ParseError {
	return &ParseError{File: file, Line: line, Msg: err.Error(), Err: err}
}

func (E *ParseError) Error() string {
	if E.Line > 0 {
		return fmt.Sprintf("parse error in %s, line %d: %s", E.File, E.Line, E.Msg)
	}
	return fmt.Sprintf("parse error in %s: %s", E.File, E.Msg)
}

func (E *ParseError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (E *ParseError) Unwrap() error { return E.Err }

//SchemaError is returned when a mapped record does not conform to the declared property
//definitions. Property is the property definition id and Field the offending field.
type SchemaError struct {
	Property string
	Field    string
	Msg      string
	deco     []string
}

//NewSchemaError returns a SchemaError for the given property and field.
func NewSchemaError(property, field string, format string, a ...any) *SchemaError {
	return &SchemaError{Property: property, Field: field, Msg: fmt.Sprintf(format, a...)}
}

func (E *SchemaError) Error() string {
	switch {
	case E.Field != "":
		return fmt.Sprintf("schema error in property %q, field %q: %s", E.Property, E.Field, E.Msg)
	case E.Property != "":
		return fmt.Sprintf("schema error in property %q: %s", E.Property, E.Msg)
	}
	return "schema error: " + E.Msg
}

func (E *SchemaError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//StorageError is returned when the persistence layer rejects an operation.
//The underlying cause is kept unmodified in Err.
type StorageError struct {
	Collection string
	Op         string
	Err        error
	deco       []string
}

//NewStorageError returns a StorageError for the operation op on collection.
func NewStorageError(collection, op string, err error) *StorageError {
	return &StorageError{Collection: collection, Op: op, Err: err}
}

func (E *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s on %q: %v", E.Op, E.Collection, E.Err)
}

func (E *StorageError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (E *StorageError) Unwrap() error { return E.Err }

//lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NewLastFrameError returns the error a Reader gives when filename has no more records.
func NewLastFrameError(filename string, caller string) LastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}

func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Unwrap() error { return io.EOF }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//IsLastFrame returns true if err signals the normal end of a Reader.
func IsLastFrame(err error) bool {
	var l LastFrameError
	return errors.As(err, &l)
}

//IsParseError, IsSchemaError and IsStorageError report whether the chain of err contains
//an error of the corresponding kind.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

func IsStorageError(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}
