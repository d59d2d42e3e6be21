/*
 * source.go, part of molingest.
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

//Package source opens the raw files of a dataset, in any of the supported formats,
//as a single lazy sequence of structures.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/nenci"
	"github.com/rmera/molingest/orbnet"
	"github.com/rmera/molingest/ws22"
	"github.com/rmera/molingest/xyz"
)

//ReadCloser is a Reader holding files open until closed.
type ReadCloser interface {
	molingest.Reader
	Close() error
}

//Source describes one set of raw files of a dataset.
type Source struct {
	//Format is one of the registered formats: xyz, extxyz, folder, nenci, orbnet or ws22.
	Format string `json:"format" yaml:"format"`

	//Path is a file or a directory. For orbnet, the directory with one subdirectory per molecule.
	Path string `json:"path" yaml:"path"`

	//Glob selects the files of a directory.
	Glob string `json:"glob,omitempty" yaml:"glob,omitempty"`

	//Labels is the labels table of orbnet sources.
	Labels string `json:"labels,omitempty" yaml:"labels,omitempty"`

	xyz.Options `json:",inline" yaml:",inline"`
}

//Opener opens a source.
type Opener func(src Source) (ReadCloser, error)

var formats = map[string]Opener{
	"xyz":    openXYZ,
	"extxyz": openXYZ,
	"folder": openFolder,
	"nenci":  openNENCI,
	"orbnet": openOrbNet,
	"ws22":   openWS22,
}

//Register adds a format, replacing any format with the same name.
func Register(format string, o Opener) {
	formats[strings.ToLower(format)] = o
}

//Formats returns the names of the registered formats, sorted.
func Formats() []string {
	ret := make([]string, 0, len(formats))
	for k := range formats {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Open opens src with the opener of its format.
func Open(src Source) (ReadCloser, error) {
	o, ok := formats[strings.ToLower(src.Format)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q, known formats: %v", src.Format, Formats())
	}
	R, err := o(src)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Open")
	}
	return R, nil
}

//OpenAll opens all the sources as one reader, each source opened only when the
//previous one is exhausted.
func OpenAll(srcs []Source) *Chain {
	openers := make([]func() (ReadCloser, error), len(srcs))
	for i, s := range srcs {
		s := s
		openers[i] = func() (ReadCloser, error) { return Open(s) }
	}
	return NewChain(openers...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

//files returns the files of dir matching pattern, sorted.
func files(dir, pattern string) ([]string, error) {
	m, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, molingest.NewParseError(dir, 0, "no files match %s", pattern)
	}
	sort.Strings(m)
	return m, nil
}

//perFile chains one reader per file in the directory src.Path, or reads the file src.Path.
func perFile(src Source, pattern string, open func(name string) (ReadCloser, error)) (ReadCloser, error) {
	if !isDir(src.Path) {
		return open(src.Path)
	}
	if src.Glob != "" {
		pattern = src.Glob
	}
	names, err := files(src.Path, pattern)
	if err != nil {
		return nil, err
	}
	openers := make([]func() (ReadCloser, error), len(names))
	for i, n := range names {
		n := n
		openers[i] = func() (ReadCloser, error) { return open(n) }
	}
	return NewChain(openers...), nil
}

func openXYZ(src Source) (ReadCloser, error) {
	return perFile(src, "*.xyz", func(name string) (ReadCloser, error) {
		return xyz.New(name, src.Options)
	})
}

//openFolder reads one structure per file, named after the file unless a name field is given.
func openFolder(src Source) (ReadCloser, error) {
	pattern := src.Glob
	if pattern == "" {
		pattern = "*.xyz"
	}
	opts := src.Options
	if opts.NameField == "" {
		opts.NameField = xyz.NameKey
	}
	return xyz.NewDirReader(src.Path, pattern, opts)
}

func openNENCI(src Source) (ReadCloser, error) {
	return perFile(src, "*.xyz", func(name string) (ReadCloser, error) {
		return nenci.New(name, src.Options)
	})
}

func openOrbNet(src Source) (ReadCloser, error) {
	labels := src.Labels
	if labels == "" {
		labels = filepath.Join(src.Path, "denali_labels.csv")
	}
	return orbnet.New(labels, src.Path, src.Options)
}

func openWS22(src Source) (ReadCloser, error) {
	return perFile(src, "*.npz", func(name string) (ReadCloser, error) {
		return ws22.New(name, src.Options)
	})
}
