/*
 * dir.go, part of molingest.
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

package xyz

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rmera/molingest"
)

//NameKey is the Info key under which DirReader stores the file stem of each structure.
const NameKey = "name"

//DirReader reads, in lexical order, every file in a directory matching a glob pattern,
//as a single sequence of structures.
type DirReader struct {
	files []string
	opts  Options
	cur   *Reader
	next  int
}

//NewDirReader returns a reader over the files in dir matching pattern (e.g. "*reformat.xyz").
//Each structure gets the stem of its file under NameKey, unless the frame already sets it.
//It is an error if no file matches.
func NewDirReader(dir, pattern string, opts ...Options) (*DirReader, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, molingest.WrapParseError(dir, 0, err)
	}
	if len(files) == 0 {
		return nil, molingest.NewParseError(dir, 0, "no files match %q", pattern)
	}
	sort.Strings(files)
	D := &DirReader{files: files}
	if len(opts) > 0 {
		D.opts = opts[0]
	}
	return D, nil
}

//Files returns the files the reader goes through.
func (D *DirReader) Files() []string {
	return D.files
}

//Next returns the next structure, moving to the next file when the current one ends.
func (D *DirReader) Next() (*molingest.Structure, error) {
	for {
		if D.cur == nil {
			if D.next >= len(D.files) {
				return nil, molingest.NewLastFrameError(filepath.Dir(D.files[0]), "Next")
			}
			name := D.files[D.next]
			D.next++
			//labels are applied here, once the file stem is known.
			o := D.opts
			o.NameField, o.DefaultName = "", ""
			R, err := New(name, o)
			if err != nil {
				return nil, molingest.ErrDecorate(err, "Next")
			}
			D.cur = R
		}
		S, err := D.cur.Next()
		if molingest.IsLastFrame(err) {
			D.cur.Close()
			D.cur = nil
			continue
		}
		if err != nil {
			return nil, molingest.ErrDecorate(err, "Next")
		}
		if _, ok := S.Info[NameKey]; !ok {
			S.Info[NameKey] = Stem(S.Source)
		}
		D.opts.Label(S)
		return S, nil
	}
}

//Close closes the file being read, if any.
func (D *DirReader) Close() error {
	D.next = len(D.files)
	if D.cur != nil {
		err := D.cur.Close()
		D.cur = nil
		return err
	}
	return nil
}

//Stem returns the base name of a file without its extensions, compression included:
//"a/b/water_12.xyz.gz" gives "water_12".
func Stem(name string) string {
	base := filepath.Base(name)
	switch compression(base) {
	case "gz", "zst":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (D *DirReader) String() string {
	return fmt.Sprintf("DirReader(%d files)", len(D.files))
}
