/*
 * nenci.go, part of molingest.
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

//Package nenci reads the raw XYZ files of the NENCI-2021 benchmark of non-covalent
//interaction energies, and reformats them as extended XYZ.
//
//In the raw files the comment line of each complex is a space-separated list of tokens.
//The interaction energies computed at each level of theory sit at every other token,
//starting from token 16 (0-based), in the order given by Levels.
package nenci

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/xyz"
)

//Levels are the levels of theory of the interaction energies in a raw comment line, in order.
//They are also the Info keys under which the energies are stored.
var Levels = []string{
	"CCSD(T)/CBS",
	"CCSD(T)/haTZ",
	"MP2/haTZ",
	"MP2/CBS",
	"MP2/aTZ",
	"MP2/aQZ",
	"HF/haTZ",
	"HF/aTZ",
	"HF/aQZ",
	"SAPT2+/aDZTot",
}

//FirstToken is the index of the token holding the first energy. Energies are 2 tokens apart.
const FirstToken = 16

//Energies extracts the interaction energies from a raw comment line. The line is split on
//single spaces, so runs of spaces produce empty tokens that count for the indexes.
func Energies(comment string) (map[string]float64, error) {
	tokens := strings.Split(strings.TrimRight(comment, "\r\n"), " ")
	last := FirstToken + 2*(len(Levels)-1)
	if len(tokens) <= last {
		return nil, molingest.NewParseError("", 0, "comment has %d tokens, at least %d needed", len(tokens), last+1)
	}
	ret := make(map[string]float64, len(Levels))
	for i, level := range Levels {
		t := tokens[FirstToken+2*i]
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, molingest.NewParseError("", 0, "token %d (%s) is not a number: %q", FirstToken+2*i, level, t)
		}
		ret[level] = v
	}
	return ret, nil
}

//Reader reads raw NENCI files, giving structures with one Info value per level of theory.
type Reader struct {
	r *xyz.Reader
}

//New opens a raw NENCI file.
func New(name string, opts ...xyz.Options) (*Reader, error) {
	var o xyz.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	o.PlainComment = true
	r, err := xyz.New(name, o)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "New")
	}
	return &Reader{r}, nil
}

//Next returns the next complex of the file.
func (R *Reader) Next() (*molingest.Structure, error) {
	S, err := R.r.Next()
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Next")
	}
	comment, _ := S.Info["comment"].(string)
	e, err := Energies(comment)
	if err != nil {
		R.r.Close()
		perr := err.(*molingest.ParseError)
		perr.File = S.Source
		perr.Line = R.r.CommentLine()
		return nil, molingest.ErrDecorate(perr, "Next")
	}
	delete(S.Info, "comment")
	for k, v := range e {
		S.Info[k] = v
	}
	return S, nil
}

//Close closes the file.
func (R *Reader) Close() error {
	return R.r.Close()
}

//ReformatName returns the name of the reformatted file for name: "a.b.xyz" gives
//"a.b_reformat.xyz", and names with fewer dots get "_reformat" before the extension.
func ReformatName(name string) string {
	dir, base := filepath.Split(name)
	parts := strings.Split(base, ".")
	if len(parts) >= 3 {
		pre := strings.Join(parts[:len(parts)-2], ".")
		return dir + pre + "." + parts[len(parts)-2] + "_reformat." + parts[len(parts)-1]
	}
	ext := filepath.Ext(base)
	return dir + strings.TrimSuffix(base, ext) + "_reformat" + ext
}

//Reformat reads the raw NENCI file in and writes it as extended XYZ to out, with the
//energies as key=value pairs. It returns the number of complexes written.
func Reformat(in, out string) (int, error) {
	R, err := New(in)
	if err != nil {
		return 0, molingest.ErrDecorate(err, "Reformat")
	}
	defer R.Close()
	W, err := xyz.NewWriter(out)
	if err != nil {
		return 0, err
	}
	n := 0
	for {
		S, err := R.Next()
		if molingest.IsLastFrame(err) {
			break
		}
		if err != nil {
			W.Close()
			return n, molingest.ErrDecorate(err, "Reformat")
		}
		if err := W.WNext(S); err != nil {
			W.Close()
			return n, err
		}
		n++
	}
	return n, W.Close()
}

//ReformatDir reformats every file in dir matching pattern, skipping files that are
//already reformatted. It returns the names of the files written.
func ReformatDir(dir, pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	var written []string
	for _, f := range files {
		if strings.Contains(filepath.Base(f), "_reformat") {
			continue
		}
		out := ReformatName(f)
		if _, err := Reformat(f, out); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}
