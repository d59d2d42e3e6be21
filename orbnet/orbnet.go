/*
 * orbnet.go, part of molingest.
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

//Package orbnet reads the OrbNet Denali training set: a CSV table of labels, and one XYZ
//file per sample under <base>/<mol_id>/<sample_id>.xyz.
package orbnet

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/xyz"
)

//Columns of the labels table.
const (
	MolID      = "mol_id"
	SampleID   = "sample_id"
	DFTEnergy  = "dft_energy"
	XTB1Energy = "xtb1_energy"
	Charge     = "charge"
)

//Info keys under which label values are attached, when they differ from the column name.
var infoKeys = map[string]string{
	DFTEnergy: molingest.EnergyKey,
}

//Reader reads the samples listed in a labels table, one row at a time.
type Reader struct {
	labels  string
	base    string
	opts    xyz.Options
	rc      io.ReadCloser
	csv     *csv.Reader
	cols    map[string]int
	line    int
	index   int
	missing int
	done    bool
}

//New opens the labels table and reads its header. base is the directory holding one
//subdirectory per mol_id.
func New(labels, base string, opts ...xyz.Options) (*Reader, error) {
	rc, err := xyz.Open(labels)
	if err != nil {
		return nil, molingest.WrapParseError(labels, 0, err)
	}
	R := &Reader{labels: labels, base: base, rc: rc, csv: csv.NewReader(rc)}
	if len(opts) > 0 {
		R.opts = opts[0]
	}
	header, err := R.csv.Read()
	if err != nil {
		rc.Close()
		return nil, molingest.NewParseError(labels, 1, "can't read header: %s", err)
	}
	R.line = 1
	R.cols = make(map[string]int, len(header))
	for i, h := range header {
		R.cols[strings.TrimSpace(h)] = i
	}
	for _, c := range []string{MolID, SampleID, DFTEnergy} {
		if _, ok := R.cols[c]; !ok {
			rc.Close()
			return nil, molingest.NewParseError(labels, 1, "missing column %q", c)
		}
	}
	return R, nil
}

//Missing returns the number of rows skipped so far because their XYZ file doesn't exist.
func (R *Reader) Missing() int {
	return R.missing
}

//Path returns the XYZ file for the given molecule and sample.
func (R *Reader) Path(mol, sample string) string {
	return filepath.Join(R.base, mol, sample+".xyz")
}

//Next returns the structure of the next row whose XYZ file exists, with the label
//values in its Info. Rows with a missing file are skipped with a warning.
func (R *Reader) Next() (*molingest.Structure, error) {
	if R.done {
		return nil, molingest.NewLastFrameError(R.labels, "Next")
	}
	for {
		rec, err := R.csv.Read()
		if errors.Is(err, io.EOF) {
			R.finish()
			return nil, molingest.NewLastFrameError(R.labels, "Next")
		}
		R.line++
		if err != nil {
			R.finish()
			return nil, molingest.ErrDecorate(molingest.WrapParseError(R.labels, R.line, err), "Next")
		}
		mol := strings.TrimSpace(rec[R.cols[MolID]])
		sample := strings.TrimSpace(rec[R.cols[SampleID]])
		path := R.Path(mol, sample)
		if _, err := os.Stat(path); err != nil {
			log.Printf("orbnet: XYZ file not found, skipping: %s", path)
			R.missing++
			continue
		}
		S, err := R.read(path)
		if err != nil {
			R.finish()
			return nil, molingest.ErrDecorate(err, "Next")
		}
		for _, c := range []string{DFTEnergy, XTB1Energy, Charge} {
			i, ok := R.cols[c]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				R.finish()
				return nil, molingest.ErrDecorate(molingest.NewParseError(R.labels, R.line, "column %s: %q is not a number", c, rec[i]), "Next")
			}
			key := c
			if k, ok := infoKeys[c]; ok {
				key = k
			}
			S.Info[key] = v
		}
		S.Info[MolID] = mol
		S.Info[SampleID] = sample
		S.Index = R.index
		R.index++
		R.opts.Label(S)
		return S, nil
	}
}

//read returns the first structure in the XYZ file at path.
func (R *Reader) read(path string) (*molingest.Structure, error) {
	o := R.opts
	o.NameField, o.DefaultName = "", ""
	X, err := xyz.New(path, o)
	if err != nil {
		return nil, err
	}
	defer X.Close()
	S, err := X.Next()
	if molingest.IsLastFrame(err) {
		return nil, molingest.NewParseError(path, 1, "no structure in file")
	}
	return S, err
}

func (R *Reader) finish() {
	if !R.done {
		R.done = true
		if R.missing > 0 {
			log.Printf("orbnet: %d rows of %s had no XYZ file", R.missing, R.labels)
		}
		R.rc.Close()
	}
}

//Close closes the labels table.
func (R *Reader) Close() error {
	R.finish()
	return nil
}
