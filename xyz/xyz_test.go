/*
 * xyz_test.go, part of molingest.
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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rmera/molingest"
)

func TestXYZRead(Te *testing.T) {
	for _, name := range []string{"testdata/h2.xyz", "testdata/h2.xyz.gz"} {
		mols, err := ReadAll(name, Options{NameField: "config_type", DefaultName: "h2"})
		if err != nil {
			Te.Fatal(err)
		}
		if len(mols) != 2 {
			Te.Fatalf("%s: expected 2 frames, got %d", name, len(mols))
		}
		S := mols[1]
		if e, ok := S.Energy(); !ok || e != -31.2 {
			Te.Errorf("%s: wrong energy %v", name, e)
		}
		if S.Coords.At(1, 0) != 0.80 || S.Index != 1 || S.Source != name {
			Te.Errorf("%s: wrong second frame %v %d %s", name, S.Coords.Rows(), S.Index, S.Source)
		}
		if len(S.Names) != 1 || S.Names[0] != "Coll_train" {
			Te.Errorf("%s: names should come from config_type, got %v", name, S.Names)
		}
	}
}

func TestExtendedXYZ(Te *testing.T) {
	mols, err := ReadAll("testdata/methane.extxyz", Options{Elements: []string{"C", "H"}, DefaultName: "methane"})
	if err != nil {
		Te.Fatal(err)
	}
	S := mols[0]
	if S.Formula() != "CH4" {
		Te.Errorf("expected CH4, got %s", S.Formula())
	}
	if S.Cell == nil || S.Cell.At(2, 2) != 10 {
		Te.Errorf("Lattice not read")
	}
	if S.PBC != [3]bool{} {
		Te.Errorf("explicit pbc should override the Lattice default, got %v", S.PBC)
	}
	f, ok := S.Forces()
	if !ok || f.At(1, 0) != -0.010 {
		Te.Errorf("forces not read")
	}
	d, ok := S.Dipole()
	if !ok || len(d) != 3 || d[2] != 0.01 {
		Te.Errorf("dipole not read: %v", d)
	}
	if S.Info["method"] != "DFT/PBE" {
		Te.Errorf("quoted string value not read: %v", S.Info["method"])
	}
	if S.Names[0] != "methane" {
		Te.Errorf("default name not applied: %v", S.Names)
	}
}

func TestShortFrame(Te *testing.T) {
	_, err := ReadAll("testdata/short.xyz")
	var perr *molingest.ParseError
	if !errors.As(err, &perr) {
		Te.Fatalf("expected a ParseError, got %v", err)
	}
	if perr.Line != 1 || !strings.Contains(perr.Msg, "3 atoms") {
		Te.Errorf("error should point to the count line and the declared count: %v", perr)
	}
}

func TestMalformed(Te *testing.T) {
	cases := map[string]string{
		"count":      "two\n\nH 0 0 0\n",
		"coordinate": "1\n\nH 0 zero 0\n",
		"element":    "1\n\nQq 0 0 0\n",
		"comment":    "1\n",
		"properties": "1\nProperties=species:S:1:pos:R:3:forces:R:3\nH 0 0 0\n",
		"lattice":    "1\nLattice=\"1 0 0\"\nH 0 0 0\n",
		"flat cell":  "1\nLattice=\"10 0 0 0 10 0 5 5 0\"\nH 0 0 0\n",
	}
	for name, data := range cases {
		R := NewReader(strings.NewReader(data), name)
		_, err := R.Next()
		if !molingest.IsParseError(err) {
			Te.Errorf("%s: expected a ParseError, got %v", name, err)
		}
		if R.Readable() {
			Te.Errorf("%s: reader should not be readable after an error", name)
		}
	}
}

func TestElementFilter(Te *testing.T) {
	_, err := ReadAll("testdata/methane.extxyz", Options{Elements: []string{"C", "N", "O"}})
	if !molingest.IsParseError(err) {
		Te.Errorf("H is not an allowed element, expected ParseError, got %v", err)
	}
}

func TestLastFrame(Te *testing.T) {
	R, err := New("testdata/h2.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	defer R.Close()
	for i := 0; i < 2; i++ {
		if _, err := R.Next(); err != nil {
			Te.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := R.Next(); !molingest.IsLastFrame(err) {
			Te.Errorf("expected the last frame error, got %v", err)
		}
	}
}

func TestWriteRead(Te *testing.T) {
	mols, err := ReadAll("testdata/methane.extxyz")
	if err != nil {
		Te.Fatal(err)
	}
	name := filepath.Join(Te.TempDir(), "methane.xyz.zst")
	W, err := NewWriter(name)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := W.WNext(mols[0]); err != nil {
			Te.Fatal(err)
		}
	}
	if err := W.Close(); err != nil {
		Te.Fatal(err)
	}
	back, err := ReadAll(name)
	if err != nil {
		Te.Fatal(err)
	}
	if len(back) != 3 {
		Te.Fatalf("expected 3 frames, got %d", len(back))
	}
	S := back[2]
	if e, _ := S.Energy(); e != -40.51 {
		Te.Errorf("energy changed: %v", e)
	}
	f, ok := S.Forces()
	if !ok || f.At(4, 0) != 0.004 {
		Te.Errorf("forces changed")
	}
	if S.Cell == nil || S.Cell.At(0, 0) != 10 || S.PBC != [3]bool{} {
		Te.Errorf("cell or pbc changed")
	}
	if S.Info["method"] != "DFT/PBE" {
		Te.Errorf("string info changed: %v", S.Info["method"])
	}
}

func TestDirReader(Te *testing.T) {
	dir := Te.TempDir()
	for _, n := range []string{"b_reformat.xyz", "a_reformat.xyz", "c_raw.xyz"} {
		data := "1\n\nHe 0 0 0\n"
		if err := os.WriteFile(filepath.Join(dir, n), []byte(data), 0o644); err != nil {
			Te.Fatal(err)
		}
	}
	D, err := NewDirReader(dir, "*reformat.xyz", Options{NameField: NameKey})
	if err != nil {
		Te.Fatal(err)
	}
	defer D.Close()
	mols, err := Collect(D)
	if err != nil {
		Te.Fatal(err)
	}
	if len(mols) != 2 {
		Te.Fatalf("expected 2 structures, got %d", len(mols))
	}
	if mols[0].Names[0] != "a_reformat" || mols[1].Names[0] != "b_reformat" {
		Te.Errorf("structures should be named after their files in order: %v %v", mols[0].Names, mols[1].Names)
	}
	plain := filepath.Join(dir, "d_reformat.extxyz")
	if err := os.WriteFile(plain, []byte("1\nrun=7 of 10\nHe 0 0 0\n"), 0o644); err != nil {
		Te.Fatal(err)
	}
	P, err := NewDirReader(dir, "*.extxyz", Options{PlainComment: true, Elements: []string{"He"}})
	if err != nil {
		Te.Fatal(err)
	}
	defer P.Close()
	S, err := P.Next()
	if err != nil {
		Te.Fatal(err)
	}
	if S.Info["comment"] != "run=7 of 10" {
		Te.Errorf("files in a directory should be read with the reader's options, got %v", S.Info)
	}
	if _, err := NewDirReader(dir, "*.xyz.gz"); !molingest.IsParseError(err) {
		Te.Errorf("no matching files should be a ParseError, got %v", err)
	}
	if Stem("a/b/water_12.xyz.gz") != "water_12" {
		Te.Errorf("wrong stem %s", Stem("a/b/water_12.xyz.gz"))
	}
}

func TestCommentParsing(Te *testing.T) {
	kv, keys, err := splitComment(`a=1 b="x y" flag c = 2.5`)
	if err != nil {
		Te.Fatal(err)
	}
	if fmt.Sprint(keys) != "[a b flag c]" || kv["b"].text != "x y" || kv["flag"].text != "T" || kv["c"].text != "2.5" {
		Te.Errorf("wrong parse: %v %v", keys, kv)
	}
	if !kv["b"].quoted || kv["a"].quoted {
		Te.Errorf("quotes not recorded: %v", kv)
	}
	if _, _, err := splitComment(`a="open`); err == nil {
		Te.Error("unterminated quote accepted")
	}
	kv, _, err = splitComment(`a="say \"hi\"\nbye" b=2`)
	if err != nil {
		Te.Fatal(err)
	}
	if kv["a"].text != "say \"hi\"\nbye" || kv["b"].text != "2" {
		Te.Errorf("escapes not read: %q %q", kv["a"].text, kv["b"].text)
	}
}

func TestStringInfo(Te *testing.T) {
	S, err := ReadAll("testdata/h2.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	strs := map[string]string{
		"mol_id":  "123",
		"flag":    "T",
		"note":    `bond "stretched"`,
		"history": "step 1\nstep 2",
		"path":    `C:\data\h2`,
		"empty":   "",
	}
	for k, v := range strs {
		S[0].Info[k] = v
	}
	var b bytes.Buffer
	W := NewStreamWriter(&b, "h2.xyz")
	if err := W.WNext(S[0]); err != nil {
		Te.Fatal(err)
	}
	if err := W.Close(); err != nil {
		Te.Fatal(err)
	}
	back, err := Collect(NewReader(&b, "h2.xyz"))
	if err != nil {
		Te.Fatal(err)
	}
	for k, v := range strs {
		if back[0].Info[k] != v {
			Te.Errorf("%s: wrote %q, read %#v", k, v, back[0].Info[k])
		}
	}
	S[0].Info["mol_id"] = "1 2"
	if err := NewStreamWriter(&b, "h2.xyz").WNext(S[0]); !molingest.IsSchemaError(err) {
		Te.Errorf("a string of numbers can not be told from a vector, expected a SchemaError, got %v", err)
	}
}

//frames writes n frames of natoms hydrogen atoms each in XYZ format.
func frames(n, natoms int) string {
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d\nenergy=%d\n", natoms, -i)
		for j := 0; j < natoms; j++ {
			fmt.Fprintf(&b, "H %d.0 0.0 %d.5\n", j, i)
		}
	}
	return b.String()
}

//The number of records read is the number of frames in the file.
func TestPropertyFrameCount(Te *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)
	properties.Property("records read equal frames declared", prop.ForAll(
		func(n, natoms int) bool {
			mols, err := Collect(NewReader(strings.NewReader(frames(n, natoms)), "gen.xyz"))
			if err != nil || len(mols) != n {
				return false
			}
			for _, S := range mols {
				if S.Len() != natoms {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 30),
		gen.IntRange(1, 12),
	))
	properties.Property("a frame with a missing atom line is a parse error", prop.ForAll(
		func(n, natoms int) bool {
			data := frames(n, natoms)
			data = data[:strings.LastIndex(strings.TrimRight(data, "\n"), "\n")+1]
			_, err := Collect(NewReader(strings.NewReader(data), "gen.xyz"))
			return molingest.IsParseError(err)
		},
		gen.IntRange(1, 10),
		gen.IntRange(2, 12),
	))
	properties.TestingRun(Te)
}
