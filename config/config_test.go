/*
 * config_test.go, part of molingest.
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

package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/molingest/mapper"
	"github.com/rmera/molingest/property"
)

func TestLoadYAML(Te *testing.T) {
	job, err := LoadFromFile("testdata/job.yaml")
	if err != nil {
		Te.Fatal(err)
	}
	if err := job.Validate(); err != nil {
		Te.Fatal(err)
	}
	if job.Collection != "test_collection" || !job.Drop || job.Dataset.Name != "H2" {
		Te.Errorf("wrong job header %+v", job)
	}
	if job.Database != filepath.Join("testdata", "data", "test.db") {
		Te.Errorf("database path not resolved: %s", job.Database)
	}
	src := job.Sources[0]
	if src.Path != filepath.Join("testdata", "h2.xyz") || src.NameField != "config_type" || src.DefaultName != "H2" {
		Te.Errorf("wrong source %+v", src)
	}
	if len(src.Elements) != 1 || src.Elements[0] != "H" {
		Te.Errorf("wrong elements %v", src.Elements)
	}
	if job.Definitions[0] != "potential-energy" || job.Definitions[1] != filepath.Join("testdata", "extra.json") {
		Te.Errorf("wrong definitions %v", job.Definitions)
	}
	pe := job.PropertyMap["potential-energy"][0]
	if pe.Fields["energy"].Units != "eV" || pe.Metadata["method"].Value != "DFT" {
		Te.Errorf("wrong mapping %+v", pe)
	}
	if v, ok := job.Transform["per-atom"].(bool); !ok || v {
		Te.Errorf("wrong transform %v", job.Transform)
	}
	if job.Sets[0].Pattern != "^Coll_train" || job.Sets[1].Pattern != ".*" {
		Te.Errorf("wrong set patterns %+v", job.Sets)
	}
	if job.Export.Path != "/tmp/h2.jsonl.zst" {
		Te.Errorf("absolute paths should be kept, got %s", job.Export.Path)
	}
	if job.BatchSize != 500 || job.Stats.Bins != 50 || job.Stats.EnergyKey != "energy" {
		Te.Errorf("defaults not set: %d %d %s", job.BatchSize, job.Stats.Bins, job.Stats.EnergyKey)
	}
}

func TestLoadJSON(Te *testing.T) {
	job, err := LoadFromFile("testdata/job.json")
	if err != nil {
		Te.Fatal(err)
	}
	if err := job.Validate(); err != nil {
		Te.Fatal(err)
	}
	if job.Collection != "json_collection" || job.BatchSize != 10 {
		Te.Errorf("wrong job %+v", job)
	}
	if job.Database != DefaultJob().Database {
		Te.Errorf("default database not kept: %s", job.Database)
	}
	if job.Sources[0].Path != "/data/methane.extxyz" {
		Te.Errorf("absolute path changed: %s", job.Sources[0].Path)
	}
	if v := job.PropertyMap["potential-energy"][0].Fields["per-atom"].Value; v != false {
		Te.Errorf("wrong constant %v", v)
	}
}

func TestLoadErrors(Te *testing.T) {
	if _, err := LoadFromFile("testdata/missing.yaml"); err == nil {
		Te.Errorf("missing file should fail")
	}
	if _, err := LoadFromFile("config.go"); err == nil || !strings.Contains(err.Error(), "unsupported") {
		Te.Errorf("expected an unsupported format error, got %v", err)
	}
}

func TestLoadFromEnv(Te *testing.T) {
	Te.Setenv("MOLINGEST_DB", "memory")
	Te.Setenv("MOLINGEST_COLLECTION", "env_collection")
	Te.Setenv("MOLINGEST_BATCH_SIZE", "7")
	Te.Setenv("MOLINGEST_S3_ENDPOINT", "localhost:9000")
	Te.Setenv("MOLINGEST_S3_BUCKET", "datasets")
	Te.Setenv("MOLINGEST_S3_SECURE", "true")
	job, err := LoadFromFile("testdata/job.yaml")
	if err != nil {
		Te.Fatal(err)
	}
	LoadFromEnv(job)
	if job.Database != MemoryDatabase || job.Collection != "env_collection" || job.BatchSize != 7 {
		Te.Errorf("env not applied: %+v", job)
	}
	s3 := job.Export.S3
	if s3.Endpoint != "localhost:9000" || s3.Bucket != "datasets" || !s3.Secure {
		Te.Errorf("S3 env not applied: %+v", s3)
	}
	job.Export.Upload = true
	if err := job.Validate(); err != nil {
		Te.Errorf("upload with endpoint and bucket should be valid: %v", err)
	}
}

func TestValidate(Te *testing.T) {
	valid := func() *Job {
		job, err := LoadFromFile("testdata/job.yaml")
		if err != nil {
			Te.Fatal(err)
		}
		return job
	}
	cases := map[string]func(*Job){
		"collection": func(J *Job) { J.Collection = "" },
		"dataset":    func(J *Job) { J.Dataset.Name = " " },
		"sources":    func(J *Job) { J.Sources = nil },
		"format":     func(J *Job) { J.Sources[0].Format = "pdb" },
		"path":       func(J *Job) { J.Sources[0].Path = "" },
		"definition": func(J *Job) { J.Definitions = nil },
		"map":        func(J *Job) { J.PropertyMap = nil },
		"set":        func(J *Job) { J.Sets[0].Pattern = "(" },
		"setname":    func(J *Job) { J.Sets[0].Name = "" },
		"batch":      func(J *Job) { J.BatchSize = 0 },
		"reformat":   func(J *Job) { J.Reformat = &Reformat{Format: "orbnet"} },
		"upload":     func(J *Job) { J.Export.Upload = true },
	}
	for name, spoil := range cases {
		job := valid()
		spoil(job)
		if err := job.Validate(); err == nil {
			Te.Errorf("%s: expected a validation error", name)
		}
	}
}

//The jobs shipped with the repository must be valid, and their property maps must agree
//with their definitions.
func TestDatasets(Te *testing.T) {
	jobs, err := filepath.Glob("../datasets/*.yaml")
	if err != nil {
		Te.Fatal(err)
	}
	if len(jobs) < 6 {
		Te.Fatalf("expected at least 6 dataset jobs, found %d", len(jobs))
	}
	for _, name := range jobs {
		job, err := LoadFromFile(name)
		if err != nil {
			Te.Errorf("%s: %v", name, err)
			continue
		}
		if err := job.Validate(); err != nil {
			Te.Errorf("%s: %v", name, err)
			continue
		}
		defs, err := property.Resolve(job.Definitions)
		if err != nil {
			Te.Errorf("%s: %v", name, err)
			continue
		}
		if _, err := mapper.New(defs, job.PropertyMap, mapper.SetInfo(job.Transform)); err != nil {
			Te.Errorf("%s: %v", name, err)
		}
	}
}
