/*
 * config.go, part of molingest.
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

//Package config loads dataset jobs: which raw files to read, how to map them and where
//to store them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/archive"
	"github.com/rmera/molingest/property"
	"github.com/rmera/molingest/source"
)

//MemoryDatabase as the database keeps documents in memory only.
const MemoryDatabase = "memory"

//Job describes the ingestion of one dataset.
type Job struct {
	//Collection is the name of the collection the documents go to.
	Collection string `json:"collection" yaml:"collection"`

	//Database is the path of the SQLite database, or "memory".
	Database string `json:"database" yaml:"database"`

	//Drop empties the collection before ingesting.
	Drop bool `json:"drop" yaml:"drop"`

	//Dataset names the dataset and its source study.
	Dataset molingest.Provenance `json:"dataset" yaml:"dataset"`

	//Reformat, if set, is run on the raw files before reading them.
	Reformat *Reformat `json:"reformat,omitempty" yaml:"reformat,omitempty"`

	Sources []source.Source `json:"sources" yaml:"sources"`

	//Definitions are names of built-in property definitions or paths of JSON definitions.
	Definitions []string `json:"definitions" yaml:"definitions"`

	PropertyMap property.Map `json:"property_map" yaml:"property_map"`

	//Transform holds Info values set on every structure before mapping, such as per-atom: false.
	Transform map[string]any `json:"transform,omitempty" yaml:"transform,omitempty"`

	//Sets are the configuration sets created after the records are written.
	Sets []Set `json:"configuration_sets" yaml:"configuration_sets"`

	//BatchSize is the number of records submitted at once.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	Export Export `json:"export" yaml:"export"`
	Stats  Stats  `json:"stats" yaml:"stats"`

	//Verbose logs every record.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

//Reformat converts raw files into the format the sources read.
type Reformat struct {
	Format string `json:"format" yaml:"format"`
	Dir    string `json:"dir" yaml:"dir"`
	Glob   string `json:"glob" yaml:"glob"`
}

//Set is a configuration set: the configurations with a name matching Pattern.
//Pattern defaults to "^" followed by the quoted Name.
type Set struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Pattern     string `json:"pattern" yaml:"pattern"`
}

//Export configures the archive of the collection after ingestion.
type Export struct {
	//Path of the zstd-compressed JSON lines file. Nothing is exported if empty.
	Path string `json:"path" yaml:"path"`

	//Upload sends the export to S3.
	Upload bool             `json:"upload" yaml:"upload"`
	S3     archive.S3Config `json:"s3" yaml:"s3"`
}

//Stats configures the summary of the dataset.
type Stats struct {
	//EnergyKey is the Info key of the energies summarized.
	EnergyKey string `json:"energy_key" yaml:"energy_key"`

	//Bins of the energy histogram.
	Bins int `json:"bins" yaml:"bins"`

	//Plot is the file the energy histogram is plotted to. No plot if empty.
	Plot string `json:"plot" yaml:"plot"`
}

//DefaultDatabase is the database used if the job names none.
const DefaultDatabase = "./data/molingest.db"

//DefaultJob returns a job with the default settings.
func DefaultJob() *Job {
	J := new(Job)
	J.defaults()
	return J
}

func (J *Job) defaults() {
	if J.Collection == "" {
		J.Collection = "molingest"
	}
	if J.Database == "" {
		J.Database = DefaultDatabase
	}
	if J.BatchSize <= 0 {
		J.BatchSize = 500
	}
	if J.Stats.Bins <= 0 {
		J.Stats.Bins = 50
	}
	if J.Stats.EnergyKey == "" {
		J.Stats.EnergyKey = molingest.EnergyKey
	}
}

//LoadFromFile loads a job from a YAML or JSON file. Relative paths in the job are taken
//as relative to the directory of the file.
func LoadFromFile(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	job := new(Job)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, job); err != nil {
			return nil, fmt.Errorf("failed to parse YAML job: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, job); err != nil {
			return nil, fmt.Errorf("failed to parse JSON job: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported job file format: %s", ext)
	}
	job.Resolve(filepath.Dir(path))
	return job, nil
}

//Resolve makes relative paths relative to dir, and sets the defaults for empty settings.
func (J *Job) Resolve(dir string) {
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) || p == MemoryDatabase || p == ":memory:" {
			return p
		}
		return filepath.Join(dir, p)
	}
	J.Database = rel(J.Database)
	J.Export.Path = rel(J.Export.Path)
	J.Stats.Plot = rel(J.Stats.Plot)
	for i := range J.Sources {
		J.Sources[i].Path = rel(J.Sources[i].Path)
		J.Sources[i].Labels = rel(J.Sources[i].Labels)
	}
	for i, d := range J.Definitions {
		if strings.HasSuffix(strings.ToLower(d), ".json") {
			J.Definitions[i] = rel(d)
		}
	}
	if J.Reformat != nil {
		J.Reformat.Dir = rel(J.Reformat.Dir)
		if J.Reformat.Glob == "" {
			J.Reformat.Glob = "*.xyz"
		}
	}
	for i := range J.Sets {
		if J.Sets[i].Pattern == "" {
			J.Sets[i].Pattern = "^" + regexp.QuoteMeta(J.Sets[i].Name)
		}
	}
	J.defaults()
}

//LoadFromEnv overrides settings from environment variables with the MOLINGEST_ prefix.
func LoadFromEnv(J *Job) {
	if v := os.Getenv("MOLINGEST_DB"); v != "" {
		J.Database = v
	}
	if v := os.Getenv("MOLINGEST_COLLECTION"); v != "" {
		J.Collection = v
	}
	if v := os.Getenv("MOLINGEST_DROP"); v != "" {
		J.Drop = v == "true" || v == "1"
	}
	if v := os.Getenv("MOLINGEST_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			J.BatchSize = n
		}
	}
	if v := os.Getenv("MOLINGEST_EXPORT"); v != "" {
		J.Export.Path = v
	}

	//S3 configuration
	if v := os.Getenv("MOLINGEST_S3_ENDPOINT"); v != "" {
		J.Export.S3.Endpoint = v
	}
	if v := os.Getenv("MOLINGEST_S3_ACCESS_KEY"); v != "" {
		J.Export.S3.AccessKey = v
	}
	if v := os.Getenv("MOLINGEST_S3_SECRET_KEY"); v != "" {
		J.Export.S3.SecretKey = v
	}
	if v := os.Getenv("MOLINGEST_S3_BUCKET"); v != "" {
		J.Export.S3.Bucket = v
	}
	if v := os.Getenv("MOLINGEST_S3_PREFIX"); v != "" {
		J.Export.S3.Prefix = v
	}
	if v := os.Getenv("MOLINGEST_S3_SECURE"); v != "" {
		J.Export.S3.Secure = v == "true" || v == "1"
	}
}

//Validate validates the job.
func (J *Job) Validate() error {
	if J.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if J.Database == "" {
		return fmt.Errorf("database is required")
	}
	if err := J.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if len(J.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	known := source.Formats()
	for i, s := range J.Sources {
		if !contains(known, strings.ToLower(s.Format)) {
			return fmt.Errorf("sources[%d]: invalid format %q (must be one of %s)", i, s.Format, strings.Join(known, ", "))
		}
		if s.Path == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
	}
	if J.Reformat != nil && J.Reformat.Format != "nenci" {
		return fmt.Errorf("reformat: invalid format %q (must be nenci)", J.Reformat.Format)
	}
	if len(J.Definitions) == 0 {
		return fmt.Errorf("at least one property definition is required")
	}
	if len(J.PropertyMap) == 0 {
		return fmt.Errorf("property_map is required")
	}
	for _, s := range J.Sets {
		if s.Name == "" {
			return fmt.Errorf("configuration sets need a name")
		}
		if _, err := regexp.Compile(s.Pattern); err != nil {
			return fmt.Errorf("configuration set %s: %w", s.Name, err)
		}
	}
	if J.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", J.BatchSize)
	}
	if J.Export.Upload {
		if J.Export.Path == "" {
			return fmt.Errorf("export.path is required to upload")
		}
		if J.Export.S3.Endpoint == "" || J.Export.S3.Bucket == "" {
			return fmt.Errorf("export.s3.endpoint and export.s3.bucket are required to upload")
		}
	}
	return nil
}

func contains(s []string, x string) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}
