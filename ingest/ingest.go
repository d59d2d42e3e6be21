/*
 * ingest.go, part of molingest.
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

//Package ingest runs dataset jobs: it reads the raw files of a job, maps every structure
//to the job's properties, and writes configurations, properties, configuration sets and
//the dataset to a database.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rmera/molingest"
	"github.com/rmera/molingest/archive"
	"github.com/rmera/molingest/config"
	"github.com/rmera/molingest/mapper"
	"github.com/rmera/molingest/nenci"
	"github.com/rmera/molingest/property"
	"github.com/rmera/molingest/source"
	"github.com/rmera/molingest/stats"
	"github.com/rmera/molingest/store"
)

//Result holds the ids of the documents written by a job, and the summary of the structures read.
type Result struct {
	Definitions       []store.ID    `json:"definitions"`
	Configurations    []store.ID    `json:"configurations"`
	Properties        []store.ID    `json:"properties"`
	ConfigurationSets []store.ID    `json:"configuration_sets"`
	Dataset           store.ID      `json:"dataset"`
	Summary           stats.Summary `json:"summary"`

	//Histogram of the energies, with the bins of the job.
	Histogram *stats.Histogram `json:"histogram"`
}

//Open opens the database of the job: in memory, or the SQLite file.
func Open(job *config.Job) (store.Database, error) {
	switch job.Database {
	case config.MemoryDatabase, ":memory:":
		return store.NewMemory(), nil
	}
	if dir := filepath.Dir(job.Database); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating the database directory: %w", err)
		}
	}
	db, err := store.NewSQLite(job.Database)
	if err != nil {
		return nil, err
	}
	return db, nil
}

//Reformat rewrites the raw files of the job, if the job asks for it, and returns
//the names of the files written.
func Reformat(job *config.Job) ([]string, error) {
	if job.Reformat == nil {
		return nil, nil
	}
	written, err := nenci.ReformatDir(job.Reformat.Dir, job.Reformat.Glob)
	if err != nil {
		return written, molingest.ErrDecorate(err, "Reformat")
	}
	log.Printf("Reformatted %d files in %s", len(written), job.Reformat.Dir)
	return written, nil
}

//Run runs the job against db. It stops at the first error, which is returned
//unmodified but for its decoration.
func Run(ctx context.Context, job *config.Job, db store.Database) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	coll := job.Collection
	if job.Drop {
		if err := db.Reset(ctx, coll); err != nil {
			return nil, molingest.ErrDecorate(err, "Run")
		}
		log.Printf("Dropped collection %s", coll)
	}
	if _, err := Reformat(job); err != nil {
		return nil, molingest.ErrDecorate(err, "Run")
	}
	res := new(Result)
	defs, err := property.Resolve(job.Definitions)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Run")
	}
	for _, name := range defs.Names() {
		id, err := db.InsertPropertyDefinition(ctx, coll, defs[name])
		if err != nil {
			return nil, molingest.ErrDecorate(err, "Run")
		}
		res.Definitions = append(res.Definitions, id)
	}
	var t mapper.Transform
	if len(job.Transform) > 0 {
		t = mapper.SetInfo(job.Transform)
	}
	m, err := mapper.New(defs, job.PropertyMap, t)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Run")
	}
	configs, props, summary, err := submit(ctx, job, db, m)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Run")
	}
	res.Configurations = configs
	res.Properties = props
	res.Summary = summary.Summary()
	res.Histogram = summary.Histogram(job.Stats.Bins)
	log.Printf("Inserted %d configurations from %d structures", len(configs), res.Summary.Configurations)
	log.Printf("Inserted %d properties", len(res.Properties))

	sets := job.Sets
	if len(sets) == 0 {
		sets = []config.Set{{Name: job.Dataset.Name, Description: "All the configurations of " + job.Dataset.Name}}
	}
	for _, s := range sets {
		id, err := db.InsertConfigurationSet(ctx, coll, s.Name, s.Description, s.Pattern, configs)
		if err != nil {
			return nil, molingest.ErrDecorate(err, "Run")
		}
		log.Printf("Inserted configuration set %s -> %s", s.Name, id)
		res.ConfigurationSets = append(res.ConfigurationSets, id)
	}
	res.Dataset, err = db.InsertDataset(ctx, coll, job.Dataset, res.ConfigurationSets, res.Properties)
	if err != nil {
		return nil, molingest.ErrDecorate(err, "Run")
	}
	log.Printf("Inserted dataset %s -> %s", job.Dataset.Name, res.Dataset)
	return res, nil
}

//submit maps the structures of the job sources and writes them in batches. It returns
//the ids of the configurations and of the properties written, without repetitions, in
//the order read. Properties that other runs left on the same configurations are not included.
func submit(ctx context.Context, job *config.Job, db store.Database, m *mapper.Mapper) ([]store.ID, []store.ID, *stats.Collector, error) {
	chain := source.OpenAll(job.Sources)
	defer chain.Close()
	collector := stats.NewCollector(job.Stats.EnergyKey)
	seen := make(map[store.ID]bool)
	var configs, props []store.ID
	batch := make([]*mapper.Record, 0, job.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		ids, pids, err := db.InsertData(ctx, job.Collection, batch, m.Definitions, job.Dataset)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				configs = append(configs, id)
			}
		}
		for _, id := range pids {
			if !seen[id] {
				seen[id] = true
				props = append(props, id)
			}
		}
		log.Printf("Submitted %d records (%d read)", len(batch), chain.Read())
		batch = batch[:0]
		return nil
	}
	err := m.Each(chain, func(rec *mapper.Record) error {
		if job.Verbose {
			log.Printf("Record %d: %s %v, %d properties", chain.Read(), rec.Structure.Formula(), rec.Structure.Names, len(rec.Properties))
		}
		collector.Add(rec.Structure)
		batch = append(batch, rec)
		if len(batch) >= job.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if err := flush(); err != nil {
		return nil, nil, nil, err
	}
	return configs, props, collector, nil
}

//Export writes the collection of the job to the export file of the job, and uploads
//it to S3 if the job asks for it. It does nothing if the job has no export path.
func Export(ctx context.Context, job *config.Job, db store.Database) (int, error) {
	if job.Export.Path == "" {
		return 0, nil
	}
	n, err := archive.ExportFile(ctx, db, job.Collection, job.Export.Path)
	if err != nil {
		return n, molingest.ErrDecorate(err, "Export")
	}
	log.Printf("Exported %d documents to %s", n, job.Export.Path)
	if !job.Export.Upload {
		return n, nil
	}
	up, err := archive.NewS3(job.Export.S3)
	if err != nil {
		return n, fmt.Errorf("connecting to S3: %w", err)
	}
	if err := archive.UploadFile(ctx, up, job.Export.Path); err != nil {
		return n, err
	}
	log.Printf("Uploaded %s to bucket %s", filepath.Base(job.Export.Path), job.Export.S3.Bucket)
	return n, nil
}

//Plot plots the energy histogram of res to the plot file of the job, if it has one.
func Plot(job *config.Job, res *Result) error {
	if job.Stats.Plot == "" || res.Histogram == nil {
		return nil
	}
	title := fmt.Sprintf("%s: %d configurations", job.Dataset.Name, res.Summary.Configurations)
	return stats.Plot(res.Histogram, title, job.Stats.EnergyKey, job.Stats.Plot)
}
