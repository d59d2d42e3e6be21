/*
 * main.go, part of molingest.
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

//Command molingest runs a dataset job: it reads the raw files of the dataset, maps them
//to property definitions and writes the result to a database.
//
//	molingest -job datasets/coll.yaml -db coll.db -drop -export coll.jsonl.zst -plot coll.png
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rmera/molingest/config"
	"github.com/rmera/molingest/ingest"
	"github.com/rmera/molingest/source"
)

func main() {
	jobFile := flag.String("job", "", "Dataset job, in YAML or JSON")
	dbPath := flag.String("db", "", "SQLite database, or \"memory\" (overrides the job)")
	drop := flag.Bool("drop", false, "Empty the collection before ingesting")
	export := flag.String("export", "", "Export the collection to this zstd-compressed JSON lines file")
	upload := flag.Bool("upload", false, "Upload the export to the S3 storage of the job")
	plot := flag.String("plot", "", "Plot the energy histogram to this PNG file")
	reformat := flag.Bool("reformat", false, "Only reformat the raw files of the job, do not ingest")
	summary := flag.Bool("summary", false, "Print the dataset summary as JSON")
	verbose := flag.Bool("v", false, "Log every record")
	formats := flag.Bool("formats", false, "List the raw formats supported and exit")
	flag.Parse()

	if *formats {
		for _, f := range source.Formats() {
			fmt.Println(f)
		}
		return
	}
	if *jobFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: molingest -job dataset.yaml [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	job, err := config.LoadFromFile(*jobFile)
	if err != nil {
		log.Fatalf("Failed to load job: %v", err)
	}
	config.LoadFromEnv(job)
	if *dbPath != "" {
		job.Database = *dbPath
	}
	if *drop {
		job.Drop = true
	}
	if *export != "" {
		job.Export.Path = *export
	}
	if *upload {
		job.Export.Upload = true
	}
	if *plot != "" {
		job.Stats.Plot = *plot
	}
	if *verbose {
		job.Verbose = true
	}

	if *reformat {
		if job.Reformat == nil {
			log.Fatalf("Job %s has nothing to reformat", *jobFile)
		}
		if _, err := ingest.Reformat(job); err != nil {
			log.Fatalf("Failed to reformat: %v", err)
		}
		return
	}

	log.Printf("Ingesting dataset %s into collection %s of %s", job.Dataset.Name, job.Collection, job.Database)
	db, err := ingest.Open(job)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := ingest.Run(ctx, job, db)
	if err != nil {
		db.Close()
		log.Fatalf("Failed to ingest %s: %v", job.Dataset.Name, err)
	}
	if _, err := ingest.Export(ctx, job, db); err != nil {
		db.Close()
		log.Fatalf("Failed to export: %v", err)
	}
	if err := ingest.Plot(job, res); err != nil {
		log.Printf("Failed to plot the energies: %v", err)
	}
	if *summary {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Summary); err != nil {
			log.Printf("Failed to print the summary: %v", err)
		}
	}
	log.Printf("Dataset %s done: %d configurations, %d properties", job.Dataset.Name, len(res.Configurations), len(res.Properties))
}
