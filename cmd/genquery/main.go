package main

import (
	"flag"
	"log"

	"fieldforce.com/fieldforce/config"
	"fieldforce.com/fieldforce/fieldforce/model"
	"gorm.io/gen"
)

// genquery writes the typed query API for the fieldforce models.
func main() {
	out := flag.String("out", "fieldforce/query", "output directory")
	useDB := flag.Bool("db", false, "read column types from the configured database")
	flag.Parse()

	g := gen.NewGenerator(gen.Config{
		OutPath:       *out,
		Mode:          gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable: true,
	})

	if *useDB {
		cfg, err := config.Load("")
		if err != nil {
			log.Fatal(err)
		}
		dm, err := cfg.OpenDatabase()
		if err != nil {
			log.Fatal(err)
		}
		defer dm.Close()
		g.UseDB(dm.DB)
	}

	g.ApplyBasic(model.All()...)

	g.Execute()
}
