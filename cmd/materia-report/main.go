// Command materia-report lists and dumps analysis runs stored by
// materia-analyze.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/esglens/materia/pkg/materia/store/sqlite"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "SQLite database (required)")
		company = flag.String("company", "", "Filter runs by company")
		runID   = flag.String("run", "", "Dump the full report JSON for one run")
		limit   = flag.Int("limit", 20, "Maximum runs to list")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	db, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer db.Close()

	if *runID != "" {
		run, err := db.GetRun(ctx, *runID)
		if err != nil {
			log.Fatalf("get run: %v", err)
		}
		os.Stdout.Write(run.ReportJSON)
		fmt.Println()
		return
	}

	runs, err := db.ListRuns(ctx, *company, *limit)
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCOMPANY\tGENERATED\tDIRECTION\tNECESSITY\tRECS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Company, r.GeneratedAt.Format("2006-01-02 15:04"),
			r.OverallDirection, r.UpdateNecessity, r.Recommendations)
	}
	w.Flush()
}
