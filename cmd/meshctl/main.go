// Command meshctl encodes and decodes Japanese regional mesh codes and prepares
// e-Stat mesh statistics files for the ETL service.
//
// Usage:
//
//	meshctl encode --level 3 35.6813489,139.766029
//	meshctl decode --mode bbox 53394611341
//	meshctl geojson --census tblT001227H5339.txt > cells.geojson
//	meshctl convert tblT001227H5339.txt out.csv
//	meshctl aggregate --level 2 tblT001227H5339.txt
//	meshctl publish --topic raw-mesh-stats tblT001227H5339.txt
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
