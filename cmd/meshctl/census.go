package main

import (
	"encoding/json"
	"fmt"
	"os"

	kafkaadapter "github.com/couchcryptid/jismesh-etl/internal/adapter/kafka"
	"github.com/couchcryptid/jismesh-etl/internal/census"
	"github.com/couchcryptid/jismesh-etl/internal/domain"
	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"
)

const publishChunk = 500

func newConvertCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert INPUT [OUTPUT]",
		Short: "Convert a census file to UTF-8 CSV with merged headers",
		Long: `Convert re-encodes a census statistics file as UTF-8 CSV. The two header
rows are merged into one and suppressed values ("*") become empty fields.
Output goes to stdout when OUTPUT is omitted.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.readTable(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return table.WriteCSV(cmd.OutOrStdout())
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := table.WriteCSV(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			opts.logger(cmd).Info("converted census file", "input", args[0], "output", args[1], "rows", len(table.Rows))
			return nil
		},
	}
}

func newAggregateCmd(opts *rootOptions) *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "aggregate INPUT",
		Short: "Aggregate census rows up to a coarser mesh level",
		Long: `Aggregate groups census rows by their enclosing cell at --level. Population
columns are summed and age columns are averaged weighted by total population.
Rows without population are dropped. Output is a JSON array.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.readTable(args[0])
			if err != nil {
				return err
			}
			aggs, err := census.AggregateRecords(validRecords(opts, cmd, table), meshcode.Level(level))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(aggs)
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", 1, "target mesh level 1-6")
	return cmd
}

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var (
		brokers string
		topic   string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "publish INPUT",
		Short: "Publish census rows to the ETL source topic",
		Long: `Publish sends each census row as a JSON mesh record keyed by its code.
Rows with malformed codes are skipped. With --dry-run the records are
printed as JSON lines instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.readTable(args[0])
			if err != nil {
				return err
			}
			records := toMeshRecords(validRecords(opts, cmd, table))

			if dryRun {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, r := range records {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
				return nil
			}

			writer := kafkaadapter.NewTopicWriter(sharedcfg.ParseBrokers(brokers), topic, opts.logger(cmd))
			defer writer.Close()
			for start := 0; start < len(records); start += publishChunk {
				end := min(start+publishChunk, len(records))
				if err := writer.PublishRecords(cmd.Context(), records[start:end]); err != nil {
					return fmt.Errorf("rows %d-%d: %w", start, end-1, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&brokers, "brokers", sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"), "comma-separated Kafka brokers")
	cmd.Flags().StringVar(&topic, "topic", sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-mesh-stats"), "destination topic")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print records instead of publishing")
	return cmd
}

// validRecords drops rows whose code does not decode, logging each one.
func validRecords(opts *rootOptions, cmd *cobra.Command, table *census.Table) []census.Record {
	logger := opts.logger(cmd)
	records := table.Records()
	out := records[:0]
	for _, rec := range records {
		if _, err := meshcode.DecodeCell(rec.KeyCode); err != nil {
			logger.Warn("skipping row", "code", rec.KeyCode, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func toMeshRecords(records []census.Record) []domain.MeshRecord {
	out := make([]domain.MeshRecord, len(records))
	for i, rec := range records {
		out[i] = domain.MeshRecord{KeyCode: domain.KeyCode(rec.KeyCode), Values: rec.Values}
	}
	return out
}
