package main

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/jismesh-etl/internal/census"
	"github.com/couchcryptid/jismesh-etl/internal/observability"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	logLevel  string
	logFormat string
	encoding  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "meshctl",
		Short:         "Work with Japanese regional mesh codes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: json or text")
	root.PersistentFlags().StringVar(&opts.encoding, "encoding", string(census.ShiftJIS), "census file encoding: shift_jis or utf-8")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newGeoJSONCmd(opts),
		newConvertCmd(opts),
		newAggregateCmd(opts),
		newPublishCmd(opts),
	)
	return root
}

// logger writes to the command's error stream so stdout stays clean for data.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return observability.NewLogger(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
}

// readTable parses a census file using the --encoding flag.
func (o *rootOptions) readTable(path string) (*census.Table, error) {
	enc, err := census.ParseEncoding(o.encoding)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return census.Parse(f, enc)
}

// inputTokens returns args if present, otherwise the non-blank, non-comment
// lines of in.
func inputTokens(args []string, in io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
