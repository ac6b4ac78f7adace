package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "encode [LAT,LON ...]",
		Short: "Encode coordinates to mesh codes, one per line",
		Long: `Encode reads LAT,LON pairs from the arguments, or from stdin when no
arguments are given, and prints the mesh code of each at --level.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := inputTokens(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			lats := make([]float64, len(tokens))
			lons := make([]float64, len(tokens))
			for i, tok := range tokens {
				if lats[i], lons[i], err = parsePair(tok); err != nil {
					return err
				}
			}

			codes, err := meshcode.EncodeBatch(cmd.Context(), lats, lons, meshcode.Level(level))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range codes {
				fmt.Fprintln(out, c)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", int(meshcode.MaxLevel), "mesh level 1-6")
	return cmd
}

type decodedLine struct {
	Code   string          `json:"code"`
	Level  int             `json:"level"`
	Result meshcode.Result `json:"result"`
}

func newDecodeCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "decode [CODE ...]",
		Short: "Decode mesh codes to coordinates as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := meshcode.ParseMode(mode)
			if err != nil {
				return err
			}
			codes, err := inputTokens(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cells, err := meshcode.DecodeCells(cmd.Context(), codes)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, c := range cells {
				res, err := c.Result(m)
				if err != nil {
					return err
				}
				if err := enc.Encode(decodedLine{Code: c.Code, Level: int(c.Level), Result: res}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(meshcode.ModeSW), "output shape: sw, center or bbox")
	return cmd
}

func newGeoJSONCmd(opts *rootOptions) *cobra.Command {
	var censusPath string
	cmd := &cobra.Command{
		Use:   "geojson [CODE ...]",
		Short: "Render mesh cells as a GeoJSON FeatureCollection",
		Long: `GeoJSON renders the given codes, or every row of a census file passed
with --census, as polygon features. Census statistics become feature
properties and rows with malformed codes are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cells []meshcode.Cell
				props func(meshcode.Cell) map[string]any
				err   error
			)
			if censusPath != "" {
				cells, props, err = censusCells(opts, cmd, censusPath)
			} else {
				var codes []string
				if codes, err = inputTokens(args, cmd.InOrStdin()); err == nil {
					cells, err = meshcode.DecodeCells(cmd.Context(), codes)
				}
			}
			if err != nil {
				return err
			}

			data, err := meshcode.FeatureCollection(cells, props).MarshalJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&censusPath, "census", "", "census statistics file to render")
	return cmd
}

// censusCells decodes every census row and returns a property function that
// attaches the row's statistics to its feature.
func censusCells(opts *rootOptions, cmd *cobra.Command, path string) ([]meshcode.Cell, func(meshcode.Cell) map[string]any, error) {
	table, err := opts.readTable(path)
	if err != nil {
		return nil, nil, err
	}
	logger := opts.logger(cmd)

	records := table.Records()
	cells := make([]meshcode.Cell, 0, len(records))
	values := make(map[string]map[string]float64, len(records))
	for _, rec := range records {
		cell, err := meshcode.DecodeCell(rec.KeyCode)
		if err != nil {
			logger.Warn("skipping row", "code", rec.KeyCode, "error", err)
			continue
		}
		cells = append(cells, cell)
		values[cell.Code] = rec.Values
	}

	props := func(c meshcode.Cell) map[string]any {
		p := make(map[string]any, len(values[c.Code]))
		for k, v := range values[c.Code] {
			p[k] = v
		}
		return p
	}
	return cells, props, nil
}

func parsePair(s string) (lat, lon float64, err error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not LAT,LON", meshcode.ErrInvalidArgument, s)
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64); err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q", meshcode.ErrInvalidArgument, latStr)
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64); err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q", meshcode.ErrInvalidArgument, lonStr)
	}
	return lat, lon, nil
}
