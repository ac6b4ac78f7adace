package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/jismesh-etl/internal/census"
	"github.com/couchcryptid/jismesh-etl/internal/domain"
	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../internal/pipeline/testdata/tblT001227_sample.txt"

// run executes meshctl with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEncodeCmd_Args(t *testing.T) {
	out, err := run(t, "", "encode", "--level", "6", "35.6813489,139.766029", "34.7025,135.4959")
	require.NoError(t, err)
	assert.Equal(t, []string{"53394611341", "52350349232"}, strings.Fields(out))
}

func TestEncodeCmd_Stdin(t *testing.T) {
	out, err := run(t, "# tokyo\n35.6813489, 139.766029\n\n43.0686,141.3508\n", "encode", "-l", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"5339", "6441"}, strings.Fields(out))
}

func TestEncodeCmd_Invalid(t *testing.T) {
	_, err := run(t, "", "encode", "35.6813489")
	require.ErrorIs(t, err, meshcode.ErrInvalidArgument)

	_, err = run(t, "", "encode", "--level", "9", "35.6,139.7")
	require.ErrorIs(t, err, meshcode.ErrInvalidArgument)
}

func TestDecodeCmd(t *testing.T) {
	out, err := run(t, "", "decode", "--mode", "center", "53394611")
	require.NoError(t, err)

	var line struct {
		Code   string             `json:"code"`
		Level  int                `json:"level"`
		Result map[string]float64 `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &line))
	assert.Equal(t, "53394611", line.Code)
	assert.Equal(t, 3, line.Level)
	assert.InDelta(t, 35.675+1.0/240, line.Result["lat"], 1e-9)
	assert.InDelta(t, 139.7625+1.0/160, line.Result["lon"], 1e-9)
}

func TestDecodeCmd_StdinBBox(t *testing.T) {
	out, err := run(t, "5339\n53394611341\n", "decode", "--mode", "bbox")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	type line struct {
		Code   string             `json:"code"`
		Level  int                `json:"level"`
		Result map[string]float64 `json:"result"`
	}
	var first, second line
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "5339", first.Code)
	assert.Equal(t, 1, first.Level)
	assert.InDelta(t, 35.0+1.0/3.0, first.Result["min_lat"], 1e-9)
	assert.InDelta(t, 140.0, first.Result["max_lon"], 1e-9)

	assert.Equal(t, "53394611341", second.Code)
	assert.Equal(t, 6, second.Level)
	assert.InDelta(t, 35.68125, second.Result["min_lat"], 1e-9)
	assert.InDelta(t, 139.765625, second.Result["min_lon"], 1e-9)
}

func TestDecodeCmd_InvalidMode(t *testing.T) {
	_, err := run(t, "", "decode", "--mode", "corner", "5339")
	require.ErrorIs(t, err, meshcode.ErrInvalidArgument)
}

func TestGeoJSONCmd_Codes(t *testing.T) {
	out, err := run(t, "", "geojson", "5339", "53394611")
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "53394611", fc.Features[1].Properties.MustString("code"))
}

func TestGeoJSONCmd_Census(t *testing.T) {
	out, err := run(t, "", "geojson", "--census", fixturePath)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	require.NoError(t, err)
	require.Len(t, fc.Features, 9, "malformed row skipped")
	assert.Equal(t, "53394611111", fc.Features[0].Properties.MustString("code"))
	assert.InDelta(t, 215.0, fc.Features[0].Properties.MustFloat64(census.TotalPopulation), 1e-9)
}

func TestConvertCmd(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.csv")
	_, err := run(t, "", "convert", fixturePath, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[0], "KEY_CODE,"))
	assert.Contains(t, lines[0], census.TotalPopulation)
	assert.Equal(t, "53394611113,0,,,,,,,", lines[3])
}

func TestAggregateCmd(t *testing.T) {
	out, err := run(t, "", "aggregate", "--level", "2", fixturePath)
	require.NoError(t, err)

	var aggs []census.Aggregate
	require.NoError(t, json.Unmarshal([]byte(out), &aggs))
	require.Len(t, aggs, 1)
	assert.Equal(t, "533946", aggs[0].Code)
	assert.Equal(t, 7, aggs[0].Members)
	assert.InDelta(t, 1038.0, aggs[0].Values[census.TotalPopulation], 1e-9)
}

func TestAggregateCmd_LevelFinerThanRow(t *testing.T) {
	_, err := run(t, "", "aggregate", "--level", "3", fixturePath)
	require.ErrorIs(t, err, meshcode.ErrInvalidArgument)
}

func TestPublishCmd_DryRun(t *testing.T) {
	out, err := run(t, "", "publish", "--dry-run", fixturePath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)

	var rec domain.MeshRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, domain.KeyCode("53394611111"), rec.KeyCode)
	assert.InDelta(t, 215.0, rec.Values[census.TotalPopulation], 1e-9)
}

func TestReadTable_BadEncoding(t *testing.T) {
	_, err := run(t, "", "convert", "--encoding", "euc-jp", fixturePath)
	require.Error(t, err)
}
