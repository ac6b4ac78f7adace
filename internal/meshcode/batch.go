package meshcode

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of elements a worker handles at a time. Batches no
// larger than one chunk run on the calling goroutine.
const chunkSize = 512

// EncodeBatch encodes lats[i], lons[i] for every i. The slices must have equal
// length.
func EncodeBatch(ctx context.Context, lats, lons []float64, level Level) ([]string, error) {
	if err := checkLevel(level); err != nil {
		return nil, err
	}
	if len(lats) != len(lons) {
		return nil, fmt.Errorf("%w: %d latitudes, %d longitudes", ErrInvalidArgument, len(lats), len(lons))
	}
	return mapOrdered(ctx, len(lats), func(i int) (string, error) {
		return encode(lats[i], lons[i], level)
	})
}

// DecodeBatch decodes every code with the same mode. Results are aligned with
// codes by index.
func DecodeBatch(ctx context.Context, codes []string, mode Mode) ([]Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	return mapOrdered(ctx, len(codes), func(i int) (Result, error) {
		cell, err := DecodeCell(codes[i])
		if err != nil {
			return Result{}, err
		}
		return project(cell, mode), nil
	})
}

// DecodeCells decodes every code into its full cell.
func DecodeCells(ctx context.Context, codes []string) ([]Cell, error) {
	return mapOrdered(ctx, len(codes), func(i int) (Cell, error) {
		return DecodeCell(codes[i])
	})
}

// mapOrdered applies fn to indices 0..n-1 and returns the results in index
// order. Chunks run concurrently; each writes only its own slots. If any
// element fails, the error of the lowest failing index is returned and no
// results are.
func mapOrdered[R any](ctx context.Context, n int, fn func(i int) (R, error)) ([]R, error) {
	out := make([]R, n)
	if n <= chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			r, err := fn(i)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	}

	chunks := (n + chunkSize - 1) / chunkSize
	chunkErrs := make([]error, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for c := 0; c < chunks; c++ {
		start := c * chunkSize
		end := min(start+chunkSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				r, err := fn(i)
				if err != nil {
					chunkErrs[c] = fmt.Errorf("element %d: %w", i, err)
					return nil
				}
				out[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range chunkErrs {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
