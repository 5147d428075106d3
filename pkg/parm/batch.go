package parm

import (
	"context"
	"encoding/json"
	"strconv"

	"golang.org/x/sync/errgroup"

	internalopts "github.com/malaterre/GEMS-PARM-01/internal/options"
)

// DefaultWorkers bounds DecodeFiles when BatchOptions.Workers is not set.
const DefaultWorkers = 4

// FileResult is the outcome of decoding one file of a batch.
type FileResult struct {
	Path   string
	Result Result
	Err    error
}

// Summary returns the serializable view of the file's result, carrying the
// error when decoding failed.
func (fr FileResult) Summary() Summary {
	s := fr.Result.Summary()
	s.Path = fr.Path
	if fr.Err != nil {
		s.Error = fr.Err.Error()
	}
	return s
}

// BatchOptions configures DecodeFiles.
type BatchOptions struct {
	DecodeOptions
	Workers int
}

// DecodeFiles decodes every path on a bounded pool of workers. A failing
// file never stops the others; results keep the order of paths.
func DecodeFiles(ctx context.Context, paths []string, opts BatchOptions) []FileResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := internalopts.Logger(opts.toInternal(ctx))
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = FileResult{Path: path}
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			res, err := DecodeFile(gctx, path, opts.DecodeOptions)
			results[i].Result = res
			results[i].Err = err
			if err != nil {
				log.WithError(err).WithField("path", path).WithField("kind", Kind(err)).Error("decode failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed counts the results carrying an error.
func Failed(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Listing renders a batch as one row per file.
type Listing []FileResult

// Headers implements output.TableRenderer.
func (l Listing) Headers() []string {
	return []string{"File", "Variant", "Status", "Order", "Bytes", "Fingerprint", "Error"}
}

// Rows implements output.TableRenderer.
func (l Listing) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l.summaries() {
		rows = append(rows, []string{
			s.Path,
			s.Variant,
			s.Status,
			s.ByteOrder,
			strconv.FormatInt(s.ByteCount, 10),
			s.Fingerprint,
			s.Error,
		})
	}
	return rows
}

func (l Listing) summaries() []Summary {
	out := make([]Summary, 0, len(l))
	for _, fr := range l {
		s := fr.Summary()
		s.Fields = nil
		out = append(out, s)
	}
	return out
}

// MarshalJSON encodes the listing as a list of summaries without fields.
func (l Listing) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.summaries())
}

// MarshalYAML encodes the listing as a list of summaries without fields.
func (l Listing) MarshalYAML() (any, error) {
	return l.summaries(), nil
}
