package copier

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mrsinham/dicomsift/internal/series"
)

// Request describes one copy invocation.
type Request struct {
	Series      []string // selected series UIDs, in selection order
	Policy      Policy
	CustomName  string
	Prefix      string
	SourceRoot  string // root the source tree was indexed from
	Destination string
	Workers     int // parallel file copies; <= 1 copies sequentially
}

// Op is one planned file copy.
type Op struct {
	SeriesUID   string
	Folder      string // sanitized series folder name
	Source      string
	Destination string
}

// Plan computes the destination of every file of the selected series without touching the
// filesystem. A file at <root>/<dir>/<name> goes to <destination>/<dir>/<folder>/<name>.
// A UID selected twice is planned once. Structural problems (empty selection, no destination,
// unknown series) are reported before any operation is produced.
func Plan(table *series.Table, req Request) ([]Op, error) {
	if len(req.Series) == 0 {
		return nil, ErrEmptySelection
	}
	if strings.TrimSpace(req.Destination) == "" {
		return nil, ErrNoDestination
	}

	records := make([]*series.Record, 0, len(req.Series))
	seen := make(map[string]bool, len(req.Series))
	for _, uid := range req.Series {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		rec, ok := table.Get(uid)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, uid)
		}
		records = append(records, rec)
	}

	root, err := filepath.Abs(req.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}

	var ops []Op
	for _, rec := range records {
		folder := Sanitize(req.Policy.FolderName(rec.Description, req.Prefix, req.CustomName))

		for _, src := range rec.Files {
			rel, err := filepath.Rel(root, src)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return nil, fmt.Errorf("%s is not under source root %s", src, root)
			}
			ops = append(ops, Op{
				SeriesUID:   rec.UID,
				Folder:      folder,
				Source:      src,
				Destination: filepath.Join(req.Destination, filepath.Dir(rel), folder, filepath.Base(rel)),
			})
		}
	}
	return ops, nil
}

// Copy plans and executes req against table. Structural errors are returned as error; per-file
// failures are reported in the Result.
func Copy(table *series.Table, req Request, progress func(done, total int)) (Result, error) {
	ops, err := Plan(table, req)
	if err != nil {
		return Result{}, err
	}
	return Execute(ops, ExecuteOptions{Workers: req.Workers, Progress: progress}), nil
}
