// Package fetcher imports candidate business lists from CSV and XLSX files,
// fetched from local paths, HTTP, or FTP sources.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ImportOption configures an import.
type ImportOption func(*importOptions)

type importOptions struct {
	ftp FTPOptions
}

// WithFTPOptions sets credentials and timeout for ftp:// sources.
func WithFTPOptions(opts FTPOptions) ImportOption {
	return func(o *importOptions) { o.ftp = opts }
}

// Import loads candidate leads from a source, dispatching on URL scheme
// (http, https, ftp, or a bare local path) and on file extension
// (.csv or .xlsx).
func Import(ctx context.Context, source string, opts ...ImportOption) ([]model.Lead, error) {
	var o importOptions
	for _, opt := range opts {
		opt(&o)
	}

	rc, name, err := open(ctx, source, o)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	var leads []model.Lead
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		leads, err = ParseCSV(ctx, rc)
	case ".xlsx":
		leads, err = ParseXLSX(rc)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type: %s", name)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("fetcher: imported candidates",
		zap.String("source", source),
		zap.Int("count", len(leads)),
	)
	return leads, nil
}

// open resolves the source to a reader plus a name whose extension selects
// the parser.
func open(ctx context.Context, source string, o importOptions) (io.ReadCloser, string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, "", eris.Wrapf(err, "fetcher: parse source %q", source)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		rc, err := NewHTTPFetcher().Download(ctx, source)
		return rc, u.Path, err
	case "ftp":
		rc, err := NewFTPFetcher(o.ftp).Download(ctx, source)
		return rc, u.Path, err
	case "", "file":
		p := source
		if u.Scheme == "file" {
			p = u.Path
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, "", eris.Wrapf(err, "fetcher: open %s", p)
		}
		return f, p, nil
	default:
		return nil, "", eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}
