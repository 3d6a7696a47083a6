package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	salesforce "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/fetch"
	"github.com/sells-group/leadgen-cli/internal/fetcher"
	"github.com/sells-group/leadgen-cli/internal/geo"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resolver"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/jina"
	"github.com/sells-group/leadgen-cli/pkg/notion"
	sfpkg "github.com/sells-group/leadgen-cli/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (LEADGEN_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

// importLeads loads a candidate list, carrying FTP credentials from config
// for ftp:// sources.
func importLeads(ctx context.Context, source string) ([]model.Lead, error) {
	ftpOpts := fetcher.FTPOptions{
		User:    cfg.FTP.User,
		Pass:    cfg.FTP.Pass,
		Timeout: time.Duration(cfg.FTP.TimeoutSecs) * time.Second,
	}
	return fetcher.Import(ctx, source, fetcher.WithFTPOptions(ftpOpts))
}

// buildResolver assembles the contact resolver: plain HTTP always, with the
// Jina reader behind it when configured (for sites that block bots).
func buildResolver() *resolver.Resolver {
	fetchers := []fetch.PageFetcher{fetch.NewLocalFetcher()}
	if cfg.Resolver.UseJina && cfg.Jina.Key != "" {
		jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
		fetchers = append(fetchers, fetch.NewJinaFetcher(jinaClient))
	}

	chain := fetch.NewChain(fetchers...)
	timeout := time.Duration(cfg.Resolver.TimeoutSecs) * time.Second
	return resolver.New(chain, resolver.WithTimeout(timeout))
}

// buildTerritory loads the configured sales territory shapefile. Returns nil
// when no territory is configured, which disables the filter.
func buildTerritory() (*geo.Territory, error) {
	path := cfg.Territory.ShapefilePath
	if path == "" {
		return nil, nil
	}

	name := cfg.Territory.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return geo.LoadShapefile(name, path)
}

// buildSink constructs an export sink for the given format. The returned
// cleanup closes any underlying file and must run after the sink is flushed.
func buildSink(format, path string) (export.Sink, func(), error) {
	noop := func() {}

	switch format {
	case "csv", "jsonl", "xlsx":
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "create export file %s", path)
		}
		cleanup := func() { _ = f.Close() }
		switch format {
		case "csv":
			return export.NewCSVSink(f), cleanup, nil
		case "jsonl":
			return export.NewJSONLSink(f), cleanup, nil
		default:
			sink, err := export.NewXLSXSink(f)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			return sink, cleanup, nil
		}
	case "notion":
		client := notion.NewClient(cfg.Notion.Token)
		return export.NewNotionSink(client, cfg.Notion.LeadDB), noop, nil
	case "salesforce":
		client, err := initSalesforce()
		if err != nil {
			return nil, nil, err
		}
		return export.NewSalesforceSink(client), noop, nil
	default:
		return nil, nil, eris.Errorf("unsupported export format: %s", format)
	}
}
