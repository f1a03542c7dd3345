// Package export publishes a session's ratings document to the
// destinations the rater configured: a local file, the SQLite archive and
// an S3-compatible bucket.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/storysense-dev/storysense/internal/archive"
	"github.com/storysense-dev/storysense/internal/config"
	"github.com/storysense-dev/storysense/internal/session"
	"github.com/storysense-dev/storysense/internal/storage"
)

// Sink is one export destination. Put returns a human-readable reference
// to where the document went.
type Sink interface {
	Name() string
	Put(ctx context.Context, meta Meta, data []byte) (string, error)
}

// Meta identifies the document being published.
type Meta struct {
	SessionID  string
	Rater      string
	TotalRated int
}

// Result lists where a document was published.
type Result struct {
	Targets []string
}

// Publisher writes one document to every sink.
type Publisher struct {
	sinks []Sink
}

// NewPublisher returns a Publisher over the given sinks.
func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

// Publish renders the store's export document and hands it to each sink.
func (p *Publisher) Publish(ctx context.Context, store *session.Store) (Result, error) {
	meta, data, err := Snapshot(store)
	if err != nil {
		return Result{}, err
	}
	return p.PublishData(ctx, meta, data)
}

// PublishData hands an already rendered document to each sink. Every sink
// is attempted; failures are joined into the returned error.
func (p *Publisher) PublishData(ctx context.Context, meta Meta, data []byte) (Result, error) {
	var res Result
	var errs []error
	for _, s := range p.sinks {
		ref, err := s.Put(ctx, meta, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		res.Targets = append(res.Targets, ref)
	}
	return res, errors.Join(errs...)
}

// Snapshot renders the store's export document so it can be published
// after the store has moved on.
func Snapshot(store *session.Store) (Meta, []byte, error) {
	data, err := store.ExportJSON()
	if err != nil {
		return Meta{}, nil, err
	}
	doc := store.Export()
	return Meta{
		SessionID:  store.ID(),
		Rater:      doc.Metadata.Rater,
		TotalRated: doc.Metadata.TotalRated,
	}, data, nil
}

// FileSink writes the document to a fixed path, replacing any previous file.
type FileSink struct {
	Path string
}

func (f FileSink) Name() string { return "file" }

func (f FileSink) Put(_ context.Context, _ Meta, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return f.Path, nil
}

// ArchiveSink stores the document in the SQLite archive.
type ArchiveSink struct {
	Store *archive.Store
}

func (a ArchiveSink) Name() string { return "archive" }

func (a ArchiveSink) Put(_ context.Context, meta Meta, data []byte) (string, error) {
	e, err := a.Store.Save(meta.SessionID, meta.Rater, meta.TotalRated, data)
	if err != nil {
		return "", err
	}
	return "archive:" + e.ID, nil
}

// S3Sink uploads the document to the configured bucket.
type S3Sink struct {
	Client *storage.Client
}

func (s S3Sink) Name() string { return "s3" }

func (s S3Sink) Put(ctx context.Context, meta Meta, data []byte) (string, error) {
	return s.Client.PutExport(ctx, meta.Rater, data)
}

// FromConfig builds the sinks cfg enables. outPath, when non-empty,
// replaces the configured export file. The returned close function
// releases the archive database.
func FromConfig(ctx context.Context, root string, cfg *config.Config, outPath string) (*Publisher, func(), error) {
	if outPath == "" {
		outPath = filepath.Join(cfg.Export.Dir, cfg.Export.FileName)
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(root, outPath)
	}
	sinks := []Sink{FileSink{Path: outPath}}
	closer := func() {}

	if cfg.Export.Archive {
		path := cfg.Export.ArchivePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		st, err := archive.NewStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening archive: %w", err)
		}
		sinks = append(sinks, ArchiveSink{Store: st})
		closer = func() { _ = st.Close() }
	}

	if cfg.Export.S3.Enabled {
		c, err := storage.New(ctx, cfg.Export.S3)
		if err != nil {
			closer()
			return nil, nil, err
		}
		sinks = append(sinks, S3Sink{Client: c})
	}

	return NewPublisher(sinks...), closer, nil
}
