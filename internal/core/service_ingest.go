package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ingest replaces the current snapshot with the three uploaded payloads.
//
// The request moves through validating, replacing (truncate), then archiving
// and loading. Archival of the raw files runs concurrently with the load
// sequence; the loads themselves run strictly in foreign-key order. Once the
// truncate has run there is no going back: a later failure leaves the store
// empty or partially reloaded, and the error reports the phase that failed.
//
// Concurrent ingestions are not guarded against; their truncate and load
// phases interleave unpredictably. Callers serialize ingestions externally.
func (s *Service) Ingest(ctx context.Context, files IngestFiles) (*IngestResult, error) {
	if err := files.validate(); err != nil {
		return nil, &IngestError{Phase: PhaseValidating, Err: err}
	}

	ingestID := uuid.New().String()
	log := slog.Default().With("ingest_id", ingestID)
	log.Info("ingestion started",
		"entities", files.Entities.Name,
		"transactions", files.Transactions.Name,
		"timeseries", files.Timeseries.Name,
	)

	if err := s.db.TruncateAll(ctx); err != nil {
		return nil, &IngestError{Phase: PhaseReplacing, Err: err}
	}

	type archiveOutcome struct {
		duration time.Duration
		err      error
	}
	archDone := make(chan archiveOutcome, 1)
	go func() {
		start := time.Now()
		err := s.archivePayloads(ctx, files)
		archDone <- archiveOutcome{time.Since(start), err}
	}()

	loadStart := time.Now()
	rows := make(map[string]int64, len(loadOrder))
	var loadErr error
	for _, tbl := range loadOrder {
		n, err := s.loader.Load(ctx, files.payload(tbl.Table).Data, tbl.Table, tbl.Columns)
		if err != nil {
			loadErr = fmt.Errorf("load %s: %w", tbl.Table, err)
			break
		}
		rows[tbl.Table] = n
		log.Debug("table loaded", "table", tbl.Table, "rows", n)
	}
	loadDuration := time.Since(loadStart)

	// Join the upload fan-out even when a load failed.
	arch := <-archDone

	if loadErr != nil {
		log.Error("ingestion failed", "phase", PhaseLoading, "error", loadErr)
		return nil, &IngestError{Phase: PhaseLoading, Err: loadErr}
	}
	if arch.err != nil {
		log.Error("ingestion failed", "phase", PhaseArchiving, "error", arch.err)
		return nil, &IngestError{Phase: PhaseArchiving, Err: arch.err}
	}

	log.Info("snapshot ingested",
		"archive_duration", arch.duration,
		"load_duration", loadDuration,
		"entities", rows[tableEntities],
		"transactions", rows[tableTransactions],
		"timeseries", rows[tableTimeseries],
	)

	return &IngestResult{
		IngestID:        ingestID,
		ArchiveDuration: arch.duration,
		LoadDuration:    loadDuration,
		RowsLoaded:      rows,
	}, nil
}

// archivePayloads ensures the bucket exists, then uploads the three raw
// files concurrently under their original names, overwriting prior objects
// of the same name. Archival is audit-only and has no bearing on load
// correctness.
func (s *Service) archivePayloads(ctx context.Context, files IngestFiles) error {
	if err := s.archive.EnsureBucket(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range []Payload{files.Entities, files.Transactions, files.Timeseries} {
		g.Go(func() error {
			return s.archive.Put(ctx, p.Name, p.Data)
		})
	}
	return g.Wait()
}
