package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgallion1/creditgest/internal/extract"
	"github.com/dgallion1/creditgest/internal/report"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"
)

// Extractor turns one raw document into a Report.
type Extractor interface {
	Extract(raw []byte) (report.Report, error)
}

// Store persists extracted reports.
type Store interface {
	Create(ctx context.Context, r report.Report) (report.Stored, error)
}

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	// CacheSize is the number of extraction results kept by content hash.
	// Negative disables the cache.
	CacheSize int
	// MaxBytes caps the decompressed document size. Zero means no cap.
	MaxBytes int64
	// MaxConcurrent caps simultaneous extractions.
	MaxConcurrent int
}

// Service runs one uploaded document through decompression, extraction and
// persistence.
type Service struct {
	extractor Extractor
	store     Store
	stats     *extract.Stats
	cache     *lru.Cache[string, report.Report]
	sem       chan struct{}
	maxBytes  int64
	log       *slog.Logger
}

func NewService(ex Extractor, st Store, stats *extract.Stats, log *slog.Logger, opts Options) (*Service, error) {
	if opts.CacheSize == 0 {
		opts.CacheSize = 128
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if stats == nil {
		stats = extract.NewStats(time.Hour)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		extractor: ex,
		store:     st,
		stats:     stats,
		sem:       make(chan struct{}, opts.MaxConcurrent),
		maxBytes:  opts.MaxBytes,
		log:       log,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, report.Report](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("result cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Stats returns the extraction latency tracker.
func (s *Service) Stats() *extract.Stats {
	return s.stats
}

// Ingest extracts a report from data and stores it. Parse failures are
// returned unwrapped from the extractor so callers can classify them with
// parser.IsStructural.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte) (report.Stored, error) {
	payload, err := Decompress(data, s.maxBytes)
	if err != nil {
		return report.Stored{}, err
	}

	hash := ContentHashHex(payload)
	log := s.log.With("filename", filename, "content_hash", hash[:16])

	rep, cached := s.lookup(hash)
	if !cached {
		rep, err = s.extract(ctx, payload)
		if err != nil {
			log.Warn("extraction failed", "error", err)
			return report.Stored{}, err
		}
		if s.cache != nil {
			s.cache.Add(hash, cloneReport(rep))
		}
	}

	stored, err := s.store.Create(ctx, rep)
	if err != nil {
		return report.Stored{}, fmt.Errorf("store report: %w", err)
	}
	log.Info("report stored",
		"id", stored.ID,
		"accounts", len(stored.Accounts),
		"cached", cached,
	)
	return stored, nil
}

func (s *Service) lookup(hash string) (report.Report, bool) {
	if s.cache == nil {
		return report.Report{}, false
	}
	rep, ok := s.cache.Get(hash)
	if !ok {
		return report.Report{}, false
	}
	return cloneReport(rep), true
}

func (s *Service) extract(ctx context.Context, payload []byte) (report.Report, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return report.Report{}, ctx.Err()
	}
	defer func() { <-s.sem }()

	start := time.Now()
	rep, err := s.extractor.Extract(payload)
	elapsed := time.Since(start)
	if err != nil {
		s.stats.RecordFailure(elapsed)
		return report.Report{}, err
	}
	s.stats.Record(elapsed, len(rep.Accounts))
	return rep, nil
}

// ContentHashHex computes the BLAKE3 digest of content as a hex string.
func ContentHashHex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cloneReport(r report.Report) report.Report {
	r.Accounts = slices.Clone(r.Accounts)
	if r.Accounts == nil {
		r.Accounts = []report.Account{}
	}
	return r
}
