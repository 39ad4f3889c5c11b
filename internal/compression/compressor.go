package compression

import (
	"log/slog"
	"runtime"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"
)

// Compressor runs bounded re-encode searches against a size envelope.
// It keeps no state between calls and is safe for concurrent use.
type Compressor struct {
	codec     compressionDomain.RasterCodec
	packer    compressionDomain.DocumentPacker
	assembler compressionDomain.DocumentAssembler
	workers   int
	logger    *slog.Logger
}

// NewCompressor creates a new compressor instance
func NewCompressor(
	codec compressionDomain.RasterCodec,
	packer compressionDomain.DocumentPacker,
	assembler compressionDomain.DocumentAssembler,
	workers int,
	logger *slog.Logger,
) *Compressor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > common.MaxConcurrencyLimit {
		workers = common.MaxConcurrencyLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Compressor{
		codec:     codec,
		packer:    packer,
		assembler: assembler,
		workers:   workers,
		logger:    logger,
	}
}

// search accumulates the evaluation state of one re-encode call
type search struct {
	envelope compressionDomain.Envelope
	accepted *compressionDomain.Candidate
	best     *compressionDomain.Candidate
	attempts []compressionDomain.Attempt
}

func newSearch(envelope compressionDomain.Envelope) *search {
	return &search{envelope: envelope}
}

// offer evaluates a candidate and reports whether it was accepted.
// A rejected candidate under the max becomes the best-so-far when it is larger than the current one.
func (s *search) offer(iteration int, candidate *compressionDomain.Candidate) bool {
	sizeKB := candidate.SizeKB()
	attempt := compressionDomain.Attempt{
		Iteration: iteration,
		Quality:   candidate.Quality,
		Size:      candidate.Size,
	}

	if s.envelope.Accepts(sizeKB) {
		attempt.Accepted = true
		s.attempts = append(s.attempts, attempt)
		s.accepted = candidate
		return true
	}

	if sizeKB < s.envelope.MaxSizeKB && (s.best == nil || candidate.Size > s.best.Size) {
		attempt.Best = true
		s.best = candidate
	}
	s.attempts = append(s.attempts, attempt)
	return false
}

// outcome turns the accumulated state into a result. When nothing fits under
// the max the failed outcome is returned together with an ErrEnvelopeUnsatisfiable error.
func (s *search) outcome(format compressionDomain.Format, operation string) (*compressionDomain.Outcome, error) {
	outcome := &compressionDomain.Outcome{
		Format:   format,
		Envelope: s.envelope,
		Attempts: s.attempts,
	}

	switch {
	case s.accepted != nil:
		outcome.Status = compressionDomain.StatusAccepted
		outcome.Candidate = s.accepted
	case s.best != nil:
		outcome.Status = compressionDomain.StatusBestEffort
		outcome.Candidate = s.best
	default:
		outcome.Status = compressionDomain.StatusFailed
		return outcome, common.NewConversionError(common.ErrEnvelopeUnsatisfiable, operation, "",
			errNothingUnderMax(s.envelope, len(s.attempts)))
	}
	return outcome, nil
}
