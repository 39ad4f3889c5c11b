package compression

import (
	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"
)

const maxDocumentPasses = 5

// ReencodeDocument repeatedly re-packs a PDF, evaluating each pass against the envelope.
// Document metadata is stripped once before the first pass. Each pass starts
// from the previous pass's output. Size is not assumed to shrink from pass to pass.
func (c *Compressor) ReencodeDocument(data []byte, envelope compressionDomain.Envelope) (*compressionDomain.Outcome, error) {
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, common.Rejectf("reencode document", "document is empty")
	}

	current, err := c.packer.StripMetadata(data)
	if err != nil {
		return nil, common.NewConversionError(common.ErrDecodeFailed, "reencode document", "", err)
	}

	s := newSearch(envelope)
	for pass := 1; pass <= maxDocumentPasses; pass++ {
		packed, err := c.packer.Repack(current)
		if err != nil {
			if pass == 1 {
				return nil, common.NewConversionError(common.ErrDecodeFailed, "reencode document", "", err)
			}
			c.logger.Warn("Re-pack pass failed, keeping earlier passes", "pass", pass, "error", err)
			break
		}

		candidate := &compressionDomain.Candidate{
			Data: packed,
			Size: len(packed),
			Pass: pass,
		}
		accepted := s.offer(pass, candidate)

		c.logger.Debug("Document pass",
			"pass", pass,
			"size_kb", candidate.SizeKB(),
			"accepted", accepted)

		if accepted {
			break
		}
		current = packed
	}

	return s.outcome(compressionDomain.FormatPDF, "reencode document")
}
