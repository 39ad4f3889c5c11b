package compression

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"docfit/internal/common"
	compressionDomain "docfit/internal/domain/compression"

	"github.com/panjf2000/ants/v2"
)

// pageQuality is the quality used for JPEG pages before assembly
const pageQuality = 0.92

// Assemble lays out each asset on its own page, sized to the asset's pixel
// dimensions, in input order
func (c *Compressor) Assemble(ctx context.Context, assets []compressionDomain.RasterAsset) ([]byte, error) {
	if len(assets) == 0 {
		return nil, common.NewConversionError(common.ErrInputRejected, "assemble document", "", common.ErrNoFilesProvided)
	}
	for _, asset := range assets {
		if asset.Image == nil || asset.Image.Bounds().Empty() {
			return nil, common.Rejectf("assemble document", "image %q has no pixels", asset.Name)
		}
	}

	pages, err := c.encodePages(ctx, assets)
	if err != nil {
		return nil, err
	}

	data, err := c.assembler.Assemble(pages)
	if err != nil {
		return nil, common.NewConversionError(common.ErrDecodeFailed, "assemble document", "", err)
	}

	c.logger.Debug("Assembled document", "pages", len(pages), "size_kb", common.SizeKB(len(data)))
	return data, nil
}

// AssembleAndReencode assembles the assets and runs the document search on the result
func (c *Compressor) AssembleAndReencode(ctx context.Context, assets []compressionDomain.RasterAsset, envelope compressionDomain.Envelope) (*compressionDomain.Outcome, error) {
	if len(assets) == 0 {
		return nil, common.NewConversionError(common.ErrInputRejected, "assemble document", "", common.ErrNoFilesProvided)
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	data, err := c.Assemble(ctx, assets)
	if err != nil {
		return nil, err
	}
	return c.ReencodeDocument(data, envelope)
}

// encodePages encodes every asset concurrently; the returned pages keep input order
func (c *Compressor) encodePages(ctx context.Context, assets []compressionDomain.RasterAsset) ([]compressionDomain.Page, error) {
	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	pages := make([]compressionDomain.Page, len(assets))
	errs := make([]error, len(assets))
	var wg sync.WaitGroup

	for i, asset := range assets {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}

		wg.Add(1)
		index := i
		current := asset

		err := pool.Submit(func() {
			defer wg.Done()
			pages[index], errs[index] = c.encodePage(current)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *Compressor) encodePage(asset compressionDomain.RasterAsset) (compressionDomain.Page, error) {
	// Untouched JPEG sources are embedded as they are
	if asset.Format == compressionDomain.FormatJPEG && len(asset.Source) > 0 {
		return compressionDomain.Page{
			Data:   asset.Source,
			Format: compressionDomain.FormatJPEG,
			Width:  asset.Width(),
			Height: asset.Height(),
		}, nil
	}

	format := compressionDomain.FormatJPEG
	if asset.Format == compressionDomain.FormatPNG {
		format = compressionDomain.FormatPNG
	}

	data, err := c.codec.Encode(asset.Image, format, pageQuality)
	if err != nil {
		return compressionDomain.Page{}, common.NewConversionError(common.ErrDecodeFailed, "encode page", asset.Name, err)
	}

	return compressionDomain.Page{
		Data:   data,
		Format: format,
		Width:  asset.Width(),
		Height: asset.Height(),
	}, nil
}
