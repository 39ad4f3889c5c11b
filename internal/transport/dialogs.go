package transport

import (
	"context"
	"path/filepath"
	"strings"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Dialog kinds accepted by OpenFileDialog
const (
	DialogImages    = "images"
	DialogDocuments = "documents"
)

var (
	imageFilter = wailsruntime.FileFilter{
		DisplayName: "Images (*.jpg, *.jpeg, *.png, *.gif, *.bmp, *.tiff)",
		Pattern:     "*.jpg;*.jpeg;*.png;*.gif;*.bmp;*.tif;*.tiff",
	}
	pdfFilter = wailsruntime.FileFilter{
		DisplayName: "PDF Files (*.pdf)",
		Pattern:     "*.pdf",
	}
)

type dialogsHandler struct {
	ctx context.Context
}

func NewDialogsHandler(ctx context.Context) DialogHandler {
	return &dialogsHandler{
		ctx: ctx,
	}
}

func (h *dialogsHandler) OpenFileDialog(kind string) ([]string, error) {
	title, filters := openDialogFilters(kind)

	selection, err := wailsruntime.OpenMultipleFilesDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title:   title,
		Filters: filters,
	})
	if err != nil {
		return nil, err
	}

	return selection, nil
}

func (h *dialogsHandler) OpenDirectoryDialog() (string, error) {
	selection, err := wailsruntime.OpenDirectoryDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title: "Select download folder",
	})
	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) ShowSaveDialog(filename string) (string, error) {
	selection, err := wailsruntime.SaveFileDialog(h.ctx, wailsruntime.SaveDialogOptions{
		Title:           "Save converted file",
		DefaultFilename: filename,
		Filters:         []wailsruntime.FileFilter{saveDialogFilter(filename)},
	})
	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) OpenFile(filePath string) error {
	wailsruntime.BrowserOpenURL(h.ctx, "file://"+filePath)
	return nil
}

func openDialogFilters(kind string) (string, []wailsruntime.FileFilter) {
	switch kind {
	case DialogImages:
		return "Select images", []wailsruntime.FileFilter{imageFilter}
	case DialogDocuments:
		return "Select PDF files", []wailsruntime.FileFilter{pdfFilter}
	}
	return "Select files", []wailsruntime.FileFilter{imageFilter, pdfFilter}
}

func saveDialogFilter(filename string) wailsruntime.FileFilter {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfFilter
	case ".png":
		return wailsruntime.FileFilter{DisplayName: "PNG Images (*.png)", Pattern: "*.png"}
	}
	return wailsruntime.FileFilter{DisplayName: "JPEG Images (*.jpg)", Pattern: "*.jpg;*.jpeg"}
}
