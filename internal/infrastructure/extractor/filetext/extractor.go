package filetext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/byroteam/byro/internal/core/ports"
)

// Extractor pulls plain text out of stored blobs: PDFs, spreadsheets, and
// plain UTF-8 text. The format is picked from the blob key's extension,
// which the upload path carries over from the original filename.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, blobRef string) (string, error) {
	reader, err := e.storage.Open(ctx, blobRef)
	if err != nil {
		return "", fmt.Errorf("open source blob: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source blob: %w", err)
	}

	switch strings.ToLower(filepath.Ext(blobRef)) {
	case ".pdf":
		return extractPDF(raw)
	case ".xlsx", ".xlsm":
		return extractSpreadsheet(raw)
	default:
		return extractPlaintext(blobRef, raw)
	}
}

func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}

func extractSpreadsheet(raw []byte) (string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse spreadsheet: %w", err)
	}
	defer book.Close()

	var builder strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			builder.WriteString(strings.Join(row, "\t"))
			builder.WriteByte('\n')
		}
	}
	return strings.TrimSpace(builder.String()), nil
}

func extractPlaintext(blobRef string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary format: %s", filepath.Base(blobRef))
	}
	return strings.TrimSpace(string(raw)), nil
}
