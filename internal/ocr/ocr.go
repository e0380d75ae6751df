// Package ocr defines the contract for math OCR vendors.
package ocr

import (
	"context"
	"errors"
)

// Result is the vendor-independent OCR output. Confidence is a percentage
// in [0,100].
type Result struct {
	Text       string
	LaTeX      string
	Confidence float64
}

// Client recognizes math content in an image or PDF on disk.
type Client interface {
	Recognize(ctx context.Context, filePath string) (Result, error)
}

// ErrNotConfigured indicates no OCR vendor credentials were supplied.
var ErrNotConfigured = errors.New("OCR is not configured")

// Unconfigured is the Client used when no vendor credentials exist.
// Every recognition attempt fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Recognize(ctx context.Context, filePath string) (Result, error) {
	return Result{}, ErrNotConfigured
}

// MsgPDFTooLarge is the user-facing message for the vendor's oversize-PDF
// condition. The frontend matches on it verbatim.
const MsgPDFTooLarge = "This PDF is too large. We currently only support single-page PDFs. Please upload a smaller file."

// ErrPDFTooLarge signals the oversize-PDF condition.
var ErrPDFTooLarge = errors.New(MsgPDFTooLarge)
