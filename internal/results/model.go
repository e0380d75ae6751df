package results

import "time"

// OCRResult is the stored outcome of running a document through
// recognition and correction. At most one row per document.
type OCRResult struct {
	ID            string
	DocumentID    string
	OriginalText  string
	CorrectedText string
	LaTeXCode     string
	Confidence    float64
	CreatedAt     time.Time
}
