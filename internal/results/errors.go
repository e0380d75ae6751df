package results

import "errors"

// ErrNotFound indicates no OCR result exists for the document.
var ErrNotFound = errors.New("ocr result not found")
