package documents

import "time"

// Document is an uploaded notes file plus the metadata the pipeline
// needs to process it.
type Document struct {
	ID         string
	UserID     string
	FileName   string
	StorageKey string
	FileURL    string
	MimeType   string
	MathType   string
	Prompt     string
	Status     Status
	CreatedAt  time.Time
}

// MathTypes is the closed list of accepted math categories.
var MathTypes = []string{
	"Algebra",
	"Geometry",
	"Calculus",
	"Linear Algebra",
	"Statistics",
	"Discrete Mathematics",
	"Number Theory",
	"Differential Equations",
	"Trigonometry",
	"Other",
}

// ValidMathType reports whether mathType is one of the accepted categories.
func ValidMathType(mathType string) bool {
	for _, mt := range MathTypes {
		if mt == mathType {
			return true
		}
	}
	return false
}

// allowedMimeTypes are the upload formats the OCR vendor accepts.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// AllowedMimeType reports whether mimeType may be uploaded.
func AllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[mimeType]
}
