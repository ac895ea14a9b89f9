package model

// PDFMediaType is the only media type a syllabus may have.
const PDFMediaType = "application/pdf"

// Document is a file the user picked, with its declared media type.
// The bytes stay on disk until an upload reads them.
type Document struct {
	Name      string
	Path      string
	MediaType string
	Size      int64
}

// IsPDF reports whether the declared media type is PDF.
func (d Document) IsPDF() bool {
	return d.MediaType == PDFMediaType
}
