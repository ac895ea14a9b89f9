package submission

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/abelbrown/sylfinder/internal/model"
)

// Inspect stats path and sniffs its media type from content, not from the
// file extension.
func Inspect(path string) (model.Document, error) {
	doc := model.Document{Name: filepath.Base(path), Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return doc, fmt.Errorf("inspect %s: %w", doc.Name, err)
	}
	if info.IsDir() {
		return doc, fmt.Errorf("inspect %s: is a directory", doc.Name)
	}
	doc.Size = info.Size()

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return doc, fmt.Errorf("inspect %s: %w", doc.Name, err)
	}
	doc.MediaType = mediaType(mt)
	return doc, nil
}

// mediaType maps PDF aliases onto the canonical type and strips parameters
// such as charset.
func mediaType(mt *mimetype.MIME) string {
	if mt.Is(model.PDFMediaType) {
		return model.PDFMediaType
	}
	typ, _, _ := strings.Cut(mt.String(), ";")
	return typ
}
