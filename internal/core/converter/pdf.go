package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/models"
)

// convertPDF extracts one content item per page so chunks can record the
// page numbers they span. PDFs carry no heading structure we can recover
// here, so Heading stays empty.
func convertPDF(path string) (*models.ConvertedDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &models.ConvertedDocument{Filename: filepath.Base(path)}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One unreadable page should not sink the whole document.
			log.Warn().Err(err).Str("file", doc.Filename).Int("page", i).
				Msg("skipping unreadable pdf page")
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Items = append(doc.Items, models.ContentItem{Text: text, Page: i})
	}
	return doc, nil
}
