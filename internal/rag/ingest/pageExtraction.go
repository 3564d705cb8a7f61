package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"github.com/proview/proview-api/internal/domain/docModel"
)

func extractPDF(path string) ([]docModel.RawUnit, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var units []docModel.RawUnit
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// skip the page, keep the rest of the document
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		units = append(units, docModel.RawUnit{
			PageNum: i,
			Content: content,
		})
	}
	return units, nil
}

// extractFlat reads a .docx or plaintext file; page tracking is not
// available for these formats so everything lands in a single unit.
func extractFlat(path string) ([]docModel.RawUnit, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "error", err)
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []docModel.RawUnit{
		{
			PageNum: 1,
			Content: text,
		},
	}, nil
}

// protectExtract bounds one page's text extraction; dslipak/pdf can hang on
// malformed content streams.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}
