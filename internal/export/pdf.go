package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/sitewizard/sitewizard/internal/images"
)

const (
	pageMargin     = 20.0
	contentWidth   = 170.0
	maxImageHeight = 100.0
)

// WritePDF lays out an article on A4 pages: the title, the image when one
// is given and its format is supported, then the word-wrapped body.
func WritePDF(w io.Writer, title, content string, img *images.Image) error {
	blocks, err := Blocks(content)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 9, tr(title), "", "L", false)
	pdf.Ln(4)

	if img != nil {
		addImage(pdf, img)
	}

	for _, b := range blocks {
		switch b.Kind {
		case Heading:
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", float64(max(18-2*b.Level, 12)))
			pdf.MultiCell(0, 7, tr(b.Text), "", "L", false)
		case ListItem:
			pdf.SetFont("Helvetica", "", 12)
			pdf.SetX(pageMargin + 4)
			pdf.MultiCell(0, 6, tr("• "+b.Text), "", "L", false)
		case Quote:
			pdf.SetFont("Helvetica", "I", 12)
			pdf.SetX(pageMargin + 6)
			pdf.MultiCell(0, 6, tr(b.Text), "", "L", false)
		case Code:
			pdf.SetFont("Courier", "", 10)
			for _, line := range strings.Split(b.Text, "\n") {
				pdf.MultiCell(0, 5, tr(line), "", "L", false)
			}
		default:
			pdf.SetFont("Helvetica", "", 12)
			pdf.MultiCell(0, 6, tr(b.Text), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func addImage(pdf *fpdf.Fpdf, img *images.Image) {
	imageType := pdfImageType(img.ContentType)
	if imageType == "" {
		slog.Warn("Skipping image in PDF, unsupported format", "content_type", img.ContentType)
		return
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	name := "article-image"
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if err := pdf.Error(); err != nil {
		slog.Warn("Skipping image in PDF", "error", err)
		pdf.ClearError()
		return
	}

	width, height := contentWidth, 0.0
	if img.Width > 0 && img.Height > 0 && contentWidth*float64(img.Height)/float64(img.Width) > maxImageHeight {
		width, height = 0, maxImageHeight
	}
	pdf.ImageOptions(name, pageMargin, 0, width, height, true, opts, 0, "")
	pdf.Ln(4)
}

func pdfImageType(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}
