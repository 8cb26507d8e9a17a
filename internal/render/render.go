package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"receipts/internal/receipt"
	"regexp"
)

//go:embed templates/*.html
var embedded embed.FS

const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatText = "text"
)

var reUnsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type Options struct {
	// TemplateDir replaces the embedded templates when set.
	TemplateDir string
	OutputDir   string
	Format      string
	// PDFConverter is invoked as "<converter> <in.html> <out.pdf>".
	PDFConverter string
}

// Renderer turns receipts into printable files on local disk.
type Renderer struct {
	templates fs.FS
	outputDir string
	format    string
	converter string
}

func New(opts Options) (*Renderer, error) {
	var templates fs.FS
	if opts.TemplateDir != "" {
		templates = os.DirFS(opts.TemplateDir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		templates = sub
	}

	format := opts.Format
	if format == "" {
		format = FormatPDF
	}
	switch format {
	case FormatPDF, FormatHTML, FormatText:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	converter := opts.PDFConverter
	if converter == "" {
		converter = "weasyprint"
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	return &Renderer{
		templates: templates,
		outputDir: outputDir,
		format:    format,
		converter: converter,
	}, nil
}

// Render executes templateName with r and returns the path of the printable file.
func (rd *Renderer) Render(ctx context.Context, r *receipt.Receipt, templateName string) (string, error) {
	tmpl, err := template.ParseFS(rd.templates, templateName)
	if err != nil {
		return "", fmt.Errorf("failed to load template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", templateName, err)
	}

	if err := os.MkdirAll(rd.outputDir, 0755); err != nil {
		return "", err
	}

	base := filepath.Join(rd.outputDir, "receipt-"+fileName(r.RecordID))
	htmlPath := base + ".html"
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
		return "", err
	}

	switch rd.format {
	case FormatHTML:
		return htmlPath, nil
	case FormatText:
		text, err := HTMLToText(buf.Bytes())
		if err != nil {
			return "", err
		}
		textPath := base + ".txt"
		if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
			return "", err
		}
		return textPath, nil
	default:
		pdfPath := base + ".pdf"
		if err := rd.convert(ctx, htmlPath, pdfPath); err != nil {
			return "", err
		}
		return pdfPath, nil
	}
}

func (rd *Renderer) convert(ctx context.Context, htmlPath, pdfPath string) error {
	cmd := exec.CommandContext(ctx, rd.converter, htmlPath, pdfPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", rd.converter, err, bytes.TrimSpace(out))
	}

	if _, err := os.Stat(pdfPath); err != nil {
		return errors.New(rd.converter + " did not produce " + pdfPath)
	}
	return nil
}

func fileName(recordID string) string {
	name := reUnsafeName.ReplaceAllString(recordID, "_")
	if name == "" {
		return "unknown"
	}
	return name
}
