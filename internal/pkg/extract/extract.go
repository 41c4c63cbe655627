package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxSize limits the document for word counting
const MaxSize = 20 * 1024 * 1024

var (
	xmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	xmlEntities   = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

// Supported checks the file extension
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	return false
}

// Text returns plain text of a txt, pdf or docx document
func Text(name string, r io.ReaderAt, size int64) (string, error) {
	var (
		res string
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt":
		var b []byte
		b, err = io.ReadAll(io.NewSectionReader(r, 0, size))
		res = string(b)
	case ".pdf":
		res, err = pdfText(r, size)
	case ".docx":
		res, err = docxText(r, size)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return "", err
	}
	res = normalize(res)
	if res == "" {
		return "", fmt.Errorf("no extractable text found")
	}
	return res, nil
}

// CountWords returns word count of the document
func CountWords(name string, r io.ReaderAt, size int64) (int, error) {
	text, err := Text(name, r, size)
	if err != nil {
		return 0, err
	}
	return len(strings.Fields(text)), nil
}

func pdfText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("can't read pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("can't read docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return stripDocXML(string(data)), nil
	}
	return "", fmt.Errorf("docx document.xml not found")
}

func stripDocXML(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")
	return xmlEntities.Replace(xmlTagPattern.ReplaceAllString(s, " "))
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var buf bytes.Buffer
	empty := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			empty++
			if empty == 1 {
				buf.WriteString("\n")
			}
			continue
		}
		empty = 0
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return strings.TrimSpace(buf.String())
}
