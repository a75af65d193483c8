// In file: internal/llm/documents.go
package llm

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// SupportedExtensions lists the document types the corpus can index.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".docx": true,
	".pdf":  true,
}

// sourceDocument is one file's extracted plain text.
type sourceDocument struct {
	Name string
	Text string
}

// loadDocuments reads every supported file directly under dir, sorted by name.
// A missing directory yields an empty corpus, not an error.
func loadDocuments(ctx context.Context, dir string) ([]sourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read documents dir %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var docs []sourceDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !SupportedExtensions[ext] {
			log.Printf("Unsupported file type: %s. Skipping.", entry.Name())
			continue
		}
		text, err := extractText(ctx, filepath.Join(dir, entry.Name()), ext)
		if err != nil {
			log.Printf("⚠️  Could not extract text from %s: %v", entry.Name(), err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, sourceDocument{Name: entry.Name(), Text: text})
	}
	return docs, nil
}

// extractText returns a file's plain text. PDF pages are joined with blank lines.
func extractText(ctx context.Context, path, ext string) (text string, err error) {
	if ext == ".docx" {
		return extractDocxText(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var loader documentloaders.Loader
	if ext == ".pdf" {
		// The PDF reader panics on some malformed cross-reference tables.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("malformed pdf %s: %v", filepath.Base(path), r)
			}
		}()
		info, err := f.Stat()
		if err != nil {
			return "", err
		}
		loader = documentloaders.NewPDF(f, info.Size())
	} else {
		loader = documentloaders.NewText(f)
	}

	pages, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		if content := strings.TrimSpace(page.PageContent); content != "" {
			texts = append(texts, content)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}

// extractDocxText pulls paragraph text out of word/document.xml.
func extractDocxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return paragraphsFromWordXML(rc)
	}
	return "", errors.New("docx archive has no word/document.xml")
}

func paragraphsFromWordXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document.xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return b.String(), nil
}
