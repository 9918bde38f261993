// Package docx extracts plain text from Word .docx documents.
//
// Only the main document part is read. Paragraphs are separated by a blank
// line, tabs and line breaks are kept, formatting is dropped.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sozercan/thesis-ai/internal/thesis"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	// maxDocumentXML bounds the decompressed size of document.xml.
	maxDocumentXML = 64 << 20
)

var errNoDocument = errors.New("missing " + documentPart)

// CheckFilename rejects anything that is not a .docx file.
func CheckFilename(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		return &thesis.InputError{Reason: "only .docx files are supported"}
	}
	return nil
}

// Extract returns the text of the .docx named filename with contents r.
func Extract(filename string, r io.ReaderAt, size int64) (string, error) {
	if err := CheckFilename(filename); err != nil {
		return "", err
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", &thesis.ExtractionError{Filename: filename, Err: err}
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", &thesis.ExtractionError{Filename: filename, Err: errNoDocument}
	}

	rc, err := part.Open()
	if err != nil {
		return "", &thesis.ExtractionError{Filename: filename, Err: err}
	}
	defer rc.Close()

	text, err := documentText(io.LimitReader(rc, maxDocumentXML))
	if err != nil {
		return "", &thesis.ExtractionError{Filename: filename, Err: err}
	}
	return text, nil
}

// ExtractBytes is Extract for an in-memory document.
func ExtractBytes(filename string, data []byte) (string, error) {
	return Extract(filename, bytes.NewReader(data), int64(len(data)))
}

func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out       strings.Builder
		para      strings.Builder
		inText    bool
		inProps   int
		paragraph int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "pPr":
				// tab stops are declared as w:tab inside paragraph properties
				inProps++
			case "t":
				inText = true
			case "tab":
				if inProps == 0 {
					para.WriteByte('\t')
				}
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "pPr":
				inProps--
			case "t":
				inText = false
			case "p":
				if paragraph > 0 {
					out.WriteString("\n\n")
				}
				out.WriteString(para.String())
				para.Reset()
				paragraph++
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return out.String(), nil
}
