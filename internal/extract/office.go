package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Office Open XML files are zip archives; the text lives in well-known XML
// parts. Only the text runs are pulled, one line per paragraph.

func docxText(data []byte) (string, error) {
	part, err := zipPart(data, "word/document.xml")
	if err != nil {
		return "", fmt.Errorf("read docx failed: %w", err)
	}
	text, err := xmlRunText(part, "t", "p")
	if err != nil {
		return "", fmt.Errorf("parse docx xml failed: %w", err)
	}
	return text, nil
}

func pptxText(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pptx failed: %w", err)
	}

	var slides []string
	for _, f := range reader.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f.Name)
		}
	}
	sort.Strings(slides)

	var parts []string
	for _, name := range slides {
		raw, err := readZipFile(reader, name)
		if err != nil {
			return "", fmt.Errorf("read pptx slide failed: %w", err)
		}
		text, err := xmlRunText(raw, "t", "p")
		if err != nil {
			return "", fmt.Errorf("parse pptx slide xml failed: %w", err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func zipPart(data []byte, name string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return readZipFile(reader, name)
}

func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	f, err := reader.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// xmlRunText walks the XML and collects character data inside elements named
// textEl (w:t in docx, a:t in pptx), emitting a newline when a paraEl
// closes.
func xmlRunText(raw []byte, textEl, paraEl string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var b strings.Builder
	depth := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textEl {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == textEl && depth > 0 {
				depth--
			}
			if t.Name.Local == paraEl {
				b.WriteString("\n")
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
