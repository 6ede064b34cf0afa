package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"redraft/internal/config"
	"redraft/internal/services"
)

// Extractor converts supported upload formats into plain text.
type Extractor struct {
	cfg config.Extract
}

// New constructs an extractor with the supplied settings.
func New(cfg config.Extract) *Extractor {
	return &Extractor{cfg: cfg}
}

// Text extracts plain text from the upload content based on its extension.
// The extension must already be lowercased and include the leading dot.
func (e *Extractor) Text(ctx context.Context, ext string, content []byte) (string, error) {
	switch ext {
	case ".txt":
		return plainText(content)
	case ".docx":
		return docxText(content)
	case ".doc":
		return e.docText(ctx, content)
	default:
		return "", services.Wrap(services.ErrValidation, "extract", "dispatch",
			fmt.Sprintf("unsupported extension %q", ext), nil)
	}
}

// plainText decodes .txt uploads, falling back to GB18030 when the bytes are
// not valid UTF-8. Legacy Chinese documents are commonly GBK-encoded.
func plainText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})), nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), content)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extract", "decode txt",
			"file is neither valid UTF-8 nor GB18030", err)
	}
	return string(decoded), nil
}

// docxText pulls paragraphs out of word/document.xml inside the docx archive.
func docxText(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extract", "open docx",
			"file is not a valid docx archive", err)
	}

	var document *zip.File
	for _, file := range reader.File {
		if file.Name == "word/document.xml" {
			document = file
			break
		}
	}
	if document == nil {
		return "", services.Wrap(services.ErrValidation, "extract", "open docx",
			"docx archive has no word/document.xml", nil)
	}

	rc, err := document.Open()
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extract", "read docx",
			"open document.xml", err)
	}
	defer rc.Close()

	return decodeDocumentXML(rc)
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder
	var inText bool
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", services.Wrap(services.ErrValidation, "extract", "parse docx",
				"malformed document.xml", err)
		}
		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "br":
				b.WriteByte('\n')
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
	return strings.TrimRight(b.String(), "\n"), nil
}

// docText shells out to the configured converter for legacy .doc files. The
// binary must accept the file path and print plain text on stdout.
func (e *Extractor) docText(ctx context.Context, content []byte) (string, error) {
	if e.cfg.DocConverter == "" {
		return "", services.Wrap(services.ErrConfiguration, "extract", "doc",
			"no doc converter configured", nil)
	}

	timeout := 30 * time.Second
	if e.cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(e.cfg.TimeoutSeconds) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tmp, err := writeTempDoc(content)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extract", "doc", "stage temp file", err)
	}
	defer tmp.cleanup()

	cmd := exec.CommandContext(runCtx, e.cfg.DocConverter, tmp.path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrExternalTool, "extract", "doc",
			fmt.Sprintf("%s failed: %s", e.cfg.DocConverter, detail), err)
	}
	return plainText(stdout.Bytes())
}

// HealthCheck reports whether the doc converter binary is resolvable.
func (e *Extractor) HealthCheck() error {
	if e.cfg.DocConverter == "" {
		return services.Wrap(services.ErrConfiguration, "extract", "health",
			"no doc converter configured", nil)
	}
	if _, err := exec.LookPath(e.cfg.DocConverter); err != nil {
		return services.Wrap(services.ErrConfiguration, "extract", "health",
			fmt.Sprintf("doc converter %q not found in PATH", e.cfg.DocConverter), err)
	}
	return nil
}
