package etl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"erp-assistant-backend/internal/logger"
	"erp-assistant-backend/models"
)

// RST cleanup rules, applied in order. Directive and role markup carries no
// prose value and poisons the embeddings if left in.
var (
	roleTagRegex     = regexp.MustCompile(`:\w+:`)
	directiveRegex   = regexp.MustCompile(`\.\. .*?::.*`)
	linkRegex        = regexp.MustCompile("`([^`<]+) <[^>]+>`_")
	inlineRoleRegex  = regexp.MustCompile(":\\w+:`([^`]+)`")
	headingRuleRegex = regexp.MustCompile(`(?m)^[=\-~` + "`" + `:\.'^]{3,}`)
	blankLinesRegex  = regexp.MustCompile(`\n\s*\n`)
)

// Extractor walks a local RST documentation tree and produces the cleaned
// document set consumed by the chunking stage.
type Extractor struct {
	Root        string
	MinLength   int
	RawDocsPath string
}

func NewExtractor(root string, minLength int, rawDocsPath string) *Extractor {
	return &Extractor{Root: root, MinLength: minLength, RawDocsPath: rawDocsPath}
}

// Run extracts every .rst file under Root, discards documents that clean
// down to less than MinLength characters, and writes the survivors as JSON.
func (e *Extractor) Run() error {
	if _, err := os.Stat(e.Root); err != nil {
		return fmt.Errorf("documentation root not found: %s", e.Root)
	}

	var documents []models.Document
	skipped := 0

	err := filepath.Walk(e.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".rst") {
			return nil
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			logger.Warn("Skipping unreadable file", "path", path, "error", readErr)
			return nil
		}

		cleaned := CleanRST(string(raw))
		if len(cleaned) <= e.MinLength {
			skipped++
			return nil
		}

		documents = append(documents, models.Document{
			SourceFile: info.Name(),
			Category:   filepath.Base(filepath.Dir(path)),
			FullPath:   path,
			Content:    cleaned,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking documentation tree: %w", err)
	}

	logger.Info("Extraction finished",
		"documents", len(documents), "skipped", skipped, "root", e.Root)

	return writeJSON(e.RawDocsPath, documents)
}

// CleanRST strips RST markup and boilerplate. Index pages (toctree) carry no
// content of their own and come back empty.
func CleanRST(text string) string {
	if strings.Contains(text, ".. toctree::") {
		return ""
	}

	text = inlineRoleRegex.ReplaceAllString(text, "$1")
	text = roleTagRegex.ReplaceAllString(text, "")
	text = directiveRegex.ReplaceAllString(text, "")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = headingRuleRegex.ReplaceAllString(text, "")

	// Bare path lines are navigation leftovers
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "/") && !strings.Contains(line, " ") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	text = strings.Join(cleaned, "\n")

	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
