package assets

import (
	"errors"
	"html/template"
	"strings"
	"testing"
)

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	for _, name := range []string{DefaultStyleName, "minimal"} {
		if css, err := LoadStyle(name); err != nil || css == "" {
			t.Errorf("LoadStyle(%q) = %d bytes, %v", name, len(css), err)
		}
	}
	if _, err := LoadStyle("my-style"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(my-style) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := LoadTemplate("../styles/default"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadTemplate(traversal) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestLoadTemplate_DocumentContent(t *testing.T) {
	t.Parallel()

	content, err := LoadTemplate(DocumentTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate(document) error: %v", err)
	}

	for _, part := range []string{"<!DOCTYPE html>", `<meta charset="utf-8">`, "</head>", "{{.Title}}", "{{.Body}}"} {
		if !strings.Contains(content, part) {
			t.Errorf("document template should contain %q", part)
		}
	}

	// The template must parse as html/template.
	if _, err := template.New("document").Parse(content); err != nil {
		t.Errorf("document template does not parse: %v", err)
	}
}

func TestLoadStyle_NoStyleCloseSequence(t *testing.T) {
	t.Parallel()

	for _, name := range []string{DefaultStyleName, "minimal"} {
		css, err := LoadStyle(name)
		if err != nil {
			t.Fatalf("LoadStyle(%q) error = %v", name, err)
		}
		if strings.Contains(css, "</") {
			t.Errorf("style %q contains a closing tag sequence", name)
		}
	}
}
