package security

import (
	"strings"
	"testing"
)

func TestSanitizeBodyEscapesPlainText(t *testing.T) {
	got := SanitizeBody(`5 < 10 & "quoted"`)
	if strings.Contains(got, "<") || strings.Contains(got, "&\"") {
		t.Fatalf("expected plain text to be fully escaped, got %q", got)
	}
}

func TestSanitizeBodyPreservesAllowedTags(t *testing.T) {
	got := SanitizeBody("this is <b>bold</b> and <i>italic</i>")
	if !strings.Contains(got, "<b>bold</b>") {
		t.Fatalf("expected <b> to survive sanitization, got %q", got)
	}
	if !strings.Contains(got, "<i>italic</i>") {
		t.Fatalf("expected <i> to survive sanitization, got %q", got)
	}
}

func TestSanitizeBodyPreservesSafeAnchor(t *testing.T) {
	got := SanitizeBody(`see <a href="https://example.com/fleet">the fleet roster</a>`)
	if !strings.Contains(got, `<a href="https://example.com/fleet">`) {
		t.Fatalf("expected a safe https anchor to survive, got %q", got)
	}
	if !strings.Contains(got, "</a>") {
		t.Fatalf("expected the closing anchor tag to survive, got %q", got)
	}
}

func TestSanitizeBodyEscapesUnsafeAnchorScheme(t *testing.T) {
	got := SanitizeBody(`<a href="javascript:alert(1)">click</a>`)
	if strings.Contains(got, `href="javascript:alert(1)"`) {
		t.Fatalf("expected a javascript: href to never survive unescaped, got %q", got)
	}
	if strings.Contains(got, "<a ") {
		t.Fatalf("expected the unsafe anchor tag itself to be escaped, got %q", got)
	}
}

func TestSanitizeBodyDoesNotInjectScriptTag(t *testing.T) {
	got := SanitizeBody(`<script>alert(1)</script>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected disallowed tags to be escaped, got %q", got)
	}
}

func TestIsSafeHrefRejectsNonHTTPSchemes(t *testing.T) {
	if isSafeHref("javascript:alert(1)") {
		t.Fatal("expected javascript: scheme to be rejected")
	}
	if isSafeHref("data:text/html,1") {
		t.Fatal("expected data: scheme to be rejected")
	}
	if !isSafeHref("https://example.com") {
		t.Fatal("expected https scheme to be accepted")
	}
	if !isSafeHref("http://example.com") {
		t.Fatal("expected http scheme to be accepted")
	}
}
