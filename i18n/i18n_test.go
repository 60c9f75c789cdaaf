package i18n

import (
	"strings"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("FR-fr") != "fr" {
		t.Fatalf("expected fr for FR-fr")
	}
	if DetectLanguage("fr-FR,fr;q=0.8") != "fr" {
		t.Fatalf("expected fr")
	}
	if DetectLanguage("de-DE") != "en" {
		t.Fatalf("expected en fallback for unsupported language")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	if T("en", "quantity_min") != "Quantity min 1" {
		t.Fatalf("expected Quantity min 1")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation
	if T("es", "required") != "Required" {
		t.Fatalf("expected en fallback for es lang")
	}
}

func TestCataloguesShareKeys(t *testing.T) {
	for code := range catalog["en"] {
		if _, ok := catalog["fr"][code]; !ok {
			t.Errorf("fr is missing %q", code)
		}
		if strings.HasPrefix(code, "flash_") {
			t.Errorf("unused flash key %q", code)
		}
	}
	for code := range catalog["fr"] {
		if _, ok := catalog["en"][code]; !ok {
			t.Errorf("en is missing %q", code)
		}
	}
	for _, code := range []string{"number_too_large", "total_max", "too_long"} {
		if T("en", code) == code {
			t.Errorf("no en message for %q", code)
		}
	}
}
