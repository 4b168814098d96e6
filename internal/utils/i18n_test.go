package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "ok" {
		t.Fatalf("fallback to en failed: %s", got)
	}
	if got := T("es", "missing.key"); got != "missing.key" {
		t.Fatalf("unknown key should echo, got %s", got)
	}
}

func TestT_TierTablesComplete(t *testing.T) {
	for _, loc := range SupportedLocales {
		for key := range translations["en"] {
			if _, ok := translations[loc][key]; !ok {
				t.Fatalf("locale %s missing key %s", loc, key)
			}
		}
	}
	if got := T("es", "tier.moderate.label"); got != "Riesgo moderado" {
		t.Fatalf("es moderate label = %q", got)
	}
}
