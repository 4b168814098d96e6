package utils

// Server-side strings for tier labels and estimates.
// Form labels live in the frontend.

// SupportedLocales lists the locales T has tables for, default first.
var SupportedLocales = []string{"en", "es"}

var translations = map[string]map[string]string{
	"en": {
		"health.ok":                       "ok",
		"tier.low.label":                  "Low risk",
		"tier.low.estimate":               "1 in 100 people will develop diabetes",
		"tier.slightly_elevated.label":    "Slightly elevated risk",
		"tier.slightly_elevated.estimate": "1 in 25 people will develop diabetes",
		"tier.moderate.label":             "Moderate risk",
		"tier.moderate.estimate":          "1 in 6 people will develop diabetes",
		"tier.high.label":                 "High risk",
		"tier.high.estimate":              "1 in 3 people will develop diabetes",
		"tier.very_high.label":            "Very high risk",
		"tier.very_high.estimate":         "1 in 2 people will develop diabetes",
		"report.title":                    "Diabetes Risk Report",
		"report.patient":                  "1. Patient data",
		"report.results":                  "2. FINDRISC results",
		"report.analysis":                 "3. AI analysis and recommendations",
		"report.analysis.unavailable":     "Narrative analysis unavailable.",
	},
	"es": {
		"health.ok":                       "ok",
		"tier.low.label":                  "Riesgo bajo",
		"tier.low.estimate":               "1 de cada 100 personas desarrollará diabetes",
		"tier.slightly_elevated.label":    "Riesgo ligeramente elevado",
		"tier.slightly_elevated.estimate": "1 de cada 25 personas desarrollará diabetes",
		"tier.moderate.label":             "Riesgo moderado",
		"tier.moderate.estimate":          "1 de cada 6 personas desarrollará diabetes",
		"tier.high.label":                 "Riesgo alto",
		"tier.high.estimate":              "1 de cada 3 personas desarrollará diabetes",
		"tier.very_high.label":            "Riesgo muy alto",
		"tier.very_high.estimate":         "1 de cada 2 personas desarrollará diabetes",
		"report.title":                    "Reporte de Riesgo de Diabetes",
		"report.patient":                  "1. Datos del paciente",
		"report.results":                  "2. Resultados del cuestionario FINDRISC",
		"report.analysis":                 "3. Análisis y recomendaciones por IA",
		"report.analysis.unavailable":     "Análisis narrativo no disponible.",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
