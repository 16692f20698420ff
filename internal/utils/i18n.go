package utils

// Minimal server-side i18n for fixed keys.
// UI strings should live in the frontend; server provides only essentials.

var translations = map[string]map[string]string{
	"en": {
		"health.ok": "ok",
		"report.disclaimer": "DISCLAIMER: This report was produced with the help of artificial intelligence as a self-screening aid only. " +
			"It is not a medical or psychological diagnosis. Use it, if needed, as material to discuss with a professional (psychologist/counsellor). " +
			"For serious mental-health concerns, consult a licensed professional immediately.",
		"report.unavailable": "The automated analysis is unavailable for this screening. Your scores remain valid.",
		"report.sources":     "Verified sources",
		"report.nosources":   "No external sources were verified for this report.",
		"export.title":       "SMDS-27 SCREENING RESULT",
	},
	"id": {
		"health.ok": "ok",
		"report.disclaimer": "DISCLAIMER: Laporan ini dibuat dengan bantuan kecerdasan buatan dan hanya berfungsi sebagai alat self-assessment. " +
			"Ini bukan diagnosis medis atau psikologis. Jika diperlukan, gunakan hasil ini sebagai bahan diskusi dengan profesional (psikolog/konselor). " +
			"Untuk masalah kesehatan mental yang serius, segera konsultasikan dengan tenaga profesional berlisensi.",
		"report.unavailable": "Analisis otomatis tidak tersedia untuk skrining ini. Skor Anda tetap berlaku.",
		"report.sources":     "Sumber terverifikasi",
		"report.nosources":   "Tidak ada sumber eksternal yang terverifikasi untuk laporan ini.",
		"export.title":       "HASIL SKRINING SMDS-27",
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
