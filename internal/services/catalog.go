package services

import "github.com/psylab-id/smds27/internal/models"

// The SMDS-27 item set follows van den Eijnden et al. (2016): nine
// dimensions, three items each, answered on a 0..4 frequency scale.

const (
	ItemCount = 27

	LikertMin = 0
	LikertMax = 4
)

// MinTotalScore and MaxTotalScore bound the total score for a complete
// response set on the 0..4 scale.
const (
	MinTotalScore = ItemCount * LikertMin
	MaxTotalScore = ItemCount * LikertMax
)

var likertLabelsI18n = map[string][]string{
	"en": {"Never", "Rarely", "Sometimes", "Often", "Very Often"},
	"id": {"Tidak Pernah", "Jarang", "Kadang-kadang", "Sering", "Sangat Sering"},
}

var catalogItems = []models.ScaleItem{
	{ID: 1, Dimension: "Preoccupation", StemI18n: map[string]string{
		"en": "How often do you keep thinking about social media even when you are not using it?",
		"id": "Seberapa sering Anda terus memikirkan media sosial bahkan ketika tidak menggunakannya?",
	}},
	{ID: 2, Dimension: "Preoccupation", StemI18n: map[string]string{
		"en": "How often do you plan how you are going to use social media?",
		"id": "Seberapa sering Anda merencanakan bagaimana Anda akan menggunakan media sosial?",
	}},
	{ID: 3, Dimension: "Preoccupation", StemI18n: map[string]string{
		"en": "How often do you feel restless when you cannot check social media?",
		"id": "Seberapa sering Anda merasa gelisah jika tidak bisa mengecek media sosial?",
	}},
	{ID: 4, Dimension: "Tolerance", StemI18n: map[string]string{
		"en": "How often do you feel you need to spend more time on social media to feel satisfied?",
		"id": "Seberapa sering Anda merasa perlu menghabiskan lebih banyak waktu di media sosial untuk merasa puas?",
	}},
	{ID: 5, Dimension: "Tolerance", StemI18n: map[string]string{
		"en": "How often do you feel that the time you spend on social media is never enough?",
		"id": "Seberapa sering Anda merasa bahwa waktu yang Anda habiskan di media sosial tidak pernah cukup?",
	}},
	{ID: 6, Dimension: "Tolerance", StemI18n: map[string]string{
		"en": "How often do you want to use social media for even longer?",
		"id": "Seberapa sering Anda ingin menggunakan media sosial lebih lama lagi?",
	}},
	{ID: 7, Dimension: "Withdrawal", StemI18n: map[string]string{
		"en": "How often do you feel uncomfortable when you cannot use social media?",
		"id": "Seberapa sering Anda merasa tidak nyaman ketika tidak bisa menggunakan media sosial?",
	}},
	{ID: 8, Dimension: "Withdrawal", StemI18n: map[string]string{
		"en": "How often do you feel bad-tempered or irritable when you cannot check social media?",
		"id": "Seberapa sering Anda merasa bad mood atau irritable ketika tidak bisa mengecek media sosial?",
	}},
	{ID: 9, Dimension: "Withdrawal", StemI18n: map[string]string{
		"en": "How often do you feel anxious when you are not allowed to use social media?",
		"id": "Seberapa sering Anda merasa cemas jika dilarang menggunakan media sosial?",
	}},
	{ID: 10, Dimension: "Persistence", StemI18n: map[string]string{
		"en": "How often have you failed when trying to reduce the time you spend on social media?",
		"id": "Seberapa sering Anda gagal ketika mencoba mengurangi waktu penggunaan media sosial?",
	}},
	{ID: 11, Dimension: "Persistence", StemI18n: map[string]string{
		"en": "How often have you been unable to control your social media use?",
		"id": "Seberapa sering Anda tidak berhasil mengontrol penggunaan media sosial Anda?",
	}},
	{ID: 12, Dimension: "Persistence", StemI18n: map[string]string{
		"en": "How often do you keep using social media even though you had planned to stop?",
		"id": "Seberapa sering Anda terus menggunakan media sosial meskipun sudah berencana untuk berhenti?",
	}},
	{ID: 13, Dimension: "Escape", StemI18n: map[string]string{
		"en": "How often do you use social media to avoid personal problems?",
		"id": "Seberapa sering Anda menggunakan media sosial untuk menghindari masalah pribadi?",
	}},
	{ID: 14, Dimension: "Escape", StemI18n: map[string]string{
		"en": "How often do you use social media to escape from negative feelings?",
		"id": "Seberapa sering Anda menggunakan media sosial untuk melarikan diri dari perasaan negatif?",
	}},
	{ID: 15, Dimension: "Escape", StemI18n: map[string]string{
		"en": "How often do you use social media to forget about the problems you are facing?",
		"id": "Seberapa sering Anda menggunakan media sosial untuk melupakan masalah yang Anda hadapi?",
	}},
	{ID: 16, Dimension: "Problems", StemI18n: map[string]string{
		"en": "How often do you have conflicts with your parents or family because of your social media use?",
		"id": "Seberapa sering Anda memiliki konflik dengan orang tua/keluarga karena penggunaan media sosial?",
	}},
	{ID: 17, Dimension: "Problems", StemI18n: map[string]string{
		"en": "How often do you neglect friends or family because you are too focused on social media?",
		"id": "Seberapa sering Anda mengabaikan teman atau keluarga karena terlalu fokus pada media sosial?",
	}},
	{ID: 18, Dimension: "Problems", StemI18n: map[string]string{
		"en": "How often has your social media use caused problems in your relationships?",
		"id": "Seberapa sering penggunaan media sosial menyebabkan masalah dalam hubungan Anda?",
	}},
	{ID: 19, Dimension: "Displacement", StemI18n: map[string]string{
		"en": "How often do you neglect work or school assignments because of social media?",
		"id": "Seberapa sering Anda mengabaikan pekerjaan/tugas sekolah karena media sosial?",
	}},
	{ID: 20, Dimension: "Displacement", StemI18n: map[string]string{
		"en": "How often has your performance at school or work declined because of your social media use?",
		"id": "Seberapa sering kinerja sekolah/pekerjaan Anda menurun karena penggunaan media sosial?",
	}},
	{ID: 21, Dimension: "Displacement", StemI18n: map[string]string{
		"en": "How often have you missed important opportunities or activities because of social media?",
		"id": "Seberapa sering Anda kehilangan kesempatan atau aktivitas penting karena media sosial?",
	}},
	{ID: 22, Dimension: "Deception", StemI18n: map[string]string{
		"en": "How often do you lie to others about how much time you spend on social media?",
		"id": "Seberapa sering Anda berbohong kepada orang lain tentang seberapa banyak waktu yang Anda habiskan di media sosial?",
	}},
	{ID: 23, Dimension: "Deception", StemI18n: map[string]string{
		"en": "How often do you hide from others how long you have been using social media?",
		"id": "Seberapa sering Anda menyembunyikan dari orang lain berapa lama Anda menggunakan media sosial?",
	}},
	{ID: 24, Dimension: "Deception", StemI18n: map[string]string{
		"en": "How often do you cover up your social media use from family or friends?",
		"id": "Seberapa sering Anda menutupi penggunaan media sosial Anda dari keluarga atau teman?",
	}},
	{ID: 25, Dimension: "Conflict", StemI18n: map[string]string{
		"en": "How often do you argue with others because of your social media use?",
		"id": "Seberapa sering Anda bertengkar dengan orang lain karena penggunaan media sosial Anda?",
	}},
	{ID: 26, Dimension: "Conflict", StemI18n: map[string]string{
		"en": "How often do people complain about your social media use?",
		"id": "Seberapa sering orang-orang mengeluh tentang penggunaan media sosial Anda?",
	}},
	{ID: 27, Dimension: "Conflict", StemI18n: map[string]string{
		"en": "How often do you experience interpersonal problems because of social media?",
		"id": "Seberapa sering Anda mengalami masalah interpersonal karena media sosial?",
	}},
}

// Items returns the 27 scale items in id order. The returned slice is a
// copy; callers may not mutate the catalog.
func Items() []models.ScaleItem {
	out := make([]models.ScaleItem, len(catalogItems))
	copy(out, catalogItems)
	return out
}

// Dimensions returns the nine dimension names in the order items first
// appear in the instrument.
func Dimensions() []string {
	seen := map[string]bool{}
	out := make([]string, 0, 9)
	for _, it := range catalogItems {
		if !seen[it.Dimension] {
			seen[it.Dimension] = true
			out = append(out, it.Dimension)
		}
	}
	return out
}

// LikertLabels returns the localized labels for ratings 0..4, falling back
// to English for unknown locales.
func LikertLabels(locale string) []string {
	if labels, ok := likertLabelsI18n[locale]; ok {
		out := make([]string, len(labels))
		copy(out, labels)
		return out
	}
	out := make([]string, len(likertLabelsI18n["en"]))
	copy(out, likertLabelsI18n["en"])
	return out
}

// ItemDimension reports the dimension for an item id, or "" if unknown.
func ItemDimension(id int) string {
	if id < 1 || id > len(catalogItems) {
		return ""
	}
	return catalogItems[id-1].Dimension
}
