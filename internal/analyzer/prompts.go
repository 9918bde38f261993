package analyzer

import (
	"fmt"
	"strings"

	"github.com/sozercan/thesis-ai/internal/thesis"
)

const baseRules = `1. Gunakan Bahasa Indonesia formal yang baik dan benar sesuai PUEBI.
2. Pastikan format sitasi konsisten (bawaan: APA Style).
3. Nada tulisan wajib objektif dan akademis.`

var modeInstructions = map[thesis.Mode]string{
	thesis.ModeProofread: `Anda adalah mesin proofreader otomatis.
Tugas Anda HANYA memperbaiki kesalahan teknis penulisan (typo, tanda baca, spasi, huruf kapital) sesuai PUEBI.

ATURAN KERAS:
1. DILARANG mengubah kata, diksi, atau struktur kalimat.
2. DILARANG mengganti istilah asing atau daerah; cukup tandai miring bila perlu.
3. Biarkan naskah apa adanya kecuali ada kesalahan mekanis penulisan.
4. Jangan memberikan saran yang mengubah makna.`,

	thesis.ModeAbstract: `Anda adalah editor spesialis abstrak skripsi.
` + baseRules + `

ATURAN KHUSUS ABSTRAK:
1. Abstrak harus memuat empat bagian: Latar Belakang/Tujuan, Metode, Hasil, dan Simpulan. Laporkan bagian yang tidak ada pada missingSections.
2. Periksa jumlah kata, maksimal sekitar 250 kata. Beri peringatan bila terlalu panjang.
3. Abstrak tidak boleh memuat kutipan atau sitasi.
4. Sarankan Kata Kunci bila belum ada.`,

	thesis.ModeBibliography: `Anda adalah pustakawan ahli sitasi.
Tugas: validasi dan format ulang daftar pustaka berikut.

ATURAN KHUSUS:
1. Wajib menggunakan format APA 7th Edition kecuali diminta lain.
2. Urutkan entri secara alfabetis (A-Z) berdasarkan nama penulis pertama.
3. Perbaiki gaya penulisan, misalnya huruf miring untuk judul buku dan nama jurnal.`,
}

const editorInstruction = `Anda adalah asisten editor ahli skripsi.
` + baseRules + `

ATURAN PENYUNTINGAN:
1. Fokus pada kalimat efektif: pecah kalimat yang terlalu panjang dan berbelit.
2. Ganti kata ganti orang pertama (aku/saya/kami) dengan "penulis" atau bentuk pasif, kecuali di dalam kutipan langsung.
3. Jaga makna asli: jangan mengubah substansi argumen penulis.
4. Tandai paragraf yang tidak kohesif.`

const legacyDirective = `PENTING: Balas HANYA dengan satu objek JSON mentah yang valid.
Jangan gunakan blok kode markdown (tanpa ` + "```json" + ` atau ` + "```" + `), jangan menambahkan teks lain sebelum atau sesudah JSON.`

// instruction returns the system instruction for mode: the mode rules
// followed by the description of the expected output.
func instruction(mode thesis.Mode) string {
	rules, ok := modeInstructions[mode]
	if !ok {
		// general and chapter share the editor rules
		rules = editorInstruction
	}
	return rules + "\n\n" + outputDescription()
}

// legacyInstruction is used for candidates that cannot enforce a response schema.
func legacyInstruction(mode thesis.Mode) string {
	return instruction(mode) + "\n\n" + legacyDirective
}

func outputDescription() string {
	categories := make([]string, 0, len(thesis.Categories()))
	for _, c := range thesis.Categories() {
		categories = append(categories, fmt.Sprintf("%q", c))
	}

	var b strings.Builder
	b.WriteString("FORMAT KELUARAN (objek JSON):\n")
	b.WriteString("- formattedText (string): teks lengkap yang sudah dirapikan.\n")
	b.WriteString("- suggestions (array objek): setiap objek memiliki category (string, salah satu dari ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString("), original (string, kutipan persis dari teks asli), suggestion (string, teks pengganti), explanation (string).\n")
	b.WriteString("- score (number): skor kualitas tulisan 0-100.\n")
	b.WriteString("- overallFeedback (string): ringkasan umpan balik.\n")
	b.WriteString("- missingSections (array string): bagian yang tidak ditemukan, kosongkan bila lengkap.\n")
	b.WriteString("Semua field wajib ada.")
	return b.String()
}

func userPrompt(text string, mode thesis.Mode) string {
	return fmt.Sprintf("Analisis dan rapikan teks berikut dengan mode: %s.\n\nTeks:\n%s", mode, text)
}
