package docintel

import (
	"strings"

	"github.com/docstack/extractor/constants"
)

// Fixed keyword sets per category. Scoring counts how many terms appear in
// the lowercased text; the filename participates for CV terms because resumes
// are usually named after their owner plus "cv"/"resume".
var (
	invoiceKeywords = []string{
		"facture", "invoice", "tva", "total ttc", "total ht", "montant",
		"échéance", "due date", "siret", "payment terms", "net à payer",
	}
	cvKeywords = []string{
		"curriculum vitae", "cv", "resume", "résumé", "expérience professionnelle",
		"work experience", "formation", "education", "compétences", "skills",
	}
	contractKeywords = []string{
		"contrat", "contract", "agreement", "entre les soussignés", "parties",
		"clause", "whereas", "termination", "conditions générales", "hereinafter",
	}
)

// Classify runs the keyword-scoring classifier over Level-1 text. The top
// category wins when its score reaches 2, with confidence min(score/5, 0.95);
// anything weaker is "other" at 0.5.
func Classify(text, filename string) (constants.DocumentType, float32) {
	lower := strings.ToLower(text)
	lowerName := strings.ToLower(filename)

	scores := map[constants.DocumentType]int{
		constants.DocInvoice:  countHits(lower, "", invoiceKeywords),
		constants.DocCV:       countHits(lower, lowerName, cvKeywords),
		constants.DocContract: countHits(lower, "", contractKeywords),
	}

	best := constants.DocOther
	bestScore := 0
	// fixed order keeps ties deterministic
	for _, cat := range []constants.DocumentType{constants.DocInvoice, constants.DocCV, constants.DocContract} {
		if scores[cat] > bestScore {
			best = cat
			bestScore = scores[cat]
		}
	}

	if bestScore < 2 {
		return constants.DocOther, 0.5
	}
	conf := float32(bestScore) / 5
	if conf > 0.95 {
		conf = 0.95
	}
	return best, conf
}

func countHits(text, filename string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) || (filename != "" && strings.Contains(filename, kw)) {
			hits++
		}
	}
	return hits
}
