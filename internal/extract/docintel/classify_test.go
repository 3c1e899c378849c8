package docintel

import (
	"testing"

	"github.com/docstack/extractor/constants"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		filename string
		want     constants.DocumentType
		wantConf float32
	}{
		{
			name: "invoice keywords",
			text: "FACTURE n° 42\nTotal TTC: 100,00\nTVA 20%\nmontant dû",
			want: constants.DocInvoice,
		},
		{
			name:     "cv via filename",
			text:     "John Doe\nwork experience\nnothing else here",
			filename: "john-doe-cv.pdf",
			want:     constants.DocCV,
		},
		{
			name: "contract",
			text: "CONTRAT de prestation entre les soussignés... la clause 4 prévoit la termination",
			want: constants.DocContract,
		},
		{
			name:     "single hit stays other",
			text:     "there is one invoice mention but nothing more",
			want:     constants.DocOther,
			wantConf: 0.5,
		},
		{
			name:     "no hits",
			text:     "completely unrelated prose",
			want:     constants.DocOther,
			wantConf: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := Classify(tt.text, tt.filename)
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
			if tt.wantConf > 0 && conf != tt.wantConf {
				t.Errorf("confidence = %v, want %v", conf, tt.wantConf)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %v out of range", conf)
			}
		})
	}
}

func TestClassify_ConfidenceScaling(t *testing.T) {
	// exactly two hits: score/5 = 0.4, right at the historical invoice gate
	_, conf := Classify("facture avec un montant", "")
	if conf != 0.4 {
		t.Errorf("confidence = %v, want 0.4", conf)
	}

	// six hits cap at 0.95
	text := "facture invoice tva montant siret échéance"
	_, conf = Classify(text, "")
	if conf != 0.95 {
		t.Errorf("confidence = %v, want 0.95 cap", conf)
	}
}
