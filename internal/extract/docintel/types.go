package docintel

import "encoding/json"

// Wire types for the document-intelligence REST API. Only the parts the
// pipeline consumes are modeled; everything else rides along in the raw
// diagnostic payload.

type analyzeOperation struct {
	Status        string         `json:"status"` // notStarted | running | succeeded | failed
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
	Error         *apiError      `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AnalyzeResult struct {
	ModelID   string     `json:"modelId"`
	Content   string     `json:"content"`
	Pages     []Page     `json:"pages"`
	Tables    []Table    `json:"tables,omitempty"`
	Documents []Document `json:"documents,omitempty"`
}

type Page struct {
	PageNumber int     `json:"pageNumber"` // 1-indexed on the wire
	Unit       string  `json:"unit"`       // "inch" | "pixel"
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Words      []Word  `json:"words,omitempty"`
	Lines      []Line  `json:"lines,omitempty"`
}

type Word struct {
	Content    string    `json:"content"`
	Polygon    []float64 `json:"polygon"`
	Confidence float64   `json:"confidence"`
}

type Line struct {
	Content string    `json:"content"`
	Polygon []float64 `json:"polygon"`
}

type Table struct {
	RowCount        int              `json:"rowCount"`
	ColumnCount     int              `json:"columnCount"`
	Cells           []TableCell      `json:"cells"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
}

type TableCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	Content     string `json:"content"`
}

// Document is one structured document from a specialized model. Field values
// arrive in drifting shapes across API versions, so they stay raw here and go
// through the defensive scalar helpers in invoice.go.
type Document struct {
	DocType    string                     `json:"docType"`
	Fields     map[string]json.RawMessage `json:"fields"`
	Confidence float64                    `json:"confidence"`
}

type BoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}
