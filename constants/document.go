package constants

// DocumentType is the Level-1 classification of an analyzed document.
type DocumentType string

const (
	DocInvoice  DocumentType = "invoice"
	DocCV       DocumentType = "cv"
	DocContract DocumentType = "contract"
	DocOther    DocumentType = "other"
)

// PDFKind is the type-analyzer verdict for a buffer.
type PDFKind string

const (
	PDFNative  PDFKind = "native"
	PDFScanned PDFKind = "scanned"
	PDFHybrid  PDFKind = "hybrid"
)

// Recommendation is the routing hint produced by the type analyzer.
type Recommendation string

const (
	RecommendSimpleParser Recommendation = "simple-parser"
	RecommendOCR          Recommendation = "ocr-required"
)

// Canonical field names used in FieldBoundingBox tags and enrichment merges.
const (
	FieldGrossAmount    = "gross_amount"
	FieldNetAmount      = "net_amount"
	FieldTaxRate        = "tax_rate"
	FieldDocumentNumber = "document_number"
	FieldDocumentDate   = "document_date"
	FieldDueDate        = "due_date"
	FieldVendorName     = "vendor_name"
	FieldVendorAddress  = "vendor_address"
	FieldVendorEmail    = "vendor_email"
	FieldCustomerEmail  = "customer_email"
	FieldPurchaseOrder  = "purchase_order"
	FieldPaymentTerms   = "payment_terms"
	FieldItemsTable     = "items_table"
)
