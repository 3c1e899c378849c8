package docintel

import (
	"encoding/json"
	"strings"

	"github.com/docstack/extractor/constants"
	"github.com/docstack/extractor/internal/extract"
)

// canonicalFieldNames maps provider field names to domain field names for
// bounding-polygon tagging.
var canonicalFieldNames = map[string]string{
	"InvoiceId":       constants.FieldDocumentNumber,
	"InvoiceDate":     constants.FieldDocumentDate,
	"DueDate":         constants.FieldDueDate,
	"InvoiceTotal":    constants.FieldGrossAmount,
	"SubTotal":        constants.FieldNetAmount,
	"TaxRate":         constants.FieldTaxRate,
	"VendorName":      constants.FieldVendorName,
	"VendorAddress":   constants.FieldVendorAddress,
	"VendorEmail":     constants.FieldVendorEmail,
	"CustomerEmail":   constants.FieldCustomerEmail,
	"PurchaseOrder":   constants.FieldPurchaseOrder,
	"PaymentTerm":     constants.FieldPaymentTerms,
}

// applyInvoiceFields copies the specialized model's structured fields onto
// the result. Text, pages and tables are deliberately left to Level 1.
func applyInvoiceFields(res *extract.ExtractionResult, doc *Document) {
	res.GrossAmount = scalarNumber(doc.Fields["InvoiceTotal"])
	res.NetAmount = scalarNumber(doc.Fields["SubTotal"])
	res.TaxRate = scalarNumber(doc.Fields["TaxRate"])
	res.DocumentNumber = scalarString(doc.Fields["InvoiceId"])
	res.DocumentDate = scalarDate(doc.Fields["InvoiceDate"])
	res.DueDate = scalarDate(doc.Fields["DueDate"])
	res.VendorName = scalarString(doc.Fields["VendorName"])
	res.VendorAddress = addressString(doc.Fields["VendorAddress"])
	res.VendorEmail = scalarString(doc.Fields["VendorEmail"])
	res.CustomerEmail = scalarString(doc.Fields["CustomerEmail"])
	res.PurchaseOrder = scalarString(doc.Fields["PurchaseOrder"])
	res.PaymentTerms = scalarString(doc.Fields["PaymentTerm"])
	res.Items = parseLineItems(doc.Fields["Items"])

	for name, raw := range doc.Fields {
		canon, ok := canonicalFieldNames[name]
		if !ok && name != "Items" {
			continue
		}
		if name == "Items" {
			// the items-table region is tagged as a whole
			canon = constants.FieldItemsTable
		}
		for _, region := range boundingRegions(raw) {
			res.FieldPositions = append(res.FieldPositions, extract.FieldBoundingBox{
				Field:   canon,
				Page:    region.PageNumber - 1,
				Polygon: region.Polygon,
				Text:    scalarString(raw),
			})
		}
	}
}

// fieldConfidences averages per-field confidences when the model reports
// them; zero means none were present.
func fieldConfidences(doc *Document) float32 {
	var sum float64
	var n int
	for _, raw := range doc.Fields {
		if obj := asObject(raw); obj != nil {
			if c, ok := obj["confidence"].(float64); ok {
				sum += c
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / float64(n))
}

// asObject decodes a field into a generic map, or nil for scalars.
func asObject(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// scalarString tolerates a plain string or a wrapped object carrying the
// value under valueString/content/value.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	obj := asObject(raw)
	if obj == nil {
		return ""
	}
	for _, key := range []string{"valueString", "content", "value"} {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// scalarNumber tolerates a bare number, a numeric string, or a wrapped
// object (valueNumber / valueCurrency.amount / amount / value / content).
func scalarNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return extract.ParseAmount(s)
	}
	obj := asObject(raw)
	if obj == nil {
		return nil
	}
	for _, key := range []string{"valueNumber", "amount", "value"} {
		if v, ok := obj[key].(float64); ok {
			return &v
		}
	}
	if cur, ok := obj["valueCurrency"].(map[string]any); ok {
		if v, ok := cur["amount"].(float64); ok {
			return &v
		}
	}
	for _, key := range []string{"content", "value"} {
		if v, ok := obj[key].(string); ok {
			if parsed := extract.ParseAmount(v); parsed != nil {
				return parsed
			}
		}
	}
	return nil
}

// scalarDate prefers the model's ISO valueDate and falls back to normalizing
// the display content. Invalid dates resolve to "".
func scalarDate(raw json.RawMessage) string {
	obj := asObject(raw)
	if obj != nil {
		if v, ok := obj["valueDate"].(string); ok && extract.IsISODate(v) {
			return v
		}
	}
	s := scalarString(raw)
	if s == "" {
		return ""
	}
	if extract.IsISODate(s) {
		return s
	}
	return extract.NormalizeDate(s)
}

// addressString assembles a one-line address from the structured parts when
// present, otherwise falls back to the scalar content.
func addressString(raw json.RawMessage) string {
	obj := asObject(raw)
	if obj != nil {
		if addr, ok := obj["valueAddress"].(map[string]any); ok {
			var parts []string
			for _, key := range []string{"streetAddress", "postalCode", "city", "state", "countryRegion"} {
				if v, ok := addr[key].(string); ok && strings.TrimSpace(v) != "" {
					parts = append(parts, strings.TrimSpace(v))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return scalarString(raw)
}

// parseLineItems tries, in order, the three array locations the schema has
// been observed to use and accepts the first one that is actually an array.
func parseLineItems(raw json.RawMessage) []extract.LineItem {
	obj := asObject(raw)
	if obj == nil {
		return nil
	}
	var arr []any
	for _, key := range []string{"valueArray", "value", "items"} {
		if a, ok := obj[key].([]any); ok {
			arr = a
			break
		}
	}
	if arr == nil {
		return nil
	}

	items := make([]extract.LineItem, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		// element fields may sit under valueObject, value, or at the top level
		fields := m
		if vo, ok := m["valueObject"].(map[string]any); ok {
			fields = vo
		} else if v, ok := m["value"].(map[string]any); ok {
			fields = v
		}
		items = append(items, extract.LineItem{
			Description: anyString(fields, "Description", "description"),
			Quantity:    anyNumber(fields, "Quantity", "quantity"),
			UnitPrice:   anyNumber(fields, "UnitPrice", "unit_price", "unitPrice"),
			Amount:      anyNumber(fields, "Amount", "amount", "TotalPrice"),
		})
	}
	return items
}

func anyString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if raw, err := json.Marshal(v); err == nil {
				if s := scalarString(raw); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func anyNumber(fields map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if raw, err := json.Marshal(v); err == nil {
				if n := scalarNumber(raw); n != nil {
					return n
				}
			}
		}
	}
	return nil
}

// boundingRegions pulls the polygon list off a wrapped field value.
func boundingRegions(raw json.RawMessage) []BoundingRegion {
	obj := asObject(raw)
	if obj == nil {
		return nil
	}
	list, ok := obj["boundingRegions"].([]any)
	if !ok {
		return nil
	}
	var regions []BoundingRegion
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		region := BoundingRegion{}
		if pn, ok := m["pageNumber"].(float64); ok {
			region.PageNumber = int(pn)
		}
		if poly, ok := m["polygon"].([]any); ok {
			for _, p := range poly {
				if f, ok := p.(float64); ok {
					region.Polygon = append(region.Polygon, f)
				}
			}
		}
		regions = append(regions, region)
	}
	return regions
}
