package constants

// Provider identifies an extraction strategy on the wire.
type Provider string

// Stable values (these exact strings appear in ExtractionResult JSON).
const (
	ProviderSimpleText   Provider = "simple-text"   // free, regex-based native-PDF parser
	ProviderOCR          Provider = "ocr"           // two-level document-intelligence service
	ProviderVisionSchema Provider = "vision-schema" // hosted vision-agent with fixed field schema
)

// ParseProvider maps a config string to a Provider. Empty strings stay empty
// so a missing fallback can be detected by the caller.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderSimpleText, ProviderOCR, ProviderVisionSchema:
		return Provider(s), true
	case "":
		return "", true
	}
	return "", false
}
