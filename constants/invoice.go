package constants

import "strings"

// TaxRate is the flat tax applied to every invoice subtotal.
const TaxRate = 0.10

// InvoiceNumberPrefix prefixes the zero-padded sequence number.
const InvoiceNumberPrefix = "INV-"

// MaxUploadBytes caps the multipart form memory for receipt uploads.
const MaxUploadBytes = 10 << 20

// AllowedExtensions holds the file extensions accepted for receipt uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether a (dotted or bare) extension is uploadable.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
