package export

import (
	"log"
	"mime"
)

func init() {
	ensureMimeType(".csv", "text/csv; charset=utf-8")
	ensureMimeType(".xlsx", ContentTypeXLSX)
	ensureMimeType(".pdf", "application/pdf")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("export: failed to register MIME type for %s: %v", ext, err)
	}
}

// ContentType returns the media type served for a file extension such as ".csv".
func ContentType(ext string) string {
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ
	}
	return "application/octet-stream"
}
