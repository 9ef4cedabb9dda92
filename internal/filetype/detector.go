package filetype

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// PDFMIME is the MIME type reported for PDF documents.
const PDFMIME = "application/pdf"

// ErrNotPDF is returned by RequirePDF for inputs without a PDF signature.
var ErrNotPDF = errors.New("not a PDF document")

// FileTypeInfo contains detected file type information
type FileTypeInfo struct {
	MIMEType  string
	Extension string
	IsPDF     bool
}

// Detect detects the actual file type using magic bytes, not filename
func Detect(filePath string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &FileTypeInfo{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
		IsPDF:     mtype.Is(PDFMIME),
	}
	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", filePath).Msg("detected file type")
	return info, nil
}

// RequirePDF returns an error unless filePath starts with a PDF signature.
func RequirePDF(filePath string) error {
	info, err := Detect(filePath)
	if err != nil {
		return err
	}
	if !info.IsPDF {
		return fmt.Errorf("%w (detected %s)", ErrNotPDF, info.MIMEType)
	}
	return nil
}
