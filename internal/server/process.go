package server

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/cloudbasha/elmvoice/constants"
)

// handleProcessImage accepts a multipart receipt image under the
// `invoiceImage` field, runs OCR and structuring, and answers with the
// extracted text plus the structured invoice draft.
func (s *Server) handleProcessImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, header, err := r.FormFile("invoiceImage")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); !constants.IsAllowedExt(ext) {
		writeErrorMessage(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes))
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	result, err := s.processor.ProcessReceipt(r.Context(), image)
	if err != nil {
		s.logger.Error("process_image.failed", "file", header.Filename, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
