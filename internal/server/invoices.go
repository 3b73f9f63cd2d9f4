package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cloudbasha/elmvoice/constants"
	"github.com/cloudbasha/elmvoice/internal/entity"
	"github.com/cloudbasha/elmvoice/internal/repository"
)

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var draft entity.InvoiceDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid invoice payload")
		return
	}
	inv, err := s.invoices.CreateInvoice(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	filter := repository.InvoiceFilter{
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}
	invoices, err := s.invoices.ListInvoices(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invoices.GetInvoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var patch entity.InvoicePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid invoice payload")
		return
	}
	if patch.Status != nil && !constants.IsValidStatus(*patch.Status) {
		writeErrorMessage(w, http.StatusBadRequest, "invalid status")
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.invoices.UpdateInvoice(r.Context(), id, patch); err != nil {
		writeError(w, err)
		return
	}
	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.invoices.DeleteInvoice(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleSendInvoice delivers the invoice to the client and flips its status
// to "sent".
func (s *Server) handleSendInvoice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Recipient string `json:"recipient"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := s.mail.SendInvoice(r.Context(), inv, body.Recipient); err != nil {
		s.logger.Error("invoice.send_failed", "id", id, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to send invoice")
		return
	}

	sent := string(constants.StatusSent)
	if err := s.invoices.UpdateInvoice(r.Context(), id, entity.InvoicePatch{Status: &sent}); err != nil {
		writeError(w, err)
		return
	}
	inv, err = s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invoices.GetInvoice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	pdf, err := s.exporter.InvoicePDF(inv)
	if err != nil {
		s.logger.Error("invoice.pdf_failed", "id", inv.ID, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.InvoiceNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleExportInvoices(w http.ResponseWriter, r *http.Request) {
	filter := repository.InvoiceFilter{
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}
	xlsx, err := s.exporter.ExportInvoicesXLSX(r.Context(), filter)
	if err != nil {
		s.logger.Error("invoice.export_failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to export invoices")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=invoices.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.invoices.Summary(r.Context()))
}
