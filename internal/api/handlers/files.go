package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/chisomo-phiri/studyhub/internal/api/middleware"
	"github.com/chisomo-phiri/studyhub/internal/catalog"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
	"github.com/chisomo-phiri/studyhub/internal/utils"
)

const maxUploadSize = 100 << 20 // 100 MB

// POST /upload
// UploadFile godoc
// @Summary Upload a notes file
// @Description Uploads one PDF/PPTX classified by program, semester and subject.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param program formData string true "Program (Basics, Diploma..., Bachelors...)"
// @Param semester formData string true "Semester"
// @Param subject formData string true "Subject"
// @Param file formData file true "File to upload"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /upload [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	if h.AuthRequired && owner == nil {
		writeError(w, &catalog.AuthError{Reason: "identity required"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid file upload form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, &catalog.ValidationError{Reason: "missing file"})
		return
	}
	defer file.Close()

	rec, err := h.Indexer.Ingest(r.Context(), catalog.IngestInput{
		Program:     r.FormValue("program"),
		Semester:    r.FormValue("semester"),
		Subject:     r.FormValue("subject"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Owner:       owner,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Upload successful",
		Data: map[string]any{
			"id":  rec.ID,
			"url": rec.URL,
		},
	})
}

// GET /api/metadata
// GetMetadata godoc
// @Summary List catalogued files
// @Description Returns file records, most recently uploaded first. Supports program/owner filtering and limit/offset.
// @Tags Files
// @Produce json
// @Param program query string false "Filter by program"
// @Param owner query string false "Filter by owner id"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.FileRecord
// @Router /api/metadata [get]
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListFilter{
		Program: r.URL.Query().Get("program"),
	}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			writeError(w, &catalog.ValidationError{Reason: "invalid owner id"})
			return
		}
		filter.Owner = &id
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			writeError(w, &catalog.ValidationError{Reason: "invalid limit"})
			return
		}
		filter.Limit = n
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			writeError(w, &catalog.ValidationError{Reason: "invalid offset"})
			return
		}
		filter.Offset = n
	}

	records, err := h.Indexer.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data:    records,
	})
}

// GET /files/{id}
// StreamFile godoc
// @Summary Download a file
// @Description Streams the file's bytes, or redirects to a short-lived direct URL when the backend supports it.
// @Tags Files
// @Param id path string true "File record id"
// @Success 200
// @Failure 404 {object} utils.Payload
// @Router /files/{id} [get]
func (h *Handler) StreamFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &catalog.ValidationError{Reason: "invalid file id"})
		return
	}

	resolved, err := h.Indexer.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if resolved.RedirectURL != "" {
		http.Redirect(w, r, resolved.RedirectURL, http.StatusTemporaryRedirect)
		return
	}

	defer resolved.Body.Close()
	if ct := resolved.Record.ContentType; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("inline", map[string]string{"filename": resolved.Record.Filename}))
	if _, err := io.Copy(w, resolved.Body); err != nil {
		// Response already committed, nothing left to signal.
		return
	}
}

// DELETE /api/metadata/{id}
// DeleteFile godoc
// @Summary Remove a file record
// @Description Deletes the metadata row. The stored bytes are not removed.
// @Tags Files
// @Param id path string true "File record id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/metadata/{id} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &catalog.ValidationError{Reason: "invalid file id"})
		return
	}

	if err := h.Indexer.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File record deleted",
	})
}

// owner parses the authenticated identity, when present.
func (h *Handler) owner(r *http.Request) *uuid.UUID {
	userID := middleware.UserID(r)
	if userID == "" {
		return nil
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &id
}
