package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"compliancehub/training/internal/auth"
	"compliancehub/training/internal/config"
	"compliancehub/training/internal/directory"
	"compliancehub/training/internal/registry"
	"compliancehub/training/internal/render"
	"compliancehub/training/internal/report"
	"compliancehub/training/internal/sheet"
	"compliancehub/training/internal/store"
)

// Directory is the read-only lookup surface; nil means no directory backend
// is configured and lookups report unavailable.
type Directory interface {
	ListInternal(ctx context.Context) ([]directory.Person, error)
	SearchExternal(ctx context.Context, query string) ([]directory.Person, error)
}

type Server struct {
	cfg       config.Config
	store     *store.Store
	renderer  *render.Renderer
	directory Directory
}

func NewServer(cfg config.Config, st *store.Store, renderer *render.Renderer, dir Directory) *Server {
	return &Server{cfg: cfg, store: st, renderer: renderer, directory: dir}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(s.authMiddleware).Get("/sheets", s.handleListSheets)
	r.With(s.authMiddleware).Post("/sheet", s.handleCreateSheet)
	r.With(s.authMiddleware).Get("/sheet/{sheetId}", s.handleGetSheet)
	r.With(s.authMiddleware).Patch("/sheet/{sheetId}", s.handleUpdateSheet)
	r.With(s.authMiddleware).Post("/sheet/{sheetId}/attendees", s.handleAddAttendee)
	r.With(s.authMiddleware).Delete("/sheet/{sheetId}/attendee/{attendeeId}", s.handleRemoveAttendee)
	r.With(s.authMiddleware).Post("/sheet/{sheetId}/generate", s.handleGenerate)
	r.With(s.authMiddleware).Get("/sheet/{sheetId}/render/{target}", s.handleRender)
	r.With(s.authMiddleware).Post("/sheet/{sheetId}/document", s.handleUploadDocument)
	r.With(s.authMiddleware).Get("/document/{documentId}", s.handleGetDocument)
	r.With(s.authMiddleware).Post("/document/{documentId}/verify", s.handleVerifyDocument)
	r.With(s.authMiddleware).Delete("/document/{documentId}", s.handleDeleteDocument)
	r.With(s.authMiddleware).Post("/sheets/archive", s.handleArchive)
	r.With(s.authMiddleware).Post("/sheets/delete", s.handleDelete)
	r.With(s.authMiddleware).Get("/sheets/report", s.handleReport)
	r.With(s.authMiddleware).Get("/workflow/{workflowId}/notifications", s.handleNotifications)
	r.With(s.authMiddleware).Post("/notification/{notificationId}/acknowledge", s.handleAcknowledge)
	r.With(s.authMiddleware).Get("/notifications", s.handleInbox)
	r.With(s.authMiddleware).Post("/notifications/clear", s.handleClearInbox)
	r.With(s.authMiddleware).Get("/directory/employees", s.handleDirectoryEmployees)
	r.With(s.authMiddleware).Get("/directory/external", s.handleDirectoryExternal)

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// Sheets

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)
	writeJSON(w, http.StatusOK, report.Filter(s.store.Sheets(), q))
}

func (s *Server) handleCreateSheet(w http.ResponseWriter, r *http.Request) {
	var input store.SheetInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	created, err := s.store.CreateSheet(r.Context(), input)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.Entry(chi.URLParam(r, "sheetId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateSheet(w http.ResponseWriter, r *http.Request) {
	var input store.SheetInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	updated, err := s.store.UpdateSheet(r.Context(), chi.URLParam(r, "sheetId"), input)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type addAttendeeRequest struct {
	Origin         string `json:"origin"`
	RawID          string `json:"rawId"`
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
	Company        string `json:"company"`
	Department     string `json:"department"`
}

func (s *Server) handleAddAttendee(w http.ResponseWriter, r *http.Request) {
	var req addAttendeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	id, err := sheet.ParseAttendeeID(req.Origin + ":" + req.RawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_attendee_id")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	updated, err := s.store.AddAttendee(r.Context(), chi.URLParam(r, "sheetId"), sheet.Attendee{
		ID:             id,
		Name:           req.Name,
		OrganizationID: req.OrganizationID,
		Company:        req.Company,
		Department:     req.Department,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemoveAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := sheet.ParseAttendeeID(chi.URLParam(r, "attendeeId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_attendee_id")
		return
	}
	updated, err := s.store.RemoveAttendee(r.Context(), chi.URLParam(r, "sheetId"), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	entry, _, err := s.store.Generate(r.Context(), chi.URLParam(r, "sheetId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Rendering

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	target, err := render.ParseTarget(chi.URLParam(r, "target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_target")
		return
	}
	entry, err := s.store.Entry(chi.URLParam(r, "sheetId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	artifact, err := s.renderer.Render(entry.Sheet, target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed")
		return
	}
	writeArtifact(w, artifact)
}

// Documents

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	defer file.Close()

	// The read is the only suspension point; a failure here reports an
	// I/O error and leaves the workflow untouched.
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "io_error")
		return
	}

	fd := registry.FileDescriptor{
		Name:      header.Filename,
		Size:      header.Size,
		MediaType: header.Header.Get("Content-Type"),
	}
	uploadedBy := ""
	if claims != nil {
		uploadedBy = claims.UserID
	}
	doc, _, err := s.store.UploadDocument(r.Context(), chi.URLParam(r, "sheetId"), fd, content, uploadedBy)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Document(chi.URLParam(r, "documentId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	mediaType := doc.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+doc.Name+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

func (s *Server) handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.VerifyDocument(r.Context(), chi.URLParam(r, "documentId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDocument(r.Context(), chi.URLParam(r, "documentId")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Bulk operations

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	archived, err := s.store.Archive(r.Context(), req.IDs)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"archived": archived})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	deleted, err := s.store.Delete(r.Context(), req.IDs)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// handleReport applies the caller's filter before reporting, so the report
// always covers exactly the selected set.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_kind")
		return
	}
	filtered := report.Filter(s.store.Sheets(), queryFromRequest(r))
	artifact, err := report.Generate(filtered, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "report_failed")
		return
	}
	writeArtifact(w, artifact)
}

// Notifications

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.store.Notifications(chi.URLParam(r, "workflowId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	notification, err := s.store.Acknowledge(r.Context(), chi.URLParam(r, "notificationId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

func (s *Server) handleInbox(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Inbox())
}

func (s *Server) handleClearInbox(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearInbox()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Directory

func (s *Server) handleDirectoryEmployees(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeError(w, http.StatusServiceUnavailable, "directory_unavailable")
		return
	}
	people, err := s.directory.ListInternal(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleDirectoryExternal(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeError(w, http.StatusServiceUnavailable, "directory_unavailable")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing_query")
		return
	}
	people, err := s.directory.SearchExternal(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, people)
}

// Utilities

func queryFromRequest(r *http.Request) report.Query {
	return report.Query{
		Text:       r.URL.Query().Get("text"),
		Status:     r.URL.Query().Get("status"),
		Instructor: r.URL.Query().Get("instructor"),
	}
}

func writeArtifact(w http.ResponseWriter, artifact render.Artifact) {
	w.Header().Set("Content-Type", artifact.MediaType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+artifact.Name+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func writeStoreError(w http.ResponseWriter, err error) {
	var validationErr *sheet.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "missing_fields",
			"missing": validationErr.Missing,
		})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, store.ErrSheetFrozen):
		writeError(w, http.StatusConflict, "sheet_frozen")
	case errors.Is(err, store.ErrNotGenerated):
		writeError(w, http.StatusConflict, "sheet_not_generated")
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
