package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wordnest/wordnest/internal/asset"
	"github.com/wordnest/wordnest/internal/auth"
	"github.com/wordnest/wordnest/internal/handler/dto"
	"github.com/wordnest/wordnest/internal/service"
)

// multipartMemory is the in-memory buffer for parsing multipart forms;
// larger parts spill to temp files.
const multipartMemory = 1 << 20

// PostHandler handles HTTP requests for post operations. Field
// validation happens in the service layer so JSON and multipart
// requests share one code path.
type PostHandler struct {
	svc       *service.PostService
	maxUpload int64
	logger    *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, maxUpload int64, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:       svc,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// List handles GET /api/posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	result, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(result.Posts, result.Pagination))
}

// Get handles GET /api/posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}

	post, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": dto.ToPostResponse(post)})
}

// Create handles POST /api/posts. Accepts JSON or multipart form data
// with an optional "image" file part.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var input service.CreatePostInput
	if isMultipart(r) {
		form, upload, ok := h.parseMultipart(w, r)
		if !ok {
			return
		}
		if upload != nil {
			defer upload.file.Close()
			input.Image = &service.Upload{File: upload.file, Filename: upload.name}
		}
		input.Title = form.Get("title")
		input.Content = form.Get("content")
	} else {
		var req dto.CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
		input.Title = req.Title
		input.Content = req.Content
	}

	post, err := h.svc.Create(r.Context(), identity.UserID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("post_created_http", "post_id", post.ID, "author_id", identity.UserID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created successfully",
		"post":    dto.ToPostResponse(post),
	})
}

// Update handles PUT /api/posts/{id}. Accepts JSON or multipart form
// data; omitted fields keep their stored values.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}

	var input service.UpdatePostInput
	if isMultipart(r) {
		form, upload, ok := h.parseMultipart(w, r)
		if !ok {
			return
		}
		if upload != nil {
			defer upload.file.Close()
			input.Image = &service.Upload{File: upload.file, Filename: upload.name}
		}
		if values, present := form["title"]; present && len(values) > 0 {
			input.Title = &values[0]
		}
		if values, present := form["content"]; present && len(values) > 0 {
			input.Content = &values[0]
		}
	} else {
		var req dto.UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
		input.Title = req.Title
		input.Content = req.Content
	}

	post, err := h.svc.Update(r.Context(), identity.UserID, id, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post updated successfully",
		"post":    dto.ToPostResponse(post),
	})
}

// Delete handles DELETE /api/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), identity.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Post deleted successfully"})
}

type uploadPart struct {
	file multipart.File
	name string
}

// parseMultipart parses the form with the upload size cap applied.
// Returns the form values and the "image" part if one was sent.
func (h *PostHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (url.Values, *uploadPart, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file is too large")
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form data")
		return nil, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return url.Values(r.MultipartForm.Value), nil, true
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid image file")
		return nil, nil, false
	}

	return url.Values(r.MultipartForm.Value), &uploadPart{file: file, name: header.Filename}, true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parsePostID extracts and validates the {id} route parameter.
func parsePostID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_POST_ID", "Post ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// parsePagination reads the page and limit query parameters, applying
// defaults for absent values. Malformed values surface as invalid
// pagination rather than being silently clamped.
func parsePagination(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, service.ErrInvalidPagination
		}
		page = parsed
	}

	limit := service.DefaultPageSize
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, service.ErrInvalidPagination
		}
		limit = parsed
	}

	return page, limit, nil
}

// handleServiceError maps post service errors to HTTP responses.
func (h *PostHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
	case errors.Is(err, service.ErrNotPostAuthor):
		writeError(w, http.StatusForbidden, "NOT_POST_AUTHOR", "You can only modify your own posts")
	case errors.Is(err, service.ErrMissingPostField):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Title and content are required")
	case errors.Is(err, service.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title must be at most 255 characters")
	case errors.Is(err, service.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, "EMPTY_UPDATE", "At least one field must be provided")
	case errors.Is(err, service.ErrInvalidPagination):
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "Page must be >= 1 and limit between 1 and 100")
	case errors.Is(err, asset.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE", "Image type is not supported")
	default:
		h.logger.Error("post handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
