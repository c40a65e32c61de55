package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wordnest/wordnest/internal/asset"
	"github.com/wordnest/wordnest/internal/auth"
	"github.com/wordnest/wordnest/internal/handler/dto"
	"github.com/wordnest/wordnest/internal/service"
)

// ProfileHandler handles HTTP requests for the caller's own account.
type ProfileHandler struct {
	profiles  *service.ProfileService
	posts     *service.PostService
	validate  *validator.Validate
	maxUpload int64
	logger    *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, posts *service.PostService, maxUpload int64, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		posts:     posts,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Get handles GET /api/user/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	profile, err := h.profiles.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": dto.ProfileResponse{
			UserResponse: dto.ToUserResponse(profile.User),
			PostCount:    profile.PostCount,
		},
	})
}

// Update handles PUT /api/user/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FIELDS", "One or more fields are invalid")
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), identity.UserID, service.UpdateProfileInput{
		Username:        req.Username,
		Email:           req.Email,
		Bio:             req.Bio,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    dto.ToUserResponse(user),
	})
}

// UploadPicture handles POST /api/user/profile/picture. Expects a
// multipart form with a "profile_picture" file part.
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form data")
		return
	}

	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "A profile_picture file is required")
		return
	}
	defer file.Close()

	user, err := h.profiles.SetProfilePicture(r.Context(), identity.UserID, &service.Upload{
		File:     file,
		Filename: header.Filename,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile picture updated successfully",
		"user":    dto.ToUserResponse(user),
	})
}

// DeletePicture handles DELETE /api/user/profile/picture.
func (h *ProfileHandler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	user, err := h.profiles.ClearProfilePicture(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile picture deleted successfully",
		"user":    dto.ToUserResponse(user),
	})
}

// ListPosts handles GET /api/user/posts.
func (h *ProfileHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	page, limit, err := parsePagination(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	result, err := h.posts.ListByAuthor(r.Context(), identity.UserID, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(result.Posts, result.Pagination))
}

// Stats handles GET /api/user/stats.
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	stats, err := h.profiles.GetStats(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsResponse{
		TotalPosts:   stats.TotalPosts,
		LatestPostAt: stats.LatestPostAt,
	})
}

// handleServiceError maps profile service errors to HTTP responses.
func (h *ProfileHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserGone):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already taken")
	case errors.Is(err, service.ErrEmptyProfileField):
		writeError(w, http.StatusBadRequest, "EMPTY_FIELD", "Username and email cannot be empty")
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		writeError(w, http.StatusBadRequest, "EMPTY_UPDATE", "At least one field must be provided")
	case errors.Is(err, service.ErrCurrentPasswordRequired):
		writeError(w, http.StatusBadRequest, "CURRENT_PASSWORD_REQUIRED", "Current password is required to change password")
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, "WRONG_PASSWORD", "Current password is incorrect")
	case errors.Is(err, service.ErrNewPasswordTooShort):
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "New password must be at least 6 characters long")
	case errors.Is(err, service.ErrNoImageProvided):
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "A profile_picture file is required")
	case errors.Is(err, service.ErrNoProfilePicture):
		writeError(w, http.StatusBadRequest, "NO_PROFILE_PICTURE", "No profile picture to delete")
	case errors.Is(err, service.ErrInvalidPagination):
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "Page must be >= 1 and limit between 1 and 100")
	case errors.Is(err, asset.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_IMAGE_TYPE", "Image type is not supported")
	default:
		h.logger.Error("profile handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
