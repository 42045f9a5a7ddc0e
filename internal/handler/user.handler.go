package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"user-profile-service/internal/usecase"
	"user-profile-service/pkg/middleware"
	"user-profile-service/pkg/response"
	"user-profile-service/pkg/xerrors"
)

type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMe returns the profile of the authenticated subject.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok || userID == "" {
		log.Printf("[WARN] Unauthorized access attempt from %s", r.RemoteAddr)
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	log.Printf("[INFO] Fetching profile for user_id=%s", userID)

	profile, err := h.uc.GetCurrentProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("[ERROR] Failed to fetch profile user_id=%s error=%v", userID, err)
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve user profile")
		return
	}

	response.JSON(w, http.StatusOK, profile)
}

// HandleSaveUser upserts the caller's profile. The external id always
// comes from the token subject, never the request body.
func (h *UserHandler) HandleSaveUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok || userID == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := decodeProfileBody(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	body.ID = "" // server-assigned, ignored on writes
	body.UserID = userID

	saved, err := h.uc.SaveProfile(r.Context(), body)
	if err != nil {
		log.Printf("[ERROR] Failed to save profile user_id=%s error=%v", userID, err)
		response.Error(w, http.StatusInternalServerError, "Failed to save user profile")
		return
	}

	response.JSON(w, http.StatusOK, saved)
}

// HandleUpdateUser updates the profile at {userId}. Self-scoped only:
// the path id must match the token subject, no role override.
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	authenticatedUserID, ok := middleware.GetUserID(r.Context())
	if !ok || authenticatedUserID == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID := chi.URLParam(r, "userId")
	if userID != authenticatedUserID {
		log.Printf("[WARN] Forbidden update attempt: subject=%s path=%s", authenticatedUserID, userID)
		response.Forbidden(w)
		return
	}

	body, err := decodeProfileBody(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.uc.UpdateProfile(r.Context(), userID, body)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("[ERROR] Failed to update profile user_id=%s error=%v", userID, err)
		response.Error(w, http.StatusInternalServerError, "Failed to update user profile")
		return
	}

	response.JSON(w, http.StatusOK, updated)
}
