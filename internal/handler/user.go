package handler

import (
	"errors"
	"net/http"

	"github.com/saurab2057/Filetool/internal/ctxkeys"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/internal/validation"
)

// profileFormMemory bounds the profile update form: one avatar plus a name.
const profileFormMemory = validation.AvatarMaxSize + maxJSONBody

type userHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *userHandler {
	return &userHandler{userService: userService}
}

type profileResponse struct {
	Message string          `json:"message"`
	User    *model.Identity `json:"user"`
}

func (h *userHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	user, err := h.userService.Profile(r.Context(), identity.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile accepts a multipart form with an optional name and profilePicture.
func (h *userHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, profileFormMemory)
	if err := r.ParseMultipartForm(profileFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Profile picture must be at most 5 MB.")
			return
		}
		writeMessage(w, http.StatusBadRequest, "Profile update must be sent as multipart form data.")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	user, err := h.userService.UpdateProfile(r.Context(), identity.ID, r.FormValue("name"), firstFile(r, "profilePicture"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Message: "Profile updated successfully.", User: user})
}
