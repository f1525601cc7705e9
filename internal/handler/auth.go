package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dan9191/finance-tracker/internal/service"
	"github.com/google/uuid"
)

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	session, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "user registered successfully", session)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "login successful", session)
}

// Profile returns the authenticated user
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Profile(r.Context(), currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", map[string]any{"user": user})
}

// UpdateProfile applies the fields present in the body
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.writeError(w, r, &service.ValidationError{Fields: []string{"request body must be a JSON object"}})
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), currentUser(r), raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "profile updated successfully", map[string]any{"user": user})
}

var pictureTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

var pictureExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// UploadProfilePicture stores a jpeg, png or gif under the upload dir
func (h *Handler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, http.StatusBadRequest, fmt.Sprintf("file must be at most %d MB", h.maxUpload>>20))
			return
		}
		h.fail(w, http.StatusBadRequest, "invalid upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		h.fail(w, http.StatusBadRequest, "no file was uploaded")
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		h.fail(w, http.StatusBadRequest, fmt.Sprintf("file must be at most %d MB", h.maxUpload>>20))
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		h.fail(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	defaultExt, allowed := pictureTypes[http.DetectContentType(sniff[:n])]
	if !allowed {
		h.fail(w, http.StatusBadRequest, "only JPEG, PNG and GIF images are allowed")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !pictureExts[ext] {
		ext = defaultExt
	}
	name := "profile_picture-" + uuid.NewString() + ext

	dir := filepath.Join(h.uploadDir, "profile")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.writeError(w, r, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}
	path := filepath.Join(dir, name)
	if err := saveUpload(path, sniff[:n], file); err != nil {
		h.writeError(w, r, err)
		return
	}

	url := "/uploads/profile/" + name
	if err := h.svc.SetProfilePicture(r.Context(), currentUser(r), url); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			h.log.WithError(rmErr).Warnf("Failed to remove orphaned upload %s", path)
		}
		h.writeError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "profile picture updated successfully", map[string]string{"profilePictureUrl": url})
}

func saveUpload(path string, head []byte, rest io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(head); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if _, err := io.Copy(out, rest); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return out.Close()
}
