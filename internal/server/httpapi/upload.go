package httpapi

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/medialift/medialift/internal/common"
	"github.com/medialift/medialift/internal/server/models"
	"github.com/medialift/medialift/internal/server/storage"
)

type presignRequest struct {
	Filename string `json:"filename"`
	Filetype string `json:"filetype"`
	MD5      string `json:"md5"`
	Filesize int64  `json:"filesize"`
}

type presignResponse struct {
	SignedURL string `json:"signed_url"`
	Filename  string `json:"filename"`
	MD5       string `json:"md5"`
	ContentID int64  `json:"id"`
}

type indexRequest struct {
	Config struct {
		Filename      string `json:"filename"`
		IndexFilename string `json:"indexfilename"`
	} `json:"config"`
	ProcessType string `json:"processtype"`
	MD5         string `json:"md5"`
	IDRelated   *int64 `json:"id_related"`
}

// contentTypeFromMIME maps a MIME type to the coarse content category used
// throughout the content and jobs tables.
func contentTypeFromMIME(mime string) string {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return "video"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	default:
		return "image"
	}
}

// GeneratePresignedPost checks the user's storage quota, records a
// processing content row and returns a signed PUT target. The digest and
// MIME type are bound into the signature.
func (h *Handler) GeneratePresignedPost(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Filename == "" || req.Filetype == "" || req.MD5 == "" || req.Filesize <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid upload request")
		return
	}

	rawDigest, err := hex.DecodeString(req.MD5)
	if err != nil || len(rawDigest) != 16 {
		writeError(w, http.StatusBadRequest, "Invalid md5 digest")
		return
	}
	contentMD5 := base64.StdEncoding.EncodeToString(rawDigest)

	user, err := h.repos.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	limit, ok := h.config.TierStorageLimits[user.Tier]
	if ok && user.StorageUsed+req.Filesize > limit {
		writeError(w, http.StatusInsufficientStorage, "Storage limit exceeded")
		return
	}

	unique := storage.UniqueFilename(req.Filename)
	key := storage.ObjectKey(userID, unique)

	signedURL, err := h.presigner.PresignPut(r.Context(), key, req.Filetype, contentMD5)
	if err != nil {
		h.log.Error(r.Context(), "presign failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not sign upload target")
		return
	}

	content, err := h.repos.Contents().Create(r.Context(), &models.Content{
		UserID:      userID,
		Title:       req.Filename,
		Link:        key,
		MD5:         req.MD5,
		Status:      models.ContentStatusProcessing,
		ContentType: contentTypeFromMIME(req.Filetype),
		Size:        req.Filesize,
	})
	if err != nil {
		h.log.Error(r.Context(), "content create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusCreated, "Presigned URL generated", presignResponse{
		SignedURL: signedURL,
		Filename:  unique,
		MD5:       contentMD5,
		ContentID: content.ID,
	})
}

// IndexFile marks an uploaded object as a completed content record and
// charges the bytes against the user's storage. The row is matched by
// id_related when given, otherwise by digest.
func (h *Handler) IndexFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MD5 == "" || req.ProcessType == "" {
		writeError(w, http.StatusBadRequest, "Invalid index request")
		return
	}

	var content *models.Content
	var err error
	if req.IDRelated != nil {
		content, err = h.repos.Contents().GetByID(r.Context(), userID, *req.IDRelated)
	} else {
		content, err = h.repos.Contents().GetByMD5(r.Context(), userID, req.MD5)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "No pending upload for this file")
			return
		}
		h.log.Error(r.Context(), "content lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if content.ContentType != req.ProcessType {
		writeError(w, http.StatusBadRequest, "Process type does not match uploaded file")
		return
	}

	if err := h.repos.Contents().MarkIndexed(r.Context(), userID, content.ID, req.ProcessType, content.Size); err != nil {
		h.log.Error(r.Context(), "mark indexed failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if err := h.repos.Users().AddStorageUsed(r.Context(), userID, content.Size); err != nil {
		h.log.Error(r.Context(), "storage accounting failed", "error", err)
	}

	writeJSON(w, http.StatusCreated, "File indexed", map[string]int64{"id": content.ID})
}
