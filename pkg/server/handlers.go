package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/otherjamesbrown/moodsense/pkg/buildinfo"
	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

// uploadField is the multipart field carrying the export.
const uploadField = "file"

var allowedUploadTypes = map[string]bool{
	"text/plain":               true,
	"application/octet-stream": true,
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the MoodSense chat analysis API",
		"version": buildinfo.Get(buildinfo.ServiceName).Version,
	})
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) publicKey(w http.ResponseWriter, r *http.Request) {
	d, err := h.decrypter.get()
	if err != nil {
		h.log(r).Warn("Public key requested without a server key", logging.Err(err))
		respondErr(w, err, "Encryption not configured: "+envelope.EnvPrivateKey+" missing")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"public_key": d.PublicKeyB64()})
}

func (h *handlers) analyzeUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			respondErr(w, fmt.Errorf("%w: limit %d bytes", apperrors.ErrTooLarge, h.cfg.MaxUploadBytes), "")
			return
		}
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidInput, "Expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidInput, "Missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".txt") {
		respondError(w, http.StatusBadRequest, apperrors.CodeUnsupportedMedia, "Only .txt files are accepted")
		return
	}
	mediaType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if !allowedUploadTypes[mediaType] {
		respondError(w, http.StatusBadRequest, apperrors.CodeUnsupportedMedia, "Invalid content type")
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidInput, "Could not read upload")
		return
	}
	text, err := textnorm.Decode(raw)
	if err != nil {
		respondErr(w, err, "File is not valid UTF-8 text")
		return
	}

	h.log(r).Debug("Received upload", logging.F("filename", header.Filename), logging.F("bytes", len(raw)))
	h.analyze(w, r, text)
}

func (h *handlers) analyzeEncrypted(w http.ResponseWriter, r *http.Request) {
	d, err := h.decrypter.get()
	if err != nil {
		respondErr(w, err, "Encryption not configured: "+envelope.EnvPrivateKey+" missing")
		return
	}

	var payload envelope.Payload
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if isTooLarge(err) {
			respondErr(w, fmt.Errorf("%w: limit %d bytes", apperrors.ErrTooLarge, h.cfg.MaxUploadBytes), "")
			return
		}
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid JSON body")
		return
	}
	if payload.ClientPublicKey == "" || payload.Nonce == "" || payload.Ciphertext == "" {
		respondError(w, http.StatusBadRequest, apperrors.CodeInvalidInput,
			"client_public_key, nonce and ciphertext are required")
		return
	}

	plaintext, err := d.Decrypt(payload)
	if err != nil {
		h.log(r).Warn("Rejected encrypted payload", logging.Err(err))
		respondErr(w, err, "Invalid encrypted payload")
		return
	}
	text, err := textnorm.Decode(plaintext)
	if err != nil {
		respondErr(w, err, "Decrypted payload is not valid UTF-8")
		return
	}
	h.analyze(w, r, text)
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request, text string) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	report, err := h.analyzer.Analyze(ctx, text)
	if err != nil {
		respondErr(w, err, fmt.Sprintf("Error processing chat: %s", apperrors.ClassifyError(err, "").Message))
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *handlers) log(r *http.Request) logging.Logger {
	return h.logger.WithContext(r.Context())
}

// isTooLarge reports whether err came from the MaxBytesReader limit. The
// multipart reader does not always keep the typed error in the chain.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
