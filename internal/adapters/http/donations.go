package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/core/ports"
	"github.com/huson-app/huson/internal/core/usecase"
	"github.com/huson-app/huson/internal/infrastructure/export/xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) classifyDonation(w http.ResponseWriter, r *http.Request) {
	if !rt.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	image, closeImage, err := formImage(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if image == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'image' is required"})
		return
	}
	defer closeImage()

	start := time.Now()
	outcome, err := rt.services.Classifier.Classify(r.Context(), donationForm(r), *image)
	if err != nil {
		rt.recordClassification("failed", time.Since(start))
		slog.Warn("donation_classify_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}
	rt.recordClassification("ok", time.Since(start))
	writeJSON(w, http.StatusOK, outcome)
}

func (rt *Router) submitDonation(w http.ResponseWriter, r *http.Request) {
	if !rt.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	sess := sessionFromContext(r.Context())

	var classification *domain.ClassificationResult
	if raw := strings.TrimSpace(r.FormValue("classification_result")); raw != "" {
		var parsed domain.ClassificationResult
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			rt.recordSubmission("rejected", "validation")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "classification_result must be a json object"})
			return
		}
		classification = &parsed
	}

	image, closeImage, err := formImage(r)
	if err != nil {
		rt.recordSubmission("rejected", "validation")
		writeError(w, err)
		return
	}
	if closeImage != nil {
		defer closeImage()
	}

	result, err := rt.services.Submitter.Submit(r.Context(), sess.UserID, donationForm(r), image, classification)
	if err != nil {
		rt.writeSubmissionError(w, r, err)
		return
	}

	rt.recordSubmission("done", "")
	writeJSON(w, http.StatusCreated, result)
}

// writeSubmissionError reports the stage a submission stopped in so the
// client can keep the form and offer a retry.
func (rt *Router) writeSubmissionError(w http.ResponseWriter, r *http.Request, err error) {
	var subErr *usecase.SubmissionError
	if !errors.As(err, &subErr) {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			rt.recordSubmission("rejected", "validation")
		} else {
			rt.recordSubmission("failed", "")
		}
		writeError(w, err)
		return
	}

	status := mapErrorToHTTPStatus(err)
	if status == http.StatusInternalServerError && subErr.State == domain.SubmissionUploading {
		status = http.StatusBadGateway
	}
	rt.recordSubmission("failed", string(subErr.State))
	slog.Error("donation_submit_failed",
		"request_id", requestIDFromContext(r.Context()),
		"state", subErr.State,
		"error", err.Error(),
	)
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"state": subErr.State,
		"trace": subErr.Trace,
	})
}

func (rt *Router) listDonations(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	history, err := rt.services.History.History(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (rt *Router) exportDonations(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	history, err := rt.services.History.History(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.WriteHistory(&buf, history); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="donations.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	if err := r.ParseMultipartForm(rt.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload is too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return false
	}
	return true
}

func donationForm(r *http.Request) domain.DonationForm {
	return domain.DonationForm{
		ItemType:       r.FormValue("item_type"),
		ItemName:       r.FormValue("item_name"),
		Quantity:       r.FormValue("quantity"),
		Unit:           r.FormValue("unit"),
		Description:    r.FormValue("description"),
		PickupLocation: r.FormValue("pickup_location"),
		ExpiryDate:     r.FormValue("expiry_date"),
	}
}

// formImage returns a nil upload when the optional image field is absent.
func formImage(r *http.Request) (*ports.ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "read image", err)
	}
	return &ports.ImageUpload{
		Filename:    header.Filename,
		ContentType: partContentType(header),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func partContentType(header *multipart.FileHeader) string {
	return strings.TrimSpace(header.Header.Get("Content-Type"))
}

func (rt *Router) recordSubmission(outcome, stage string) {
	if rt.metrics != nil {
		rt.metrics.RecordSubmission(serviceName, outcome, stage)
	}
}

func (rt *Router) recordClassification(outcome string, duration time.Duration) {
	if rt.metrics != nil {
		rt.metrics.RecordClassification(serviceName, outcome, duration)
	}
}
