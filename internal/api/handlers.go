package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/lexiqai/meeting-analyzer/internal/audio"
	"github.com/lexiqai/meeting-analyzer/internal/meeting"
	"github.com/lexiqai/meeting-analyzer/internal/observability"
)

const (
	defaultMaxUploadBytes = 100 << 20
	// room for the metadata field and multipart framing on top of the audio
	formOverheadBytes = 1 << 20
	multipartMemory   = 32 << 20
	maxEmailBodyBytes = 10 << 20

	fieldMetadata = "metadata_json"
	fieldAudio    = "rc_file"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.Logger(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, err := s.readAudio(r)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := s.analyzer.Analyze(ctx, r.FormValue(fieldMetadata), upload)
	if err != nil {
		logger.Warn().Err(err).Msg("Analysis request rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// readAudio buffers the optional rc_file part. A missing part yields a nil
// upload so the pipeline can report ErrNoAudioSource after validating metadata.
func (s *Server) readAudio(r *http.Request) (*audio.Upload, error) {
	file, header, err := r.FormFile(fieldAudio)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", meeting.ErrMalformedInput, fieldAudio, err)
	}
	defer file.Close()

	return audio.ReadUpload(file, header.Filename, partType(header), s.opts.MaxUploadBytes)
}

func partType(header *multipart.FileHeader) string {
	if header == nil {
		return ""
	}
	return header.Header.Get("Content-Type")
}

type sendEmailRequest struct {
	AnalysisResult *meeting.Report `json:"analysis_result"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendEmailRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEmailBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", meeting.ErrMalformedInput, err))
		return
	}
	if req.AnalysisResult == nil {
		writeError(w, fmt.Errorf("%w: analysis_result is required", meeting.ErrSchemaViolation))
		return
	}

	ack, err := s.notifier.Dispatch(ctx, *req.AnalysisResult)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, messageResponse{Message: ack.Message})
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request exceeds %d bytes", audio.ErrUploadTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: expected a multipart form: %v", meeting.ErrMalformedInput, err)
}
