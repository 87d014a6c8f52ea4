package errors

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// fallbackBody is written when an error envelope cannot be encoded
const fallbackBody = `{"error":{"type":"INTERNAL_ERROR","message":"An unexpected error occurred"}}` + "\n"

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	TraceID string       `json:"trace_id,omitempty"`
}

// ErrorDetails contains the error details.
type ErrorDetails struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func newErrorResponse(appErr *AppError, traceID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Type:    appErr.Type,
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		},
		TraceID: traceID,
	}
}

// ErrorHandler renders API errors and logs them with the session and packet
// type the request was about.
type ErrorHandler struct {
	logger *logrus.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// requestFields describes r for the log. Route variables such as the session
// id and the packet type are included under their route names.
func requestFields(r *http.Request) logrus.Fields {
	fields := logrus.Fields{
		"trace_id":  r.Header.Get("X-Request-ID"),
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			fields["route"] = tmpl
		}
	}
	for name, value := range mux.Vars(r) {
		fields["route_"+name] = value
	}
	return fields
}

// levelFor maps a status to the level its error is logged at. Misses on
// sessions, records and routes are routine for dashboards polling the API.
func levelFor(status int) logrus.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logrus.ErrorLevel
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return logrus.DebugLevel
	default:
		return logrus.WarnLevel
	}
}

// HandleError writes err as a JSON error body. The request id set by the
// server middleware is echoed as trace_id.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := Classify(err)

	entry := h.logger.WithFields(requestFields(r)).WithFields(logrus.Fields{
		"error_type": appErr.Type,
		"error_code": appErr.Code,
		"status":     appErr.HTTPStatus,
	})
	if appErr.Err != nil {
		entry = entry.WithField("cause", appErr.Err.Error())
	}
	entry.Log(levelFor(appErr.HTTPStatus), appErr.Message)

	h.write(w, appErr.HTTPStatus, newErrorResponse(appErr, r.Header.Get("X-Request-ID")))
}

// HandleNotFound answers routes the router does not know.
func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.HandleError(w, r, NewNotFoundError("endpoint "+r.URL.Path).WithCode(CodeUnknownRoute))
}

// HandleMethodNotAllowed answers methods other than the read-only ones the
// API serves.
func (h *ErrorHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	h.HandleError(w, r, NewMethodNotAllowedError(r.Method))
}

// HandlePanic logs a recovered panic with its stack and answers 500.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.WithFields(requestFields(r)).WithFields(logrus.Fields{
		"panic": recovered,
		"stack": string(debug.Stack()),
	}).Error("Panic recovered in HTTP handler")

	h.write(w, http.StatusInternalServerError,
		newErrorResponse(NewInternalError("An unexpected error occurred"), r.Header.Get("X-Request-ID")))
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(resp)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallbackBody))
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
