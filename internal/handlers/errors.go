package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"smartspeak/internal/logger"
	"smartspeak/internal/validation"
)

// respondJSON writes v as the JSON body with the given status
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondSuccess merges fields into a {"success": true} body
func respondSuccess(w http.ResponseWriter, fields map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	respondJSON(w, http.StatusOK, body)
}

// respondFailure answers {"success": false, "message": userMsg}. Business
// failures keep status 200 so the browser client can show the message.
func respondFailure(w http.ResponseWriter, userMsg string) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": false,
		"message": userMsg,
	})
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Error(logMsg, "status", status, "error", err)
	}

	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": userMsg,
	})
}

// validationMessage returns the user-facing text of a validation failure
func validationMessage(err error) (string, bool) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
