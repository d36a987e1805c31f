package shared

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes v with the given HTTP status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResult writes a command Result, mapping failure to 422 unless the
// caller supplied a more specific status.
func WriteResult(w http.ResponseWriter, res Result) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, res)
}

// WriteError writes an error as a failed Result with the given status.
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, Fail(UserSafeMessage(err)))
}
