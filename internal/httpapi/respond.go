package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Generic client-facing messages. Authentication failures and token
// problems share deliberately vague wording so responses do not reveal
// which part of a credential or token was wrong.
const (
	msgLoginFailed  = "incorrect email or password"
	msgInvalidToken = "invalid or expired token"
	msgRateLimited  = "too many registration attempts, try again later"
	msgInternal     = "something went wrong"
)

type msgResponse struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

func writeMsg(w http.ResponseWriter, log zerolog.Logger, status int, msg string) {
	writeJSON(w, log, status, msgResponse{Msg: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
