package main

import (
	"encoding/json"
	"net/http"
)

// Session is the per request view of the caller: who they are and which
// language their messages are written in.
type Session struct {
	ln *Language
	id *Identity
}

type Response map[string]interface{}

func NewSession(ln *Language, id *Identity) *Session {
	return &Session{ln: ln, id: id}
}

func (s *Session) Lang(text string) string {
	return s.ln.Lang(text)
}

func (s *Session) Message(text string) Response {
	return Response{"message": s.Lang(text)}
}

func (s *Session) render(w http.ResponseWriter, code int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
