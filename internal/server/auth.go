package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cloudbasha/elmvoice/internal/entity"
)

type sessionResponse struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	// Any password is accepted; the directory is a local mock.
	user, err := s.users.Login(r.Context(), body.Email)
	if err != nil {
		writeErrorMessage(w, http.StatusUnauthorized, "unknown account")
		return
	}
	s.respondSession(w, user)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Company  string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "name and email are required")
		return
	}

	user, err := s.users.Signup(r.Context(), body.Name, body.Email, body.Company)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respondSession(w, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSwitchUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := s.users.SwitchUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respondSession(w, user)
}

func (s *Server) respondSession(w http.ResponseWriter, user *entity.User) {
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		s.logger.Error("auth.token_failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var u entity.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil || u.Email == "" {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	created, err := s.users.AddUser(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var u entity.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	u.ID = id
	if err := s.users.UpdateUser(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := s.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
