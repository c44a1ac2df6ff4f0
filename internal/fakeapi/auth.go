package fakeapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

type principalKey struct{}

type principal struct {
	user  bizapi.User
	token string
}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(principalKey{}).(principal)

	return p
}

var anonymousAdmin = bizapi.User{ID: "usr-system", Username: "system", Role: RoleAdmin, Active: true}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.requireAuth {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, principal{user: anonymousAdmin})))

			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeFailure(w, http.StatusUnauthorized, "missing bearer token")

			return
		}

		user, ok := s.resolveToken(token)
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "invalid or expired token")

			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal{user: user, token: token})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveToken(token string) (bizapi.User, bool) {
	if s.staticToken != "" && token == s.staticToken {
		return anonymousAdmin, true
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.sessions[token]
	if !ok {
		return bizapi.User{}, false
	}

	if !s.now().Before(current.expiresAt) {
		delete(s.sessions, token)

		return bizapi.User{}, false
	}

	index := indexOf(s.data.Users, userResource.id, current.userID)
	if index < 0 {
		return bizapi.User{}, false
	}

	return s.data.Users[index], true
}

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principalFrom(r.Context()).user.Role != role {
				writeFailure(w, http.StatusForbidden, "requires the "+role+" role")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) error {
	var request bizapi.LoginRequest

	err := decodeBody(r, &request)
	if err != nil {
		return err
	}

	err = required("username", request.Username)
	if err != nil {
		return err
	}

	err = required("password", request.Password)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	var userID string

	for _, account := range s.data.Accounts {
		if account.Username == request.Username && account.Password == request.Password {
			userID = account.UserID

			break
		}
	}

	if userID == "" {
		return &businessError{code: http.StatusUnauthorized, message: "invalid username or password"}
	}

	index := indexOf(s.data.Users, userResource.id, userID)
	if index < 0 || !s.data.Users[index].Active {
		return &businessError{code: http.StatusForbidden, message: "account is disabled"}
	}

	issued := bizapi.Session{
		Token:     uuid.New().String(),
		ExpiresAt: s.now().Add(SessionLifetime).UTC(),
		User:      s.data.Users[index],
	}

	s.sessions[issued.Token] = session{userID: userID, expiresAt: issued.ExpiresAt}

	writeEnvelope(w, http.StatusOK, "signed in", issued)

	return nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) error {
	token := principalFrom(r.Context()).token

	s.mutex.Lock()
	delete(s.sessions, token)
	s.mutex.Unlock()

	writeVoid(w, "signed out")

	return nil
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) error {
	writeEnvelope(w, http.StatusOK, "ok", principalFrom(r.Context()).user)

	return nil
}
