package fakeapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// resource describes one CRUD collection of the dataset.
type resource[T any] struct {
	path  string
	kind  string
	items func(*Dataset) *[]T
	id    func(*T) string
	setID func(*T, string)
	// prepare validates item and fills server-owned fields. existing is nil
	// on create.
	prepare func(item, existing *T, now time.Time) error
	match   func(item *T, query url.Values) bool
	// adminWrites restricts create, update and delete to admins.
	adminWrites bool
	extra       func(s *Server, r chi.Router)
}

func mountResource[T any](router chi.Router, s *Server, res resource[T]) {
	router.Route("/"+res.path, func(sub chi.Router) {
		sub.Get("/", s.wrap(listItems(s, res)))
		sub.Get("/{id}", s.wrap(getItem(s, res)))

		sub.Group(func(writes chi.Router) {
			if res.adminWrites {
				writes.Use(s.requireRole(RoleAdmin))
			}

			writes.Post("/", s.wrap(createItem(s, res)))
			writes.Put("/{id}", s.wrap(updateItem(s, res)))
			writes.Delete("/{id}", s.wrap(deleteItem(s, res)))
		})

		if res.extra != nil {
			res.extra(s, sub)
		}
	})
}

func listItems[T any](s *Server, res resource[T]) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		query := r.URL.Query()

		page, pageSize, err := pageParams(query, s.maxPageSize)
		if err != nil {
			return err
		}

		s.mutex.RLock()
		all := *res.items(s.data)
		matched := make([]T, 0, len(all))

		for i := range all {
			if res.match == nil || res.match(&all[i], query) {
				matched = append(matched, all[i])
			}
		}
		s.mutex.RUnlock()

		list, err := bizapi.NewPagedList(matched, page, pageSize)
		if err != nil {
			return badRequest("%v", err)
		}

		writeEnvelope(w, http.StatusOK, "ok", bizapi.NewPaginatedEnvelope(list))

		return nil
	}
}

func getItem[T any](s *Server, res resource[T]) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := chi.URLParam(r, "id")

		s.mutex.RLock()
		defer s.mutex.RUnlock()

		items := *res.items(s.data)

		index := indexOf(items, res.id, id)
		if index < 0 {
			return notFound(res.kind, id)
		}

		writeEnvelope(w, http.StatusOK, "ok", items[index])

		return nil
	}
}

func createItem[T any](s *Server, res resource[T]) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var item T

		err := decodeBody(r, &item)
		if err != nil {
			return err
		}

		s.mutex.Lock()
		defer s.mutex.Unlock()

		items := res.items(s.data)

		if res.id(&item) == "" {
			res.setID(&item, uuid.New().String())
		} else if indexOf(*items, res.id, res.id(&item)) >= 0 {
			return conflict("%s %s already exists", res.kind, res.id(&item))
		}

		err = res.prepare(&item, nil, s.now().UTC())
		if err != nil {
			return err
		}

		*items = append(*items, item)

		writeEnvelope(w, http.StatusCreated, res.kind+" created", item)

		return nil
	}
}

func updateItem[T any](s *Server, res resource[T]) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := chi.URLParam(r, "id")

		var item T

		err := decodeBody(r, &item)
		if err != nil {
			return err
		}

		s.mutex.Lock()
		defer s.mutex.Unlock()

		items := *res.items(s.data)

		index := indexOf(items, res.id, id)
		if index < 0 {
			return notFound(res.kind, id)
		}

		res.setID(&item, id)

		err = res.prepare(&item, &items[index], s.now().UTC())
		if err != nil {
			return err
		}

		items[index] = item

		writeEnvelope(w, http.StatusOK, res.kind+" updated", item)

		return nil
	}
}

func deleteItem[T any](s *Server, res resource[T]) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := chi.URLParam(r, "id")

		s.mutex.Lock()
		defer s.mutex.Unlock()

		items := res.items(s.data)

		index := indexOf(*items, res.id, id)
		if index < 0 {
			return notFound(res.kind, id)
		}

		*items = append((*items)[:index], (*items)[index+1:]...)

		writeVoid(w, res.kind+" deleted")

		return nil
	}
}

func indexOf[T any](items []T, id func(*T) string, want string) int {
	for i := range items {
		if id(&items[i]) == want {
			return i
		}
	}

	return -1
}

func pageParams(query url.Values, maxPageSize int) (int, int, error) {
	page, err := positiveParam(query, "page", constants.FirstPage)
	if err != nil {
		return 0, 0, err
	}

	pageSize, err := positiveParam(query, "pageSize", constants.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}

	if pageSize > maxPageSize {
		return 0, 0, badRequest("pageSize must not exceed %d", maxPageSize)
	}

	return page, pageSize, nil
}

func positiveParam(query url.Values, name string, fallback int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, badRequest("%s must be a positive integer, got %q", name, raw)
	}

	return value, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// matchesParam reports whether query has no value for name or the value
// equals actual.
func matchesParam(query url.Values, name, actual string) bool {
	want := query.Get(name)

	return want == "" || want == actual
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return badRequest("%s is required", field)
	}

	return nil
}
