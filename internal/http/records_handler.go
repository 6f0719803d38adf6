package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fitosanitario/internal/domain"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/service"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

const (
	apiPrefix = "/api/v1/"
	maxBody   = 1 << 20
)

// Created body of a successful POST
type Created struct {
	ID int64 `json:"id"`
}

// statusChange body of PUT .../{id}/status
type statusChange struct {
	Status string `json:"estado"`
}

// RecordsHandler JSON CRUD over the entity services, one resource per
// path under /api/v1
type RecordsHandler struct {
	routes map[string]http.Handler
}

type binder interface {
	bind(name string, logger *zap.Logger)
}

// action sub-resource of one record, e.g. PUT /inspections/{id}/status
type action func(ctx context.Context, id int64, r *http.Request) (any, error)

// resource a missing operation answers 405
type resource[T any] struct {
	list    func(r *http.Request) ([]T, error)
	get     func(ctx context.Context, id int64) (*T, error)
	create  func(ctx context.Context, v *T) (int64, error)
	update  func(ctx context.Context, id int64, v *T) error
	remove  func(ctx context.Context, id int64) error
	actions map[string]action
	name    string
	logger  *zap.Logger
}

func NewRecordsHandler(s service.Set, logger *zap.Logger) *RecordsHandler {
	routes := map[string]http.Handler{
		"departments": &resource[domain.Department]{
			list:   listAll(s.Territory.ListDepartments),
			get:    s.Territory.GetDepartment,
			create: s.Territory.CreateDepartment,
			update: func(ctx context.Context, id int64, d *domain.Department) error {
				d.ID = id
				return s.Territory.UpdateDepartment(ctx, d)
			},
			remove: s.Territory.DeleteDepartment,
		},
		"municipalities": &resource[domain.Municipality]{
			list:   listByParent("departamento", nil, s.Territory.ListMunicipalities),
			get:    s.Territory.GetMunicipality,
			create: s.Territory.CreateMunicipality,
			update: func(ctx context.Context, id int64, m *domain.Municipality) error {
				m.ID = id
				return s.Territory.UpdateMunicipality(ctx, m)
			},
			remove: s.Territory.DeleteMunicipality,
		},
		"villages": &resource[domain.Village]{
			list:   listByParent("municipio", nil, s.Territory.ListVillages),
			get:    s.Territory.GetVillage,
			create: s.Territory.CreateVillage,
			update: func(ctx context.Context, id int64, v *domain.Village) error {
				v.ID = id
				return s.Territory.UpdateVillage(ctx, v)
			},
			remove: s.Territory.DeleteVillage,
		},
		"estates": &resource[domain.Estate]{
			list: func(r *http.Request) ([]domain.Estate, error) {
				if r.URL.Query().Has("vereda") {
					return listByParent("vereda", nil, s.Sites.ListEstatesByVillage)(r)
				}
				return listByParent("propietario", s.Sites.ListEstates, s.Sites.ListEstatesByOwner)(r)
			},
			get:    s.Sites.GetEstate,
			create: s.Sites.CreateEstate,
			update: func(ctx context.Context, id int64, e *domain.Estate) error {
				e.ID = id
				return s.Sites.UpdateEstate(ctx, e)
			},
			remove: s.Sites.DeleteEstate,
		},
		"sites": &resource[domain.ProductionSite]{
			list: func(r *http.Request) ([]domain.ProductionSite, error) {
				q := r.URL.Query()
				switch {
				case q.Has("productor"):
					return listByParent("productor", nil, s.Sites.ListSitesByProducer)(r)
				case q.Has("asistente"):
					return listByParent("asistente", nil, s.Sites.ListSitesByAssistant)(r)
				}
				return listByParent("predio", s.Sites.ListSites, s.Sites.ListSitesByEstate)(r)
			},
			get:    s.Sites.GetSite,
			create: s.Sites.CreateSite,
			update: func(ctx context.Context, id int64, p *domain.ProductionSite) error {
				p.ID = id
				return s.Sites.UpdateSite(ctx, p)
			},
			remove: s.Sites.DeleteSite,
		},
		"plots": &resource[domain.Plot]{
			list:   listByParent("lugar", s.Plots.List, s.Plots.ListBySite),
			get:    s.Plots.Get,
			create: s.Plots.Create,
			update: func(ctx context.Context, id int64, p *domain.Plot) error {
				p.ID = id
				return s.Plots.Update(ctx, p)
			},
			remove: s.Plots.Delete,
		},
		"crops": &resource[domain.Crop]{
			list:   listByParent("lote", s.Crops.List, s.Crops.ListByPlot),
			get:    s.Crops.Get,
			create: s.Crops.Create,
			update: func(ctx context.Context, id int64, c *domain.Crop) error {
				c.ID = id
				return s.Crops.Update(ctx, c)
			},
			remove:  s.Crops.Delete,
			actions: map[string]action{"status": changeStatus(s.Crops.ChangeStatus)},
		},
		"pests": &resource[domain.Pest]{
			list:   listAll(s.Pests.List),
			get:    s.Pests.Get,
			create: s.Pests.Create,
			update: func(ctx context.Context, id int64, p *domain.Pest) error {
				p.ID = id
				return s.Pests.Update(ctx, p)
			},
			remove: s.Pests.Delete,
		},
		"inspections": &resource[domain.Inspection]{
			list: func(r *http.Request) ([]domain.Inspection, error) {
				q := r.URL.Query()
				switch {
				case q.Has("estado"):
					return s.Inspections.ListByStatus(r.Context(), q.Get("estado"))
				case q.Has("asistente"):
					return listByParent("asistente", nil, s.Inspections.ListByAssistant)(r)
				}
				return listByParent("lote", s.Inspections.List, s.Inspections.ListByPlot)(r)
			},
			get:    s.Inspections.Get,
			create: s.Inspections.Create,
			update: func(ctx context.Context, id int64, i *domain.Inspection) error {
				i.ID = id
				return s.Inspections.Update(ctx, i)
			},
			remove:  s.Inspections.Delete,
			actions: map[string]action{"status": changeStatus(s.Inspections.ChangeStatus)},
		},
		"results": &resource[domain.TechnicalResult]{
			list:   listByParent("inspeccion", s.Results.List, s.Results.ListByInspection),
			get:    s.Results.Get,
			create: s.Results.Record,
			update: func(ctx context.Context, id int64, res *domain.TechnicalResult) error {
				res.ID = id
				return s.Results.Update(ctx, res)
			},
			remove: s.Results.Delete,
		},
		"users": &resource[domain.User]{
			list: func(r *http.Request) ([]domain.User, error) {
				q := r.URL.Query()
				switch {
				case q.Has("email"):
					u, err := s.Users.GetByEmail(r.Context(), q.Get("email"))
					return one(u, err)
				case q.Has("identificacion"):
					u, err := s.Users.GetByIdentification(r.Context(), q.Get("identificacion"))
					return one(u, err)
				case q.Has("rol"):
					return s.Users.ListByRole(r.Context(), q.Get("rol"))
				}
				return s.Users.List(r.Context())
			},
			get:    s.Users.Get,
			create: s.Users.CreateAdmin,
			update: func(ctx context.Context, id int64, u *domain.User) error {
				u.ID = id
				return s.Users.Update(ctx, u)
			},
			remove: s.Users.SoftDelete,
		},
		"producers": &resource[domain.Producer]{
			list:   byIdentification(s.Producers.List, s.Producers.GetByIdentification),
			get:    s.Producers.Get,
			create: s.Producers.Create,
			update: func(ctx context.Context, id int64, p *domain.Producer) error {
				p.ID = id
				return s.Producers.Update(ctx, p)
			},
			remove: s.Producers.SoftDelete,
		},
		"owners": &resource[domain.Owner]{
			list:   byIdentification(s.Owners.List, s.Owners.GetByIdentification),
			get:    s.Owners.Get,
			create: s.Owners.Create,
			update: func(ctx context.Context, id int64, o *domain.Owner) error {
				o.ID = id
				return s.Owners.Update(ctx, o)
			},
			remove: s.Owners.SoftDelete,
		},
		"assistants": &resource[domain.TechnicalAssistant]{
			list:   byIdentification(s.Assistants.List, s.Assistants.GetByIdentification),
			get:    s.Assistants.Get,
			create: s.Assistants.Create,
			update: func(ctx context.Context, id int64, a *domain.TechnicalAssistant) error {
				a.ID = id
				return s.Assistants.Update(ctx, a)
			},
			remove: s.Assistants.SoftDelete,
		},
	}

	for name, h := range routes {
		h.(binder).bind(name, logger)
	}
	return &RecordsHandler{routes: routes}
}

// RegisterRecordRoutes mounts every resource at /api/v1/<name>[/...]
func (r *Router) RegisterRecordRoutes(h *RecordsHandler) {
	for name, handler := range h.routes {
		r.HandleHandler(apiPrefix+name, handler)
		r.HandleHandler(apiPrefix+name+"/", handler)
	}
}

func (h *resource[T]) bind(name string, logger *zap.Logger) {
	h.name = name
	h.logger = logger
}

// ServeHTTP
//
//	GET    /api/v1/<name>            list (query filters)
//	POST   /api/v1/<name>            create
//	GET    /api/v1/<name>/{id}       get
//	PUT    /api/v1/<name>/{id}       update
//	DELETE /api/v1/<name>/{id}       delete
//	PUT    /api/v1/<name>/{id}/<act> action
func (h *resource[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, apiPrefix+h.name), "/")
	if rest == "" {
		switch {
		case r.Method == http.MethodGet && h.list != nil:
			h.handleList(w, r)
		case r.Method == http.MethodPost && h.create != nil:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idPart, act, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, Fail[any](fmt.Sprintf("%s %q no encontrado", h.name, idPart), nil))
		return
	}

	if act != "" {
		run, ok := h.actions[act]
		if !ok || r.Method != http.MethodPut {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		out, err := run(r.Context(), id, r)
		h.respond(w, r, http.StatusOK, out, err)
		return
	}

	switch {
	case r.Method == http.MethodGet && h.get != nil:
		v, err := h.get(r.Context(), id)
		if err == nil && v == nil {
			writeJSON(w, http.StatusNotFound, Fail[any](fmt.Sprintf("%s %d no encontrado", h.name, id), nil))
			return
		}
		h.respond(w, r, http.StatusOK, v, err)
	case r.Method == http.MethodPut && h.update != nil:
		var v T
		if !h.decode(w, r, &v) {
			return
		}
		err := h.update(r.Context(), id, &v)
		h.respond(w, r, http.StatusOK, &v, err)
	case r.Method == http.MethodDelete && h.remove != nil:
		h.respond(w, r, http.StatusOK, Created{ID: id}, h.remove(r.Context(), id))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *resource[T]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.list(r)
	if items == nil {
		items = []T{}
	}
	h.respond(w, r, http.StatusOK, items, err)
}

func (h *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var v T
	if !h.decode(w, r, &v) {
		return
	}
	id, err := h.create(r.Context(), &v)
	h.respond(w, r, http.StatusCreated, Created{ID: id}, err)
}

func (h *resource[T]) decode(w http.ResponseWriter, r *http.Request, v *T) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.logger.Debug("Invalid request body", zap.String("resource", h.name), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, Fail[any]("cuerpo JSON invalido: "+err.Error(), nil))
		return false
	}
	return true
}

func (h *resource[T]) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err == nil {
		writeJSON(w, status, Ok(v))
		return
	}
	code := statusFor(err)
	fields := []zap.Field{
		zap.String("resource", h.name),
		zap.String("method", r.Method),
		zap.Int("status", code),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		h.logger.Error("Record request failed", fields...)
	} else {
		h.logger.Debug("Record request rejected", fields...)
	}
	writeJSON(w, code, Fail[any](err.Error(), nil))
}

// statusFor maps the service error taxonomy onto HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case service.CodeOf(err) == service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeOf(err) == service.CodeBusinessRule:
		return http.StatusUnprocessableEntity
	}
	if _, ok := validation.AsError(err); ok {
		return http.StatusBadRequest
	}
	if _, ok := rules.AsViolation(err); ok {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func listAll[T any](all func(context.Context) ([]T, error)) func(*http.Request) ([]T, error) {
	return func(r *http.Request) ([]T, error) { return all(r.Context()) }
}

// listByParent lists the children of the parent named by query key; with no
// key it lists everything, or fails when all is nil
func listByParent[T any](key string, all func(context.Context) ([]T, error), children func(context.Context, int64) ([]T, error)) func(*http.Request) ([]T, error) {
	return func(r *http.Request) ([]T, error) {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			if all == nil {
				return nil, validation.Fail(key, "Cannot be null")
			}
			return all(r.Context())
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, validation.Fail(key, "Must be numeric")
		}
		return children(r.Context(), id)
	}
}

// byIdentification ?identificacion= narrows the list to that person
func byIdentification[T any](all func(context.Context) ([]T, error), lookup func(context.Context, string) (*T, error)) func(*http.Request) ([]T, error) {
	return func(r *http.Request) ([]T, error) {
		if q := r.URL.Query(); q.Has("identificacion") {
			v, err := lookup(r.Context(), q.Get("identificacion"))
			return one(v, err)
		}
		return all(r.Context())
	}
}

// one a single lookup as a zero or one element list
func one[T any](v *T, err error) ([]T, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return []T{*v}, nil
}

func changeStatus(change func(ctx context.Context, id int64, status string) error) action {
	return func(ctx context.Context, id int64, r *http.Request) (any, error) {
		var body statusChange
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&body); err != nil {
			return nil, validation.Fail("estado", "Cannot be null")
		}
		if err := change(ctx, id, body.Status); err != nil {
			return nil, err
		}
		return body, nil
	}
}
