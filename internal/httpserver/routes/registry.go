package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Snehagupta1907/monad-journal/internal/httpserver/deps"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// group is a set of routes sharing middlewares, registered from an init() in this package.
type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups []group

// Register adds a route group. mws wrap every route of the group.
func Register(name string, reg Registrar, mws ...Middleware) {
	groups = append(groups, group{name: name, reg: reg, mws: mws})
}

// RegisterAll mounts every group on r. Called once from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		sub := r
		if len(g.mws) > 0 {
			sub = r.With(g.mws...)
		}
		g.reg(sub, d)
		d.Logger.Debug("routes registered", logger.String("group", g.name))
	}
}
