package routes

import (
	"github.com/gin-gonic/gin"
)

// Registrar attaches a feature's routes to a group.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

type V1Deps struct {
	// Auth runs on every /api/v1 route, in order.
	Auth []gin.HandlerFunc

	Wizard  Registrar
	Panels  Registrar
	Academy Registrar
	Uploads Registrar
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(dep.Auth...)

	wizard := api.Group("/wizard")
	dep.Wizard.Register(wizard)
	if dep.Panels != nil {
		dep.Panels.Register(wizard)
	}

	dep.Academy.Register(api.Group("/academy"))

	if dep.Uploads != nil {
		dep.Uploads.Register(api.Group("/uploads"))
	}
}
