package rest

import (
	"reflect"
	"strings"
	"sync"

	_ "github.com/dmitrijs2005/gophauth/api/swagger"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth       AuthService
	Tokens     TokenValidator
	Logger     logging.Logger
	Metrics    *metrics.Metrics
	EnableDocs bool
}

var registerTagNames sync.Once

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	registerTagNames.Do(useJSONFieldNames)

	logger := d.Logger
	if logger == nil {
		logger = logging.Nop{}
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger.With("module", "http")), Metrics(d.Metrics))

	r.GET("/health", Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	if d.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := NewHandler(d.Auth)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.DELETE("/logout", h.Logout)
	authGroup.POST("/logout", h.Logout)

	userGroup := r.Group("/api/user", BearerAuth(d.Tokens))
	userGroup.GET("/profile", h.Profile)

	return r
}

// useJSONFieldNames makes validation details report json field names.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}
