package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/WellingtonDevBR/immigru-app/internal/catalog"
	"github.com/WellingtonDevBR/immigru-app/internal/journey"
	"github.com/WellingtonDevBR/immigru-app/internal/posts"
	"github.com/WellingtonDevBR/immigru-app/internal/profile"
	"github.com/WellingtonDevBR/immigru-app/internal/users"
)

const userIDContextKey = "immigru_user_id"

var (
	errMissingTokenValidator = errors.New("token validator dependency required")
	errMissingJourneyService = errors.New("journey service dependency required")
	errMissingProfileService = errors.New("profile service dependency required")
	errMissingCatalogService = errors.New("catalog service dependency required")
	errMissingPostsService   = errors.New("posts service dependency required")
	errInvalidAuthorization  = errors.New("authorization header missing or invalid")
)

// TokenValidator checks a bearer token and returns the subject user id.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Dependencies wires the services behind the HTTP surface.
type Dependencies struct {
	TokenValidator TokenValidator
	JourneyService *journey.Service
	ProfileService *profile.Service
	CatalogService *catalog.Service
	PostsService   *posts.Service
	UsersService   *users.Service
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewHTTPHandler builds the router with middleware and all routes registered.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenValidator == nil {
		return nil, errMissingTokenValidator
	}
	if deps.JourneyService == nil {
		return nil, errMissingJourneyService
	}
	if deps.ProfileService == nil {
		return nil, errMissingProfileService
	}
	if deps.CatalogService == nil {
		return nil, errMissingCatalogService
	}
	if deps.PostsService == nil {
		return nil, errMissingPostsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:  deps.TokenValidator,
		journey: deps.JourneyService,
		profile: deps.ProfileService,
		catalog: deps.CatalogService,
		posts:   deps.PostsService,
		users:   deps.UsersService,
		logger:  logger,
	}

	router.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", "route not found")
	})

	api := router.Group("/api")
	api.GET("/languages", handler.handleListLanguages)
	api.GET("/interests", handler.handleListInterests)
	api.GET("/countries/:id/visas", handler.handleListCountryVisas)

	protected := api.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/migration/steps", handler.handleGetSteps)
	protected.POST("/migration/steps", handler.handlePostSteps)
	protected.GET("/profile", handler.handleGetProfile)
	protected.POST("/profile", handler.handlePostProfile)
	protected.GET("/user/languages", handler.handleGetUserLanguages)
	protected.POST("/user/languages", handler.handlePostUserLanguages)
	protected.GET("/user/interests", handler.handleGetUserInterests)
	protected.POST("/user/interests", handler.handlePostUserInterests)
	protected.POST("/posts", handler.handleCreatePost)
	protected.POST("/posts/feed", handler.handleFetchFeed)
	protected.GET("/groves/recommended", handler.handleRecommendedGroves)

	return router, nil
}

type httpHandler struct {
	tokens  TokenValidator
	journey *journey.Service
	profile *profile.Service
	catalog *catalog.Service
	posts   *posts.Service
	users   *users.Service
	logger  *zap.Logger
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		respondError(c, http.StatusUnauthorized, "unauthorized", errInvalidAuthorization.Error())
		c.Abort()
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized", errInvalidAuthorization.Error())
		c.Abort()
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		respondError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
		c.Abort()
		return
	}

	if h.users != nil {
		if _, err := h.users.EnsureUser(c.Request.Context(), subject, ""); err != nil {
			h.logger.Warn("user upsert failed", zap.String("user_id", subject), zap.Error(err))
		}
	}

	c.Set(userIDContextKey, subject)
	c.Next()
}

func (h *httpHandler) actingUser(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return "", false
	}
	return userID, true
}
