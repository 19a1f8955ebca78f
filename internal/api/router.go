package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/shareit-backend/internal/booking/http"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	commentHttp "github.com/nekogravitycat/shareit-backend/internal/comment/http"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	itemRequestHttp "github.com/nekogravitycat/shareit-backend/internal/itemrequest/http"
	"github.com/nekogravitycat/shareit-backend/internal/photo"
	photoHttp "github.com/nekogravitycat/shareit-backend/internal/photo/http"
	"github.com/nekogravitycat/shareit-backend/internal/user"
	userHttp "github.com/nekogravitycat/shareit-backend/internal/user/http"
)

// Pinger reports storage health. A nil Pinger means there is nothing to check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config carries everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger
	Storage      Pinger

	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
	CommentService comment.Service
	PhotoService   photo.Service
	RequestService itemrequest.Service

	JWTManager *auth.JWTManager
	HeaderAuth auth.HeaderOptions

	// Clock is the booking engine's time source; nil means the wall clock.
	Clock func() time.Time
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	// Multipart bodies above this spill to temp files.
	r.MaxMultipartMemory = 8 << 20

	// Global Middleware:
	// - RequestID: tags the request and echoes the id back.
	// - RequestLogger: structured access log.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestID(), RequestLogger(logger.Named("http")), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		config.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	if cfg.HeaderAuth.Trust && cfg.HeaderAuth.Name != "" {
		config.AllowHeaders = append(config.AllowHeaders, cfg.HeaderAuth.Name)
	}
	r.Use(cors.New(config))

	r.GET("/healthz", health(cfg.Storage))

	// authMiddleware: resolves the acting user from a JWT or the trusted header.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, cfg.HeaderAuth)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	itemHandler := itemHttp.NewHandler(cfg.ItemService)
	var bookingOpts []bookingHttp.HandlerOption
	if cfg.Clock != nil {
		bookingOpts = append(bookingOpts, bookingHttp.WithClock(cfg.Clock))
	}
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, bookingOpts...)
	commentHandler := commentHttp.NewHandler(cfg.CommentService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService)
	requestHandler := itemRequestHttp.NewHandler(cfg.RequestService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		itemHttp.RegisterRoutes(v1, itemHandler, authMiddleware)
		commentHttp.RegisterRoutes(v1, commentHandler, authMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware)
		itemRequestHttp.RegisterRoutes(v1, requestHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}

func health(storage Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := storage.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
