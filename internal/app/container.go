package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/api"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/photo"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/storage"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	// DBPool selects Postgres storage; when nil every module keeps its data in memory.
	DBPool     *pgxpool.Pool
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
	HeaderAuth auth.HeaderOptions
	Logger     *zap.Logger
	Publisher  booking.Publisher

	// PhotoStore holds item photo blobs; nil keeps them in memory.
	// PhotoMaxBytes and PhotoMaxPixels cap a single upload; zero uses photo.DefaultLimits.
	PhotoStore     storage.Storage
	PhotoMaxBytes  int64
	PhotoMaxPixels int64

	// Clock overrides the wall clock of the booking engine and comment eligibility. Tests only.
	Clock func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager

	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
	CommentService comment.Service
	PhotoService   photo.Service
	RequestService itemrequest.Service
}

type repositories struct {
	users    user.Repository
	items    item.Repository
	bookings booking.Repository
	comments comment.Repository
	photos   photo.Repository
	requests itemrequest.Repository
}

func newRepositories(pool *pgxpool.Pool) repositories {
	if pool == nil {
		return repositories{
			users:    user.NewMemoryRepository(),
			items:    item.NewMemoryRepository(),
			bookings: booking.NewMemoryRepository(),
			comments: comment.NewMemoryRepository(),
			photos:   photo.NewMemoryRepository(),
			requests: itemrequest.NewMemoryRepository(),
		}
	}
	return repositories{
		users:    user.NewPgxRepository(pool),
		items:    item.NewPgxRepository(pool),
		bookings: booking.NewPgxRepository(pool),
		comments: comment.NewPgxRepository(pool),
		photos:   photo.NewPgxRepository(pool),
		requests: itemrequest.NewPgxRepository(pool),
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	response.SetLogger(logger.Named("http"))

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	repos := newRepositories(cfg.DBPool)

	// User Module
	userService := user.NewService(repos.users, passwordHasher, user.WithReferences(userReferences{
		items:    repos.items,
		bookings: repos.bookings,
		requests: repos.requests,
	}))
	users := userDirectory{users: userService}
	catalog := itemCatalog{repo: repos.items}

	// Booking Module
	bookingOpts := []booking.Option{}
	if cfg.Publisher != nil {
		bookingOpts = append(bookingOpts, booking.WithPublisher(cfg.Publisher))
	}
	if cfg.Clock != nil {
		bookingOpts = append(bookingOpts, booking.WithClock(cfg.Clock))
	}
	bookingService := booking.NewService(repos.bookings, catalog, users, logger.Named("booking"), bookingOpts...)

	// Comment Module
	commentOpts := []comment.Option{}
	if cfg.Clock != nil {
		commentOpts = append(commentOpts, comment.WithClock(cfg.Clock))
	}
	commentService := comment.NewService(
		repos.comments,
		rentalHistory{bookings: bookingService},
		catalog,
		users,
		logger.Named("comment"),
		commentOpts...,
	)

	// Photo Module
	photoStore := cfg.PhotoStore
	if photoStore == nil {
		photoStore = storage.NewMemoryStorage()
	}
	limits := photo.DefaultLimits
	if cfg.PhotoMaxBytes > 0 {
		limits.MaxBytes = cfg.PhotoMaxBytes
	}
	if cfg.PhotoMaxPixels > 0 {
		limits.MaxPixels = cfg.PhotoMaxPixels
	}
	photoService := photo.NewService(repos.photos, photoStore, catalog, logger.Named("photo"), photo.WithLimits(limits))

	// Item Request Module
	requestService := itemrequest.NewService(repos.requests, users, itemAnswers{repo: repos.items}, logger.Named("itemrequest"))

	// Item Module
	itemService := item.NewService(
		repos.items,
		users,
		bookingService,
		commentService,
		logger.Named("item"),
		item.WithPhotos(photoService),
		item.WithRequests(requestService),
	)

	// API Router Config
	routerParams := api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         logger,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
		CommentService: commentService,
		PhotoService:   photoService,
		RequestService: requestService,
		JWTManager:     jwtManager,
		HeaderAuth:     cfg.HeaderAuth,
		Clock:          cfg.Clock,
	}
	if cfg.DBPool != nil {
		routerParams.Storage = cfg.DBPool
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
		CommentService: commentService,
		PhotoService:   photoService,
		RequestService: requestService,
	}
}
