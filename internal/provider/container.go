package provider

import (
	"time"

	"github.com/campusbooks/internal/authz"
	"github.com/campusbooks/internal/cache"
	"github.com/campusbooks/internal/cart"
	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/logger"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/queue"
	"github.com/campusbooks/internal/repository"
	"github.com/campusbooks/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	CartStore   *cart.Store

	// Repositories
	ProfileRepo         repository.ProfileRepository
	BookRepo            repository.BookRepository
	OrderRepo           repository.OrderRepository
	CheckoutAttemptRepo repository.CheckoutAttemptRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	ProfileService  *service.ProfileService
	BookService     *service.BookService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		CartStore:   cart.NewStore(newCartStorage(cfg)),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

// newCartStorage 按配置选择购物车存储，Redis 不可用时退回内存
func newCartStorage(cfg *config.Config) cart.Storage {
	if cfg.Cart.Storage == constants.CartStorageRedis && cache.Enabled() {
		ttl := time.Duration(cfg.Cart.TTLHours) * time.Hour
		return cart.NewRedisStorage(cache.Client(), ttl)
	}
	if cfg.Cart.Storage == constants.CartStorageRedis {
		logger.Warnw("provider_cart_storage_fallback", "storage", constants.CartStorageMemory)
	}
	return cart.NewMemoryStorage()
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.BookRepo = repository.NewBookRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CheckoutAttemptRepo = repository.NewCheckoutAttemptRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	if err := c.AuthzService.ApplyConfig(c.Config.Authz); err != nil {
		logger.Errorw("provider_apply_authz_config_failed", "error", err)
		panic(err)
	}
	if grants, err := c.AuthzService.ListGrants(); err == nil {
		logger.Infow("provider_authz_policy_loaded", "grants", grants)
	}

	c.AuthService = service.NewAuthService(c.Config, c.ProfileRepo).WithCapabilityResolver(c.AuthzService)
	c.ProfileService = service.NewProfileService(c.ProfileRepo)
	c.BookService = service.NewBookService(c.BookRepo)
	c.CartService = service.NewCartService(c.CartStore, c.BookRepo)
	c.CheckoutService = service.NewCheckoutService(c.Config.Order, c.CartStore, c.OrderRepo, c.BookRepo, c.CheckoutAttemptRepo, c.QueueClient)
	c.OrderService = service.NewOrderService(c.Config.Order, c.OrderRepo, c.BookRepo)
}
