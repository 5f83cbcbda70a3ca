package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willmadison/donation-flow/donations"
)

type RouterConfig struct {
	Client          Client
	Store           donations.Store
	Verifier        *WebhookVerifier
	DefaultCurrency string
	PublishableKey  string
	// Static serves the client page for every unmatched route when set.
	Static http.FileSystem
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", HealthHandler)
	}

	r.GET("/config", ConfigHandler(cfg.PublishableKey, cfg.DefaultCurrency))
	r.POST("/create-payment-intent", CreatePaymentIntentHandler(cfg.Client, cfg.DefaultCurrency))
	r.GET("/donors", DonorsHandler(cfg.Store))
	r.POST("/webhook", WebhookHandler(cfg.Verifier, cfg.Store, cfg.Now))

	if cfg.Static != nil {
		r.NoRoute(gin.WrapH(http.FileServer(cfg.Static)))
	}

	return r
}
