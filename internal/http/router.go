package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Cart      *CartHandler
	Coupons   *CouponHandler
	Checkout  *CheckoutHandler
	Analytics *AnalyticsHandler
	Products  *ProductHandler

	Users          UserLoader
	TokenSecret    string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

// NewRouter mounts every route under /api and wraps the mux with tracing.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	protect := ProtectRoute(cfg.Users, []byte(cfg.TokenSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Use(protect)
			r.Get("/", cfg.Cart.GetCart)
			r.Post("/", cfg.Cart.AddToCart)
			r.Delete("/", cfg.Cart.RemoveAllFromCart)
			r.Put("/{id}", cfg.Cart.UpdateQuantity)
			r.Patch("/{id}", cfg.Cart.UpdateQuantity)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Use(protect)
			r.Get("/", cfg.Coupons.GetCoupon)
			r.Post("/validate", cfg.Coupons.ValidateCoupon)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(protect)
			r.Post("/create-checkout-session", cfg.Checkout.CreateCheckoutSession)
			r.Post("/checkout-success", cfg.Checkout.CheckoutSuccess)
		})

		r.With(protect, AdminRoute).Get("/analytics", cfg.Analytics.GetAnalytics)

		r.Route("/products", func(r chi.Router) {
			r.Get("/featured", cfg.Products.Featured)
			r.Get("/category/{category}", cfg.Products.ByCategory)
			r.Get("/recommendations", cfg.Products.Recommended)

			r.Group(func(r chi.Router) {
				r.Use(protect, AdminRoute)
				r.Get("/", cfg.Products.List)
				r.Post("/", cfg.Products.Create)
				r.Patch("/{id}", cfg.Products.ToggleFeatured)
				r.Delete("/{id}", cfg.Products.Delete)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}
