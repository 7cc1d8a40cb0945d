package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/handlers"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/shopper"
)

type Deps struct {
	Logger *log.Logger
	Cfg    config.Config

	Shoppers *shopper.Registry
	Fees     cart.Fees

	Restaurants *clients.RestaurantClient
	Menu        *clients.MenuClient
	Categories  *clients.CategoryClient
	Orders      *clients.OrderClient
	Addresses   *clients.AddressClient

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.SessionID)

	// Health
	health := &handlers.HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Storefront)
	r.Get("/health/upstreams", health.Upstreams)

	// Catalog (anonymous, no shopper state)
	cat := handlers.NewCatalogHandler(d.Restaurants, d.Menu, d.Categories)
	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/", cat.ListRestaurants)
		r.Get("/search", cat.SearchRestaurants)
		r.Get("/top-rated", cat.TopRated)
		r.Get("/cuisine/{cuisine}", cat.ByCuisine)
		r.Get("/{id}", cat.GetRestaurant)
		r.Get("/{id}/menu", cat.Menu)
	})
	r.Get("/menu/search", cat.SearchMenu)
	r.Get("/categories", cat.Categories)

	auth := handlers.NewAuthHandler(d.Logger)
	shopperCart := handlers.NewCartHandler(d.Restaurants, d.Menu, d.Fees, d.Logger)
	co := handlers.NewCheckoutHandler()
	orders := handlers.NewOrderHandler(d.Orders)
	addresses := handlers.NewAddressHandler(d.Addresses)
	toasts := handlers.NewToastHandler()

	r.Group(func(r chi.Router) {
		r.Use(handlers.Shoppers(d.Shoppers, d.Logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)
		})

		r.Route("/me", func(r chi.Router) {
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", shopperCart.Get)
				r.Delete("/", shopperCart.Clear)
				r.Post("/items", shopperCart.AddItem)
				r.Patch("/items/{itemId}", shopperCart.UpdateQuantity)
				r.Delete("/items/{itemId}", shopperCart.RemoveItem)
			})

			r.Get("/toasts", toasts.List)
			r.Delete("/toasts/{id}", toasts.Dismiss)

			// Gated: signed-in shoppers only
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireSession)

				r.Route("/checkout", func(r chi.Router) {
					r.Get("/", co.Get)
					r.Post("/", co.Begin)
					r.Delete("/", co.Reset)
					r.Put("/address", co.SelectAddress)
					r.Post("/addresses", co.AddAddress)
					r.Put("/instructions", co.SetInstructions)
					r.Post("/place", co.Place)
					r.Post("/payment/callback", co.PaymentCallback)
					r.Post("/payment/retry", co.RetryVerification)
					r.Post("/payment/restart", co.RestartPayment)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", orders.ListMine)
					r.Get("/{id}", orders.Get)
					r.Post("/{id}/cancel", orders.Cancel)
				})

				r.Route("/addresses", func(r chi.Router) {
					r.Get("/", addresses.List)
					r.Post("/", addresses.Create)
					r.Put("/{id}", addresses.Update)
					r.Delete("/{id}", addresses.Delete)
				})
			})
		})
	})

	return r
}
