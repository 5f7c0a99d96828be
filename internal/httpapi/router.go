package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the engine's API surface.
func Routes(catalogH *CatalogHandler, cartH *CartHandler, checkoutH *CheckoutHandler, authH *AuthHandler) chi.Router {
	r := chi.NewRouter()

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/products", catalogH.Products)
		r.Post("/products/query", catalogH.ApplyFilter)
		r.Post("/products/{product_id}/fetch", catalogH.FetchProductDetail)
		r.Get("/products/selected", catalogH.ProductDetail)
		r.Delete("/products/selected", catalogH.ClearProductDetail)
		r.Post("/categories/fetch", catalogH.FetchCategories)
		r.Get("/categories", catalogH.Categories)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartH.GetCart)
		r.Post("/items", cartH.AddItem)
		r.Put("/items/{product_id}", cartH.UpdateQuantity)
		r.Delete("/items/{product_id}", cartH.RemoveItem)
		r.Delete("/", cartH.ClearCart)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", checkoutH.Begin)
		r.Get("/", checkoutH.Status)
		r.Post("/shipping", checkoutH.SubmitShipping)
		r.Post("/payment", checkoutH.SelectPayment)
		r.Post("/confirm", checkoutH.Confirm)
		r.Post("/back", checkoutH.Back)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authH.Login)
		r.Post("/signup", authH.Signup)
		r.Post("/logout", authH.Logout)
		r.Get("/session", authH.Session)
	})

	return r
}
