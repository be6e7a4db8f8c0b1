package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the marketplace API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	transactionsHandler := &TransactionsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: accounts.
	mux.HandleFunc("POST /register", authHandler.Register)
	mux.HandleFunc("POST /authenticate", authHandler.Authenticate)

	// Public: browsing.
	mux.HandleFunc("GET /feed", itemsHandler.Feed)
	mux.HandleFunc("GET /items/search", itemsHandler.Search)
	mux.HandleFunc("GET /items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /items/{id}/image", itemsHandler.GetImage)

	// Authenticated: session.
	mux.Handle("POST /logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /me", authMW(http.HandlerFunc(authHandler.Me)))

	// Authenticated: listings (ownership is checked per item).
	mux.Handle("POST /items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))

	// Authenticated: transactions.
	mux.Handle("POST /transactions/purchase/{itemId}", authMW(http.HandlerFunc(transactionsHandler.Purchase)))
	mux.Handle("GET /transactions", authMW(http.HandlerFunc(transactionsHandler.List)))

	return mux
}
