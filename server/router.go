package server

import (
	"net/http"

	"task-service/auth"
	"task-service/config"
	"task-service/handlers"
	"task-service/middleware"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/cache"
)

// NewRouter builds the full request pipeline: request-id and CORS wrap the
// router, token verification guards the two /api subrouters, and the auth
// namespace stays open for register/login. Tests exercise this same
// handler end to end.
func NewRouter(cfg config.Config, db *sqlx.DB, c cache.Cache) http.Handler {
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)

	authHandler := handlers.NewAuthHandler(db, c, issuer)
	taskHandler := handlers.NewTaskHandler(db, cfg.EnforceTaskOwnership)
	userHandler := handlers.NewUserHandler(db, c)

	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "task-service"}`))
	}).Methods("GET")

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRouter.HandleFunc("/login", authHandler.Login).Methods("POST")

	taskRouter := router.PathPrefix("/api/tasks").Subrouter()
	taskRouter.Use(middleware.RequireAuth(db, issuer))
	taskRouter.HandleFunc("/", taskHandler.List).Methods("GET")
	taskRouter.HandleFunc("/", taskHandler.Create).Methods("POST")
	taskRouter.HandleFunc("/{id:[0-9]+}", taskHandler.Update).Methods("PUT")
	taskRouter.HandleFunc("/{id:[0-9]+}", taskHandler.Delete).Methods("DELETE")

	userRouter := router.PathPrefix("/api/users").Subrouter()
	userRouter.Use(middleware.RequireAuth(db, issuer))
	userRouter.HandleFunc("/", userHandler.List).Methods("GET")
	userRouter.HandleFunc("/current-user", userHandler.CurrentUser).Methods("GET")

	// CORS sits outside the router so OPTIONS preflights are answered
	// even for method-restricted routes.
	return middleware.RequestID()(middleware.CORS(cfg.CORSOrigin)(router))
}
