// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authnfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/authn"
	healthfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/health"
	ordersfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/orders"
	productsfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/products"
	repairsfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/repairs"
	suppliersfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/suppliers"
	usersfeature "github.com/rafaelGenish111/Alu-Control/internal/app/features/users"
	"github.com/rafaelGenish111/Alu-Control/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Every feature router is mounted here;
// the bearer-token middleware lives inside the feature routers so /auth and
// /health stay public.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication (the only endpoints reachable without a token)
	authHandler := authnfeature.NewHandler(deps.MongoDatabase, logger, tokens)
	r.Mount("/auth", authnfeature.Routes(authHandler))

	// User administration
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, tokens))

	// Orders, including procurement, install, trash, and client reads
	ordersHandler := ordersfeature.NewHandler(deps.MongoDatabase, logger, appCfg.TrashRetention)
	r.Mount("/orders", ordersfeature.Routes(ordersHandler, tokens))

	// Repair / service tickets
	repairsHandler := repairsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/repairs", repairsfeature.Routes(repairsHandler, tokens))

	// Supplier directory
	suppliersHandler := suppliersfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/suppliers", suppliersfeature.Routes(suppliersHandler, tokens))

	// Product catalog
	productsHandler := productsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/products", productsfeature.Routes(productsHandler, tokens))

	return r, nil
}
