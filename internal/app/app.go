// Package app assembles the stores, services and HTTP handlers shared by
// the server and its tests.
package app

import (
	"fmt"
	"net/http"

	"logistics-service/internal/adapters/repositories"
	"logistics-service/internal/api"
	"logistics-service/internal/api/dto"
	"logistics-service/internal/auth"
	"logistics-service/internal/catalog"
	"logistics-service/internal/config"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/db"
	"logistics-service/internal/ports"
	"logistics-service/internal/services"
	"logistics-service/internal/web"
)

// Version is reported in the OpenAPI document.
var Version = "dev"

type App struct {
	Stores    *repositories.Stores
	Resources services.Resources
	Auth      *auth.Authenticator
	Sessions  *auth.SessionManager
	Dashboard *services.Dashboard
	Audit     *services.ReassignmentAudit
	Handler   http.Handler
}

// NewResources exposes every store through its catalog entity.
func NewResources(s *repositories.Stores) services.Resources {
	return services.Resources{
		catalog.RouteEntity.Name:    services.NewResource[domain.Route](catalog.RouteEntity, s.Routes, dto.RouteCodec),
		catalog.VehicleEntity.Name:  services.NewResource[domain.Vehicle](catalog.VehicleEntity, s.Vehicles, dto.VehicleCodec),
		catalog.AircraftEntity.Name: services.NewResource[domain.Aircraft](catalog.AircraftEntity, s.Aircraft, dto.AircraftCodec),
		catalog.DriverEntity.Name:   services.NewResource[domain.Driver](catalog.DriverEntity, s.Drivers, dto.DriverCodec),
		catalog.PilotEntity.Name:    services.NewResource[domain.Pilot](catalog.PilotEntity, s.Pilots, dto.PilotCodec),
		catalog.ClientEntity.Name:   services.NewResource[domain.Client](catalog.ClientEntity, s.Clients, dto.ClientCodec),
		catalog.CargoEntity.Name:    services.NewResource[domain.Cargo](catalog.CargoEntity, s.Cargo, dto.CargoCodec),
		catalog.DispatchEntity.Name: services.NewResource[domain.Dispatch](catalog.DispatchEntity, s.Dispatches, dto.DispatchCodec),
	}
}

// New builds the application on an open database and a session store.
func New(cfg *config.Config, conn *db.DB, sessions ports.SessionStore) (*App, error) {
	stores := repositories.NewStores(conn)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	a := &App{
		Stores:    stores,
		Resources: NewResources(stores),
		Auth:      auth.NewAuthenticator(stores.Users, tokens),
		Sessions:  &auth.SessionManager{Store: sessions, Users: stores.Users, TTL: cfg.SessionTTL},
		Dashboard: &services.Dashboard{
			Vehicles:   stores.Vehicles,
			Aircraft:   stores.Aircraft,
			Drivers:    stores.Drivers,
			Pilots:     stores.Pilots,
			Dispatches: stores.Dispatches,
		},
		Audit: &services.ReassignmentAudit{Dispatches: stores.Dispatches},
	}

	pages, err := web.New(web.Deps{
		Resources: a.Resources,
		Dashboard: a.Dashboard,
		Auth:      a.Auth,
		Sessions:  a.Sessions,
		PageSize:  cfg.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}

	a.Handler = api.NewRouter(api.Deps{
		Resources: a.Resources,
		Validator: &services.DispatchValidator{Codec: dto.DispatchCodec},
		Auth:      a.Auth,
		Sessions:  a.Sessions,
		DB:        conn,
		PageSize:  cfg.PageSize,
		Version:   Version,
	}, pages)
	return a, nil
}
