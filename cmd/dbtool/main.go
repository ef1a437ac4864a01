package main

import (
	"flag"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/adapters/storage"
	"route-divergence-service/internal/config"
	"route-divergence-service/internal/platform/db"
	"route-divergence-service/internal/platform/logging"
)

// dbtool prepares the SQL record sink and checks the routes file before a deploy.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found (using environment variables)")
	}

	sink := flag.String("sink", config.Get("SINK", "sqlite"), "sql sink to initialise: sqlite or postgres")
	routesPath := flag.String("routes", config.Get("ROUTES_PATH", "routes.json"), "routes file to validate")
	flag.Parse()

	logging.Init("route-divergence-dbtool", config.Get("APP_ENV", "development"))

	routes, err := storage.LoadRoutes(*routesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("routes file is invalid")
	}
	log.Info().Int("routes", len(routes)).Str("path", *routesPath).Msg("routes file ok")

	switch *sink {
	case "sqlite":
		dbPath := config.Get("DB_PATH", "data/app.db")
		conn, err := db.OpenSqlite(dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open sqlite")
		}
		defer conn.Close()

		log.Info().Str("path", dbPath).Msg("initializing sqlite schema")
		if err := storage.InitSchema(conn); err != nil {
			log.Fatal().Err(err).Msg("schema initialization failed")
		}

	case "postgres":
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			log.Fatal().Msg("DATABASE_URL is required")
		}
		conn, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres")
		}
		defer conn.Close()

		log.Info().Msg("initializing postgres schema")
		if err := storage.InitPostgresSchema(conn); err != nil {
			log.Fatal().Err(err).Msg("schema initialization failed")
		}

	default:
		log.Info().Str("sink", *sink).Msg("no schema needed")
		return
	}

	log.Info().Msg("schema ready")
}
