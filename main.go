package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/encore-fm/backstage/config"
	"github.com/encore-fm/backstage/db"
	"github.com/encore-fm/backstage/service/catalog"
	"github.com/encore-fm/backstage/service/importer"
	"github.com/encore-fm/backstage/service/reconcile"
	"github.com/encore-fm/backstage/service/scrape"
)

type application struct {
	database         *db.DB
	catalogService   *catalog.Service
	scrapeService    *scrape.Service
	reconcileService *reconcile.Service
	importerService  *importer.Service
	curationService  *importer.Curation
}

func main() {
	config.Load()

	database, err := db.New(viper.GetString("db.path"))
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// --- Service Initializations ---

	spotifyClient := catalog.NewSpotifyClient(
		context.Background(),
		viper.GetString("spotify.client_id"),
		viper.GetString("spotify.client_secret"),
		viper.GetString("spotify.token_url"),
	)
	catalogService := catalog.NewService(
		spotifyClient,
		viper.GetInt("catalog.requests_per_second"),
		viper.GetInt("catalog.search_limit"),
		time.Duration(viper.GetInt("catalog.cache_ttl_minutes"))*time.Minute,
	)

	scrapeService := scrape.NewService(
		viper.GetString("setlistfm.api_url"),
		viper.GetString("setlistfm.api_key"),
		viper.GetInt("setlistfm.requests_per_second"),
	)

	reconcileService := reconcile.NewService(catalogService, viper.GetInt("import.max_parallel_lookups"))
	importerService := importer.NewService(scrapeService, reconcileService, database)
	curationService := importer.NewCuration(database, reconcileService)

	app := &application{
		database:         database,
		catalogService:   catalogService,
		scrapeService:    scrapeService,
		reconcileService: reconcileService,
		importerService:  importerService,
		curationService:  curationService,
	}

	addr := fmt.Sprintf("%s:%s", viper.GetString("server.host"), viper.GetString("server.port"))
	log.Printf("backstage listening on %s", addr)
	if err := http.ListenAndServe(addr, app.routes()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
