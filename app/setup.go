package app

import (
	"fmt"
	"log"
	"os"

	"github.com/noatrans/noatrans-api/api"
	"github.com/noatrans/noatrans-api/config"
	"github.com/noatrans/noatrans-api/database"
	"github.com/noatrans/noatrans-api/router"
	"github.com/noatrans/noatrans-api/services/cron"
	"github.com/noatrans/noatrans-api/services/storage"
	"github.com/noatrans/noatrans-api/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Redis backs login lockouts and the course list cache. The server
	// still runs without it, just slower and without lockouts.
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Println("Warning: Redis unavailable, continuing without cache:", err)
			redisCache = nil
		}
	}

	// Raw SQL connection for the admin reports
	reportingStore, err := database.StartReporting()
	if err != nil {
		log.Println("Warning: reporting connection unavailable:", err)
		reportingStore = nil
	}

	// Spaces client for course material uploads
	var spacesClient *storage.SpacesClient
	if getEnv.SPACES_BUCKET != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Println("Warning: Spaces client unavailable, material uploads disabled:", err)
			spacesClient = nil
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		if reportingStore != nil {
			reportingStore.Close()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, router.Deps{
		RedisCache:     redisCache,
		ReportingStore: reportingStore,
		Spaces:         spacesClient,
	})

	// Get the PORT & Start the Server
	return server.Run()
}
