package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"GeoData-App/internal/database"
	domainrepo "GeoData-App/internal/domain/repository"
	"GeoData-App/internal/handler"
	infradb "GeoData-App/internal/infrastructure/database"
	"GeoData-App/internal/infrastructure/nasa"
	"GeoData-App/internal/middleware"
	"GeoData-App/internal/repository"
	"GeoData-App/internal/usecase"
	"GeoData-App/pkg/logger"
)

// apiRateLimitPerMinute /api 以下へのIPあたりのリクエスト上限（1分間）
const apiRateLimitPerMinute = 20

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	zapLogger, err := logger.New()
	if err != nil {
		log.Fatalf("ロガーの初期化失敗: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	geoDataRepo, cleanup, err := setupGeoDataRepository(ctx)
	if err != nil {
		fmt.Println("⚠️  データストアの初期化に失敗しました")
		fmt.Println("必要な環境変数:")
		fmt.Println("  - MONGO_URI (STORE_DRIVER=mongo、デフォルト)")
		fmt.Println("  - POSTGRES_URL (STORE_DRIVER=postgres)")
		fmt.Println("\n.envファイルを作成するか、環境変数を設定してください")
		log.Fatalf("データストア初期化失敗: %v", err)
	}
	defer cleanup()

	imageryProvider := nasa.NewEarthImageryProvider(os.Getenv("NASA_API_KEY"))
	geoDataUseCase := usecase.NewGeoDataUseCase(geoDataRepo, imageryProvider)
	geoDataHandler := handler.NewGeoDataHandler(geoDataUseCase)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(cors.Default())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Geospatial API server is running")
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "GeoData-App"})
	})

	api := router.Group("/api")
	api.Use(middleware.NewRateLimiter(apiRateLimitPerMinute).Middleware())
	{
		api.GET("/geo-data", geoDataHandler.FetchImagery)
		api.POST("/geo-data", geoDataHandler.SaveGeoData)
		api.GET("/geo-data/all", geoDataHandler.ListGeoData)
		api.GET("/geo-data/:id", geoDataHandler.GetGeoDataByID)
		api.DELETE("/geo-data/:id", geoDataHandler.DeleteGeoDataByID)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	zapLogger.Info("server starting", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("サーバーの起動失敗: %v", err)
	}
}

// setupGeoDataRepository STORE_DRIVERに応じたリポジトリと後始末関数を作成する
func setupGeoDataRepository(ctx context.Context) (domainrepo.GeoDataRepository, func(), error) {
	driver := os.Getenv("STORE_DRIVER")

	switch driver {
	case "", "mongo":
		fmt.Println("Initializing MongoDB client...")
		mongoClient, err := database.NewMongoClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := mongoClient.HealthCheck(ctx); err != nil {
			return nil, nil, fmt.Errorf("MongoDBヘルスチェック失敗: %w", err)
		}
		fmt.Println("✅ MongoDB connection successful!")

		cleanup := func() {
			if err := mongoClient.Close(context.Background()); err != nil {
				log.Printf("MongoDB切断エラー: %v", err)
			}
		}
		return repository.NewMongoGeoDataRepository(mongoClient), cleanup, nil

	case "postgres":
		fmt.Println("Initializing PostgreSQL client...")
		pgClient, err := infradb.NewPostgreSQLClient()
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewPostgresGeoDataRepository(pgClient)
		if pgRepo, ok := repo.(*repository.PostgresGeoDataRepository); ok {
			if err := pgRepo.EnsureSchema(ctx); err != nil {
				pgClient.Close()
				return nil, nil, err
			}
		}
		fmt.Println("✅ PostgreSQL connection successful!")

		return repo, func() { pgClient.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("不明なSTORE_DRIVER: %s", driver)
	}
}
