package routes

import (
	"receipts/internal/config"
	"receipts/internal/controllers"
	"receipts/internal/ledger"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the read-only ledger status API
func SetupRouter(store ledger.Store, cfg *config.Config) *gin.Engine {
	ledgerController := controllers.LedgerController{Store: store}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "timezone": cfg.Timezone})
	})

	api := router.Group("/api/v1")
	{
		records := api.Group("/ledger")
		{
			// GET /api/v1/ledger
			records.GET("", ledgerController.GetNamespaces)
			// GET /api/v1/ledger/:base_id/:table_id?limit=N
			records.GET("/:base_id/:table_id", ledgerController.GetRecords)
		}
	}

	return router
}
