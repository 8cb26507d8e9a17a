package controllers

import (
	"log"
	"net/http"
	"receipts/internal/ledger"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LedgerController struct {
	Store ledger.Store
}

type NamespaceResponse struct {
	BaseID  string `json:"base_id"`
	TableID string `json:"table_id"`
	Count   int    `json:"count"`
}

// GetNamespaces lists every polled table together with how many records were printed for it
func (lc *LedgerController) GetNamespaces(c *gin.Context) {
	l, err := ledger.Load(c.Request.Context(), lc.Store)
	if err != nil {
		log.Printf("failed to load ledger: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	namespaces := make([]NamespaceResponse, 0)
	for _, ns := range l.Namespaces() {
		namespaces = append(namespaces, NamespaceResponse{
			BaseID:  ns.BaseID,
			TableID: ns.TableID,
			Count:   len(l.Records(ns)),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"namespaces": namespaces,
	})
}

// GetRecords returns the processed record ids of one table
func (lc *LedgerController) GetRecords(c *gin.Context) {
	ns := ledger.Namespace{BaseID: c.Param("base_id"), TableID: c.Param("table_id")}

	l, err := ledger.Load(c.Request.Context(), lc.Store)
	if err != nil {
		log.Printf("failed to load ledger: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	records := l.Records(ns)
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Namespace not found"})
		return
	}

	total := len(records)
	limit := getLimitWithDefault(c, 100)
	if limit > 0 && limit < total {
		records = records[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"base_id":  ns.BaseID,
		"table_id": ns.TableID,
		"total":    total,
		"records":  records,
	})
}

func getLimitWithDefault(c *gin.Context, defaultValue int) int {
	var err error
	limit := defaultValue
	if c.Query("limit") != "" {
		limit, err = strconv.Atoi(c.Query("limit"))
		if err != nil {
			log.Printf("failed to parse limit: %v, using default value: %d", err, defaultValue)
			return defaultValue
		}
	}
	return limit
}
