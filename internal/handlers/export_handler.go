package handlers

import (
	"net/http"

	"todo-tracker-api/internal/database"
	"todo-tracker-api/internal/export"
	"todo-tracker-api/internal/middleware"
	"todo-tracker-api/internal/resolver"

	"github.com/gin-gonic/gin"
)

// ExportHandler serves the /api/export endpoints: task dumps in three
// formats, plus the destructive JSON import.
type ExportHandler struct {
	Resolver *resolver.Resolver
}

func (h *ExportHandler) document(c *gin.Context) (*export.Document, bool) {
	tasks, err := h.Resolver.List(parseFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return nil, false
	}
	return export.NewDocument(tasks), true
}

// Text handles GET /api/export/txt.
func (h *ExportHandler) Text(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", doc.Text())
}

// CSV handles GET /api/export/csv.
func (h *ExportHandler) CSV(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	data, err := doc.CSV()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build CSV"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// JSON handles GET /api/export/json.
func (h *ExportHandler) JSON(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	data, err := doc.JSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build JSON"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// Import handles POST /api/export/import. Only password (admin) sessions may
// run it: the import wipes and replaces the whole task dataset.
func (h *ExportHandler) Import(c *gin.Context) {
	if !middleware.IsAdminSession(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Import requires administrator access"})
		return
	}

	var doc export.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import document"})
		return
	}
	if err := doc.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := export.Import(database.GetDB(), &doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed, previous data kept"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": len(doc.Tasks)})
}
