package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/services"
)

// HandleCatalogImport validates an uploaded CSV or XLSX catalog sheet and,
// when every row is valid, upserts it in one transaction. onImported runs
// after a successful import, e.g. to purge a catalog cache.
// Route: POST /api/catalog/import
func HandleCatalogImport(app core.App, onImported func()) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		validation, err := services.ParseCatalogFile(file, header.Filename)
		if err != nil {
			log.Printf("catalog_import: %v", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		if validation.ErrorRows > 0 {
			return e.JSON(http.StatusUnprocessableEntity, validation)
		}

		result, err := services.ImportCatalog(app, validation.ParsedRows)
		if err != nil {
			log.Printf("catalog_import: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, internalErrorMessage)
		}
		if result.RolledBack {
			return e.JSON(http.StatusUnprocessableEntity, result)
		}

		if onImported != nil {
			onImported()
		}
		SetToast(e, ToastSuccess, fmt.Sprintf("%d created, %d updated", result.Created, result.Updated))
		return e.JSON(http.StatusOK, result)
	}
}
