package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/registers"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

func serveAttachment(c *gin.Context, filename string, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func registerExportCacheKey(register string) string {
	return "registers:export:" + register
}

// handleRegisterDownload renders a register as the same XML document the
// upload endpoints accept. Renders are cached until the next committed
// upload of the same register.
func handleRegisterDownload(c *gin.Context, register string, export func(context.Context) ([]byte, error)) {
	filename := register + ".xml"

	var cached []byte
	if hit, err := config.GetRedisObject(registerExportCacheKey(register), &cached); err == nil && hit {
		serveAttachment(c, filename, "application/xml", cached)
		return
	}

	data, err := export(c.Request.Context())
	if err != nil {
		config.LogError(config.GetLogger(), "main", "handleRegisterDownload", "export "+register, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export register"})
		return
	}
	if err := config.SetRedisObject(registerExportCacheKey(register), data, 10*time.Minute); err != nil {
		config.LogError(config.GetLogger(), "main", "handleRegisterDownload", "cache export "+register, nil, err)
	}
	serveAttachment(c, filename, "application/xml", data)
}

func downloadDiagnosesHandler(c *gin.Context) {
	handleRegisterDownload(c, "diagnoses", registers.ExportDiagnosesXML)
}

func downloadLocationsHandler(c *gin.Context) {
	handleRegisterDownload(c, "locations", registers.ExportLocationsXML)
}

func downloadHealthFacilitiesHandler(c *gin.Context) {
	handleRegisterDownload(c, "health_facilities", registers.ExportHealthFacilitiesXML)
}

func downloadItemsHandler(c *gin.Context) {
	handleRegisterDownload(c, "items", registers.ExportItemsXML)
}

func downloadServicesHandler(c *gin.Context) {
	handleRegisterDownload(c, "services", registers.ExportServicesXML)
}

func handleTabularExport(c *gin.Context, name string, export func(context.Context, string) ([]byte, string, error)) {
	format := strings.ToLower(c.DefaultQuery("file_format", registers.FormatCSV))
	if !registers.IsSupportedFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format '" + format + "'"})
		return
	}
	data, contentType, err := export(c.Request.Context(), format)
	if err != nil {
		config.LogError(config.GetLogger(), "main", "handleTabularExport", "export "+name, format, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export " + name})
		return
	}
	serveAttachment(c, name+"."+format, contentType, data)
}

func exportItemsHandler(c *gin.Context) {
	handleTabularExport(c, "items", registers.ExportItems)
}

func exportServicesHandler(c *gin.Context) {
	handleTabularExport(c, "services", registers.ExportServices)
}

func handleTabularImport(c *gin.Context, name string, importFn func(context.Context, int, io.Reader, string) (*registers.UploadResult, error)) {
	if config.RegisterUploadsDisabled() {
		c.JSON(http.StatusForbidden, gin.H{"error": "register uploads are disabled"})
		return
	}
	auditUserId, ok := utils.GetAuditUserIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user is not authenticated"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	result, err := importFn(c.Request.Context(), auditUserId, file, contentType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file could not be parsed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result.Response())
}

func importItemsHandler(c *gin.Context) {
	handleTabularImport(c, "items", registers.ImportItems)
}

func importServicesHandler(c *gin.Context) {
	handleTabularImport(c, "services", registers.ImportServices)
}

func downloadMasterDataHandler(c *gin.Context) {
	auditUserId, _ := utils.GetAuditUserIdFromContext(c.Request.Context())
	filename, data, err := registers.CreateMasterDataExport(c.Request.Context(), auditUserId)
	if err != nil {
		config.LogError(config.GetLogger(), "main", "downloadMasterDataHandler", "create extract", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create master data extract"})
		return
	}
	serveAttachment(c, filename, "application/zip", data)
}

func officerFromQuery(c *gin.Context) (*models.Officer, bool) {
	code := strings.TrimSpace(c.Query("officer"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "officer is required"})
		return nil, false
	}
	officer, err := models.GetOfficerByCode(c.Request.Context(), code)
	if err != nil {
		config.LogError(config.GetLogger(), "main", "officerFromQuery", "fetch officer", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch officer"})
		return nil, false
	}
	if officer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Officer '" + code + "' does not exist"})
		return nil, false
	}
	return officer, true
}

func downloadOfficerFeedbacksHandler(c *gin.Context) {
	officer, ok := officerFromQuery(c)
	if !ok {
		return
	}
	auditUserId, _ := utils.GetAuditUserIdFromContext(c.Request.Context())
	filename, data, err := registers.CreateOfficerFeedbacksExport(c.Request.Context(), auditUserId, *officer)
	if err != nil {
		config.LogError(config.GetLogger(), "main", "downloadOfficerFeedbacksHandler", "create extract", officer.Code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create feedbacks extract"})
		return
	}
	serveAttachment(c, filename, "application/zip", data)
}

func downloadOfficerRenewalsHandler(c *gin.Context) {
	officer, ok := officerFromQuery(c)
	if !ok {
		return
	}
	auditUserId, _ := utils.GetAuditUserIdFromContext(c.Request.Context())
	filename, data, err := registers.CreateOfficerRenewalsExport(c.Request.Context(), auditUserId, *officer)
	if err != nil {
		config.LogError(config.GetLogger(), "main", "downloadOfficerRenewalsHandler", "create extract", officer.Code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create renewals extract"})
		return
	}
	serveAttachment(c, filename, "application/zip", data)
}

func handleArchiveIntake(c *gin.Context, intake func(context.Context, int, []byte) error) {
	auditUserId, ok := utils.GetAuditUserIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user is not authenticated"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	if err := intake(c.Request.Context(), auditUserId, data); err != nil {
		if errors.Is(err, utils.ErrorInvalidArchive) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "archive file is invalid"})
			return
		}
		config.LogError(config.GetLogger(), "main", "handleArchiveIntake", "process archive", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process archive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func uploadEnrollmentsHandler(c *gin.Context) {
	handleArchiveIntake(c, registers.UploadEnrollments)
}

func uploadRenewalsHandler(c *gin.Context) {
	handleArchiveIntake(c, registers.UploadRenewals)
}

func uploadFeedbacksHandler(c *gin.Context) {
	handleArchiveIntake(c, registers.UploadFeedbacks)
}
