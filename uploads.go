package main

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/registers"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

// requireRights loads the authenticated user and rejects the request unless
// the user holds at least one of the given right codes.
func requireRights(rights []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user is not authenticated"})
			return
		}
		user, err := models.GetUserById(c.Request.Context(), userId)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(config.GetLogger(), "main", "requireRights", "fetch user", userId, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not verify permissions"})
			return
		}
		if user == nil || !user.HasAnyRight(rights) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user is not allowed to access this resource"})
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context()); !ok || !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user is not allowed to access this resource"})
			return
		}
		c.Next()
	}
}

func parseDryRun(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

type uploadFunc func(c *gin.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*registers.UploadResult, error)

// handleRegisterUpload implements the shared flow of every register upload
// endpoint: feature gate, multipart parsing, strategy validation, a
// best-effort distributed lock, the upload itself and the completion event.
func handleRegisterUpload(c *gin.Context, register string, upload uploadFunc) {
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
	strategy := c.PostForm("strategy")
	if strategy == "" {
		strategy = registers.StrategyInsert
	}
	if !registers.IsValidStrategy(strategy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown strategy '" + strategy + "'"})
		return
	}
	dryRun := parseDryRun(c.PostForm("dry_run"))

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	// Serialize concurrent uploads of the same register when Redis is
	// around. Without Redis the upload proceeds unguarded.
	if lockClient := config.GetRedisLock(); lockClient != nil && !dryRun {
		lock, lockErr := lockClient.Obtain(c.Request.Context(), "registers:upload:"+register, 5*time.Minute, nil)
		if lockErr == redislock.ErrNotObtained {
			c.JSON(http.StatusConflict, gin.H{"error": "another upload for this register is in progress"})
			return
		}
		if lockErr == nil {
			defer lock.Release(c.Request.Context())
		}
	}

	result, err := upload(c, auditUserId, file, strategy, dryRun)
	if errors.Is(err, utils.ErrorInvalidXML) {
		c.JSON(http.StatusOK, registers.UploadResponse{
			Success: false,
			Errors:  []string{"Malformed XML"},
		})
		return
	}
	if err != nil {
		config.LogError(config.GetLogger(), "main", "handleRegisterUpload", "upload "+register, fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process upload"})
		return
	}

	if !dryRun {
		if err := config.DeleteRedisKey(registerExportCacheKey(register)); err != nil {
			config.LogError(config.GetLogger(), "main", "handleRegisterUpload", "invalidate export cache", register, err)
		}
		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.PublishRegisterEvent(c.Request.Context(), config.RegisterEventMessage{
			Register:      register,
			Strategy:      strategy,
			Sent:          result.Sent,
			Created:       result.Created,
			Updated:       result.Updated,
			Deleted:       result.Deleted,
			ErrorCount:    len(result.Errors),
			AuditUserId:   auditUserId,
			CompletedAt:   time.Now().UTC(),
			CorrelationId: correlationId,
		})
	}

	c.JSON(http.StatusOK, result.Response())
}

func uploadDiagnosesHandler(c *gin.Context) {
	handleRegisterUpload(c, "diagnoses", func(c *gin.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*registers.UploadResult, error) {
		return registers.UploadDiagnoses(c.Request.Context(), auditUserId, file, strategy, dryRun)
	})
}

func uploadLocationsHandler(c *gin.Context) {
	handleRegisterUpload(c, "locations", func(c *gin.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*registers.UploadResult, error) {
		return registers.UploadLocations(c.Request.Context(), auditUserId, file, strategy, dryRun)
	})
}

func uploadHealthFacilitiesHandler(c *gin.Context) {
	handleRegisterUpload(c, "health_facilities", func(c *gin.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*registers.UploadResult, error) {
		return registers.UploadHealthFacilities(c.Request.Context(), auditUserId, file, strategy, dryRun)
	})
}

func uploadItemsHandler(c *gin.Context) {
	handleRegisterUpload(c, "items", func(c *gin.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*registers.UploadResult, error) {
		return registers.UploadItems(c.Request.Context(), auditUserId, file, strategy, dryRun)
	})
}

func uploadServicesHandler(c *gin.Context) {
	handleRegisterUpload(c, "services", func(c *gin.Context, auditUserId int, file io.Reader, strategy string, dryRun bool) (*registers.UploadResult, error) {
		return registers.UploadServices(c.Request.Context(), auditUserId, file, strategy, dryRun)
	})
}
