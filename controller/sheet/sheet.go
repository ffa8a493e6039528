package sheet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"progressboard/dto"
	"progressboard/model"
	"progressboard/services"
)

func SheetController(router *gin.Engine, relay *services.RelayService) {
	router.GET("/api/sheet-config", func(c *gin.Context) {
		GetSheetConfig(c, relay)
	})
	router.POST("/api/save-sheet-info", func(c *gin.Context) {
		SaveSheetInfo(c, relay)
	})
}

func GetSheetConfig(c *gin.Context, relay *services.RelayService) {
	cfg, err := relay.SheetConfig(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.SheetConfigResponse{
			Success: false,
			Message: "Failed to read sheet configuration",
			Error:   err.Error(),
		})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusOK, dto.SheetConfigResponse{
			Success: false,
			Message: "No sheet configuration found",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SheetConfigResponse{Success: true, Config: cfg})
}

// SaveSheetInfo replaces the config log with allLogs when it is sent, and
// appends a new entry otherwise.
func SaveSheetInfo(c *gin.Context, relay *services.RelayService) {
	var req dto.SaveSheetInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.FileResponse{Success: false, Message: "Invalid input", Error: err.Error()})
		return
	}

	cfg := model.WebhookConfig{SheetURL: req.SheetURL, SheetName: req.SheetName}
	path, err := relay.SaveSheetInfo(c.Request.Context(), cfg, req.AllLogs)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, dto.FileResponse{Success: false, Message: "Invalid input", Error: ve.Message})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.FileResponse{
			Success: false,
			Message: "Failed to save sheet information",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.FileResponse{
		Success:  true,
		Message:  "Sheet information saved successfully",
		FilePath: path,
	})
}
