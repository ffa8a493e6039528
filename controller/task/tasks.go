package task

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"progressboard/dto"
	"progressboard/services"
)

func TaskController(router *gin.Engine, relay *services.RelayService) {
	api := router.Group("/api")
	api.GET("/tasks", func(c *gin.Context) {
		GetTasks(c, relay)
	})
	api.POST("/refresh-data", func(c *gin.Context) {
		RefreshData(c, relay)
	})
	api.POST("/fetch-and-save-sheet-data", func(c *gin.Context) {
		FetchAndSaveSheetData(c, relay)
	})
	api.POST("/save-sheet-data", func(c *gin.Context) {
		SaveSheetData(c, relay)
	})
}

func GetTasks(c *gin.Context, relay *services.RelayService) {
	snap, err := relay.Tasks(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.TasksResponse{
			Success: false,
			Message: "Error reading tasks data",
			Error:   err.Error(),
			Data:    []json.RawMessage{},
		})
		return
	}
	if snap == nil {
		c.JSON(http.StatusOK, dto.TasksResponse{
			Success: true,
			Data:    []json.RawMessage{},
			Message: "No data file found, returning empty array",
		})
		return
	}

	c.JSON(http.StatusOK, dto.TasksResponse{
		Success:  true,
		Data:     snap.Data,
		Count:    len(snap.Data),
		SaveTime: snap.SaveTime,
	})
}

func RefreshData(c *gin.Context, relay *services.RelayService) {
	res, err := relay.Refresh(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.RefreshResponse{
			Success: false,
			Message: "Error refreshing data",
			Error:   err.Error(),
			Data:    []json.RawMessage{},
		})
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Success:   true,
		Message:   "Data refreshed successfully",
		Data:      res.Rows,
		SaveTime:  res.SaveTime,
		Timestamp: res.Timestamp.Format(time.RFC3339Nano),
	})
}

func FetchAndSaveSheetData(c *gin.Context, relay *services.RelayService) {
	var req dto.FetchSheetDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.FetchSheetDataResponse{
			Success: false,
			Message: "Invalid input",
			Error:   "sheet_url and sheet_name are required",
		})
		return
	}

	res, err := relay.FetchAndSave(c.Request.Context(), req.Config())
	if err != nil {
		c.Error(err)
		resp := dto.FetchSheetDataResponse{
			Success: false,
			Message: "Error fetching and saving sheet data",
			Error:   err.Error(),
			Details: &dto.ErrDetails{ErrorType: "Error", OriginalError: err.Error()},
		}
		var fe *services.FetchError
		if errors.As(err, &fe) {
			resp.Details = &dto.ErrDetails{ErrorType: fe.Type(), OriginalError: fe.OriginalError()}
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, dto.FetchSheetDataResponse{
		Success:   true,
		Message:   "Sheet data fetched and saved successfully",
		FilePath:  res.FilePath,
		DataCount: len(res.Rows),
	})
}

func SaveSheetData(c *gin.Context, relay *services.RelayService) {
	var req dto.SaveSheetDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.FileResponse{Success: false, Message: "Invalid input", Error: err.Error()})
		return
	}

	path, err := relay.SaveSheetData(req.SheetData)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.FileResponse{
			Success: false,
			Message: "Error saving sheet data",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.FileResponse{
		Success:  true,
		Message:  "Sheet data saved successfully",
		FilePath: path,
	})
}
