package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/storage"
)

func parseUintParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return 0
	}
	return uint(id)
}

func parseIntParam(c *gin.Context, param string) (int, bool) {
	idStr := c.Param(param)
	value, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return 0, false
	}
	return value, true
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// readUploadFile buffers one multipart file field, honoring the upload cap.
// A nil return means the response has already been written.
func readUploadFile(c *gin.Context, field string) (string, []byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return "", nil, false
	}
	if fileHeader.Size > storage.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File too large",
		})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid file upload",
			Details: err.Error(),
		})
		return "", nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Reading file upload failed",
			Details: err.Error(),
		})
		return "", nil, false
	}
	if len(payload) > storage.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File too large",
		})
		return "", nil, false
	}
	return fileHeader.Filename, payload, true
}

// readUploadText buffers a text file field used by the import endpoints.
func readUploadText(c *gin.Context, field string) (string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid file upload",
			Details: err.Error(),
		})
		return "", false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Reading file upload failed",
			Details: err.Error(),
		})
		return "", false
	}
	return string(content), true
}
