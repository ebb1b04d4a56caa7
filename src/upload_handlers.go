package main

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"planngo/src/middlewares"
	"planngo/src/types"
	"strings"

	awslib "planngo/src/lib/aws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func uploadImage(ctx *gin.Context, prefix string) {
	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if header.Size > maxUploadSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 5MB limit"})
		return
	}
	ext := strings.ToLower(path.Ext(header.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file type %s is not allowed", ext)})
		return
	}
	file, err := header.Open()
	if err != nil {
		log.Printf("Could not open uploaded file: %s\n", err.Error())
		ctx.Status(http.StatusBadRequest)
		return
	}
	defer file.Close()
	name := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
	url, err := awslib.S3UploadAsset(name, file, contentType)
	if err != nil {
		log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not upload file"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"file_path": name, "file_url": *url})
}

func uploadHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/upload/event-image", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			uploadImage(ctx, "events")
		}).
		POST("/upload/profile-image", func(ctx *gin.Context) {
			uploadImage(ctx, "profiles")
		}).
		DELETE("/upload", func(ctx *gin.Context) {
			var query struct {
				FilePath string `form:"file_path" binding:"required"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := awslib.S3DeleteAsset(query.FilePath); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not delete file"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
		})
	return g
}
