package main

import (
	"errors"
	"log"
	"net/http"
	"planngo/src/db"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func guestVenueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/venues", func(ctx *gin.Context) {
			venues := make([]models.Venue, 0)
			db := db.GetDb()
			if err := db.
				Order("venue_name asc").
				Find(&venues).Error; err != nil {
				log.Printf("Error retrieving Venues: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": venues})
		}).
		GET("/venues/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var venue models.Venue
			db := db.GetDb()
			if err := db.
				Where(&models.Venue{ID: params.ID}).
				First(&venue).
				Error; err != nil {
				log.Printf("Error retrieving Venue [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": venue})
		})
	return g
}

func venueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/venues", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var body types.CreateVenueRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			venue := models.Venue{
				VenueName:     body.VenueName,
				Location:      body.Location,
				Capacity:      body.Capacity,
				IsAvailable:   body.IsAvailable,
				GoogleMapsURL: body.GoogleMapsURL,
				Address:       body.Address,
				City:          body.City,
				State:         body.State,
				Country:       body.Country,
				PostalCode:    body.PostalCode,
				ContactPhone:  body.ContactPhone,
				ContactEmail:  body.ContactEmail,
				Description:   body.Description,
				Amenities:     body.Amenities,
			}
			db := db.GetDb()
			if err := db.Create(&venue).Error; err != nil {
				log.Printf("Error creating Venue: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": venue})
		}).
		PUT("/venues/:id", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateVenueRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var venue models.Venue
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where(&models.Venue{ID: params.ID}).First(&venue).Error; err != nil {
					return err
				}
				return tx.Model(&venue).Updates(map[string]any{
					"venue_name":      body.VenueName,
					"location":        body.Location,
					"capacity":        body.Capacity,
					"is_available":    body.IsAvailable,
					"google_maps_url": body.GoogleMapsURL,
					"address":         body.Address,
					"city":            body.City,
					"state":           body.State,
					"country":         body.Country,
					"postal_code":     body.PostalCode,
					"contact_phone":   body.ContactPhone,
					"contact_email":   body.ContactEmail,
					"description":     body.Description,
					"amenities":       body.Amenities,
				}).Error
			})
			if err != nil {
				log.Printf("Error updating Venue [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": venue})
		}).
		DELETE("/venues/:id", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var venue models.Venue
				if err := tx.Where(&models.Venue{ID: params.ID}).First(&venue).Error; err != nil {
					return err
				}
				var upcoming int64
				if err := tx.
					Model(&models.Event{}).
					Where("venue_id = ? AND end_date > now()", venue.ID).
					Count(&upcoming).
					Error; err != nil {
					return err
				}
				if upcoming > 0 {
					return errors.New("cannot delete a venue with upcoming events")
				}
				return tx.Delete(&venue).Error
			})
			if err != nil {
				log.Printf("Error deleting Venue [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
