package main

import (
	"errors"
	"log"
	"net/http"
	"planngo/src/db"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func clientHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/clients", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			clients := make([]models.Client, 0)
			db := db.GetDb()
			if err := db.
				Preload("User").
				Find(&clients).Error; err != nil {
				log.Printf("Error retrieving Clients: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": clients})
		}).
		GET("/clients/profile", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			clientId := ctx.GetUint("clientId")
			var client models.Client
			db := db.GetDb()
			if err := db.
				Where(&models.Client{ID: clientId}).
				Preload("User").
				First(&client).
				Error; err != nil {
				log.Printf("Error retrieving Client [%d]: %s\n", clientId, err.Error())
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": client})
		}).
		PUT("/clients/profile", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			var body types.UpdateClientProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var dob *time.Time
			if body.Dob != nil {
				parsed, err := time.Parse("2006-01-02", *body.Dob)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				dob = &parsed
			}
			clientId := ctx.GetUint("clientId")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var client models.Client
				if err := tx.Where(&models.Client{ID: clientId}).First(&client).Error; err != nil {
					return err
				}
				updates := map[string]any{}
				if dob != nil {
					updates["dob"] = dob
				}
				if body.Gender != nil {
					updates["gender"] = body.Gender
				}
				if body.Bio != nil {
					updates["bio"] = body.Bio
				}
				if len(updates) > 0 {
					if err := tx.Model(&client).Updates(updates).Error; err != nil {
						return err
					}
				}
				if body.Phone != nil {
					return tx.
						Model(&models.User{}).
						Where("id = ?", client.UserID).
						Update("phone", body.Phone).
						Error
				}
				return nil
			})
			if err != nil {
				log.Printf("Error updating Client [%d]: %s\n", clientId, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/clients/:id", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var client models.Client
			db := db.GetDb()
			if err := db.
				Where(&models.Client{ID: params.ID}).
				Preload("User").
				First(&client).
				Error; err != nil {
				log.Printf("Error retrieving Client [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": client})
		}).
		DELETE("/clients/:id", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var client models.Client
				if err := tx.Where(&models.Client{ID: params.ID}).First(&client).Error; err != nil {
					return err
				}
				var active int64
				if err := tx.
					Model(&models.Ticket{}).
					Where("client_id = ? AND status <> ?", client.ID, models.TICKET_CANCELLED).
					Count(&active).
					Error; err != nil {
					return err
				}
				if active > 0 {
					return errors.New("cannot delete a client with active bookings")
				}
				if err := tx.Delete(&client).Error; err != nil {
					return err
				}
				return tx.Delete(&models.User{}, client.UserID).Error
			})
			if err != nil {
				log.Printf("Error deleting Client [%d]: %s\n", params.ID, err.Error())
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
