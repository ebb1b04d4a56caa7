package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"planngo/src/common"
	"planngo/src/db"
	"planngo/src/lib"
	"planngo/src/lib/mailer"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"
	"planngo/src/utils"
	"time"

	awslib "planngo/src/lib/aws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickets/book", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			var body types.BookTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			clientId := ctx.GetUint("clientId")
			ticket, err := common.Reserve(body.EventID, clientId, body.Count)
			if err != nil {
				log.Printf("Error booking tickets for Event [%d]: %s\n", body.EventID, err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": ticket})
		}).
		POST("/tickets/:id/confirm-payment", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ConfirmPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.PaymentType == "card" {
				if err := lib.VerifyPaymentReference(body.PaymentReference); err != nil {
					log.Printf("Error verifying payment reference [%s]: %s\n", body.PaymentReference, err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "payment could not be verified"})
					return
				}
			}
			clientId := ctx.GetUint("clientId")
			payment, err := common.ConfirmPayment(params.ID, clientId, body.PaymentType, body.PaymentReference)
			if err != nil {
				log.Printf("Error confirming payment for Ticket [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var ticket models.Ticket
			if err := db.
				Where(&models.Ticket{ID: params.ID}).
				Preload("Event").
				First(&ticket).
				Error; err == nil {
				mailer.SendBookingConfirmation(ctx.GetString("email"), &ticket, &ticket.Event)
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		}).
		POST("/tickets/:id/cancel", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			clientId := ctx.GetUint("clientId")
			if err := common.Cancel(params.ID, clientId); err != nil {
				log.Printf("Error cancelling Ticket [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var ticket models.Ticket
			if err := db.
				Where(&models.Ticket{ID: params.ID}).
				Preload("Event").
				First(&ticket).
				Error; err == nil {
				mailer.SendBookingCancellation(ctx.GetString("email"), &ticket, &ticket.Event)
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": params.ID, "status": models.TICKET_CANCELLED}})
		}).
		GET("/tickets/my", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			clientId := ctx.GetUint("clientId")
			var tickets []models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{ClientID: clientId}).
				Preload("Event").
				Preload("Payment").
				Order("created_at desc").
				Find(&tickets).Error; err != nil {
				log.Printf("Error retrieving Tickets: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		}).
		GET("/tickets/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{ID: params.ID}).
				Preload("Event").
				Preload("Payment").
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving Ticket [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			role := types.Role(ctx.GetString("role"))
			if role != types.ROLE_ADMIN && ticket.ClientID != ctx.GetUint("clientId") {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		GET("/tickets/event/:eventId", func(ctx *gin.Context) {
			var params types.EventTicketsURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{ID: params.EventID}).
				First(&event).
				Error; err != nil {
				log.Printf("Error retrieving Event [%d]: %s\n", params.EventID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			role := types.Role(ctx.GetString("role"))
			if role != types.ROLE_ADMIN && event.OrganizerID != ctx.GetUint("organizerId") {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
				return
			}
			var tickets []models.Ticket
			if err := db.
				Where(&models.Ticket{EventID: params.EventID}).
				Preload("Client").
				Preload("Client.User").
				Order("created_at desc").
				Find(&tickets).Error; err != nil {
				log.Printf("Error retrieving Tickets for Event [%d]: %s\n", params.EventID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets})
		}).
		GET("/tickets/:id/code", middlewares.RequireRoles(types.ROLE_CLIENT), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			clientId := ctx.GetUint("clientId")
			db := db.GetDb()
			var ticket models.Ticket
			if err := db.
				Where(&models.Ticket{ID: params.ID, ClientID: clientId}).
				Preload("Event").
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving Ticket [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			if ticket.Status != models.TICKET_CONFIRMED {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "ticket is not confirmed"})
				return
			}
			if time.Now().After(ticket.Event.EndDate) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "ticket is no longer valid"})
				return
			}

			filename := fmt.Sprintf("ticketcode_%d", ticket.ID)
			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), filename).Result()
				if err != nil {
					if errors.Is(err, redis.Nil) {
						log.Printf("No value for key: %s\n", filename)
					} else {
						log.Printf("Error reading from cache: %s\n", err.Error())
						ctx.Status(http.StatusBadRequest)
						return
					}
				}
				if cached != "" {
					ctx.JSON(http.StatusOK, gin.H{"url": cached})
					return
				}
			}

			rawData := map[string]any{
				"ticketId": ticket.ID,
				"eventId":  ticket.EventID,
				"clientId": ticket.ClientID,
			}
			rawBytes, _ := json.Marshal(rawData)

			keyEnv := os.Getenv("API_QRC_SECRET")
			key, err := hex.DecodeString(keyEnv)
			if err != nil {
				log.Printf("Could not read key from string: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			encryptedMessage, err := utils.EncryptMessage(key, string(rawBytes))
			if err != nil {
				log.Printf("Error encrypting message: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			qrc, err := qrcode.New(encryptedMessage)
			if err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			wd, err := os.Getwd()
			if err != nil {
				log.Printf("Could not read working directory: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filepath := path.Join(wd, tempdir, fmt.Sprintf("%s.jpeg", filename))
			if err = qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			file, err := os.Open(filepath)
			if err != nil {
				log.Printf("Could not open qrcode file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			defer file.Close()
			url, err := awslib.S3UploadAsset(filename, file, "image/jpeg")
			if err != nil {
				log.Printf("Error uploading asset to S3 bucket: %s\n", err.Error())
				ctx.FileAttachment(filepath, "eticket.jpeg")
				return
			}
			if rd != nil {
				// The cache entry must not outlive the presigned URL.
				rd.SetEx(context.Background(), filename, *url, awslib.PresignExpiry)
			}
			ctx.JSON(http.StatusOK, gin.H{"url": *url})
		})
	return g
}
