package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"planngo/src/config"
	"planngo/src/db"
	"planngo/src/lib"
	"planngo/src/lib/mailer"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

const eventsCacheKey = "events:approved"

func invalidateEventsCache() {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), eventsCacheKey).Err(); err != nil {
		log.Printf("[redis] Error invalidating events cache: %s\n", err.Error())
	}
}

// guestEventHandlers covers the unauthenticated browsing surface. Only
// approved events are visible here.
func guestEventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			rd := lib.GetRedisClient()
			if rd != nil {
				val, err := rd.Get(context.Background(), eventsCacheKey).Result()
				if err == nil && gjson.Valid(val) {
					var cached []models.Event
					if err := json.Unmarshal([]byte(val), &cached); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": cached})
						return
					}
				}
			}
			events := make([]models.Event, 0)
			db := db.GetDb()
			if err := db.
				Where("is_approved = ?", true).
				Preload("Venue").
				Order("start_date asc").
				Find(&events).Error; err != nil {
				log.Printf("Error retrieving Events: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			if rd != nil {
				if raw, err := json.Marshal(&events); err == nil {
					rd.SetEx(context.Background(), eventsCacheKey, string(raw), 5*time.Minute)
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			db := db.GetDb()
			if err := db.
				Where("id = ? AND is_approved = ?", params.ID, true).
				Preload("Venue").
				First(&event).
				Error; err != nil {
				log.Printf("Error retrieving Event [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		GET("/events/organizer/:organizerId", func(ctx *gin.Context) {
			var params struct {
				OrganizerID uint `uri:"organizerId" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			events := make([]models.Event, 0)
			db := db.GetDb()
			if err := db.
				Where("organizer_id = ? AND is_approved = ?", params.OrganizerID, true).
				Preload("Venue").
				Order("start_date asc").
				Find(&events).Error; err != nil {
				log.Printf("Error retrieving Events for Organizer [%d]: %s\n", params.OrganizerID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		})
	return g
}

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/events", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerId := ctx.GetUint("organizerId")
			db := db.GetDb()
			var event models.Event
			err = db.Transaction(func(tx *gorm.DB) error {
				var organizer models.Organizer
				if err := tx.Where(&models.Organizer{ID: organizerId}).First(&organizer).Error; err != nil {
					return err
				}
				if !organizer.IsVerified {
					return errors.New("organizer account is not verified")
				}
				var venue models.Venue
				if err := tx.Where(&models.Venue{ID: body.VenueID}).First(&venue).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return errors.New("venue not found")
					}
					return err
				}
				if !venue.IsAvailable {
					return errors.New("venue is not available")
				}
				if body.AvailableTickets > venue.Capacity {
					return fmt.Errorf("ticket allocation exceeds venue capacity of %d", venue.Capacity)
				}
				event = models.Event{
					Title:            body.Title,
					Slug:             slug.Make(body.Title),
					Category:         body.Category,
					EventImage:       body.EventImage,
					Description:      body.Description,
					Location:         venue.Location,
					StartDate:        startDate,
					EndDate:          endDate,
					TicketPrice:      body.TicketPrice,
					AvailableTickets: body.AvailableTickets,
					VenueID:          venue.ID,
					OrganizerID:      organizerId,
				}
				return tx.Create(&event).Error
			})
			if err != nil {
				log.Printf("Error creating Event: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": event})
		}).
		GET("/events/mine", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			organizerId := ctx.GetUint("organizerId")
			events := make([]models.Event, 0)
			db := db.GetDb()
			if err := db.
				Where(&models.Event{OrganizerID: organizerId}).
				Preload("Venue").
				Order("created_at desc").
				Find(&events).Error; err != nil {
				log.Printf("Error retrieving Events: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		PUT("/events/:id", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerId := ctx.GetUint("organizerId")
			db := db.GetDb()
			var event models.Event
			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Event{ID: params.ID, OrganizerID: organizerId}).
					First(&event).
					Error; err != nil {
					return err
				}
				var sold int64
				if err := tx.
					Model(&models.Ticket{}).
					Where("event_id = ? AND status <> ?", event.ID, models.TICKET_CANCELLED).
					Count(&sold).
					Error; err != nil {
					return err
				}
				if sold > 0 {
					return errors.New("cannot modify an event with active bookings")
				}
				return tx.
					Model(&event).
					Updates(&models.Event{
						Title:            body.Title,
						Slug:             slug.Make(body.Title),
						Category:         body.Category,
						EventImage:       body.EventImage,
						Description:      body.Description,
						StartDate:        startDate,
						EndDate:          endDate,
						TicketPrice:      body.TicketPrice,
						AvailableTickets: body.AvailableTickets,
						VenueID:          body.VenueID,
					}).Error
			})
			if err != nil {
				log.Printf("Error updating Event [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			invalidateEventsCache()
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		POST("/events/approve", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var body types.ApproveEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var event models.Event
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Event{ID: body.EventID}).
					Preload("Organizer").
					Preload("Organizer.User").
					First(&event).
					Error; err != nil {
					return err
				}
				updates := map[string]any{"is_approved": body.IsApproved}
				if !body.IsApproved {
					updates["rejection_reason"] = body.RejectionReason
				}
				if err := tx.Model(&event).Updates(updates).Error; err != nil {
					return err
				}
				event.IsApproved = body.IsApproved
				event.RejectionReason = body.RejectionReason
				return nil
			})
			if err != nil {
				log.Printf("Error approving Event [%d]: %s\n", body.EventID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			mailer.SendEventDecision(event.Organizer.User.Email, &event)
			invalidateEventsCache()
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		DELETE("/events/:id", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var event models.Event
				if err := tx.Where(&models.Event{ID: params.ID}).First(&event).Error; err != nil {
					return err
				}
				var active int64
				if err := tx.
					Model(&models.Ticket{}).
					Where("event_id = ? AND status <> ?", event.ID, models.TICKET_CANCELLED).
					Count(&active).
					Error; err != nil {
					return err
				}
				if active > 0 {
					return errors.New("cannot delete an event with active bookings")
				}
				return tx.Delete(&event).Error
			})
			if err != nil {
				log.Printf("Error deleting Event [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			invalidateEventsCache()
			ctx.Status(http.StatusNoContent)
		})
	return g
}
