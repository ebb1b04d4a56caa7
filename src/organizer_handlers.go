package main

import (
	"errors"
	"log"
	"net/http"
	"planngo/src/db"
	"planngo/src/lib/mailer"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type eventStats struct {
	EventID     uint    `json:"event_id"`
	Title       string  `json:"title"`
	TicketsSold uint    `json:"tickets_sold"`
	Revenue     float64 `json:"revenue"`
	IsApproved  bool    `json:"is_approved"`
}

type monthlyRevenue struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	EventCount int64   `json:"event_count"`
}

func organizerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/organizers", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			organizers := make([]models.Organizer, 0)
			db := db.GetDb()
			if err := db.
				Preload("User").
				Find(&organizers).Error; err != nil {
				log.Printf("Error retrieving Organizers: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": organizers})
		}).
		GET("/organizers/profile", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			organizerId := ctx.GetUint("organizerId")
			var organizer models.Organizer
			db := db.GetDb()
			if err := db.
				Where(&models.Organizer{ID: organizerId}).
				Preload("User").
				First(&organizer).
				Error; err != nil {
				log.Printf("Error retrieving Organizer [%d]: %s\n", organizerId, err.Error())
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": organizer})
		}).
		PUT("/organizers/profile", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			var body types.UpdateOrganizerProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerId := ctx.GetUint("organizerId")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var organizer models.Organizer
				if err := tx.Where(&models.Organizer{ID: organizerId}).First(&organizer).Error; err != nil {
					return err
				}
				if err := tx.
					Model(&organizer).
					Updates(map[string]any{"bio": body.Bio, "organization": body.Organization}).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&models.User{}).
					Where("id = ?", organizer.UserID).
					Updates(&models.User{Phone: body.Phone, Address: body.Address}).
					Error
			})
			if err != nil {
				log.Printf("Error updating Organizer [%d]: %s\n", organizerId, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/organizers/approve", middlewares.RequireRoles(types.ROLE_ADMIN), func(ctx *gin.Context) {
			var body types.ApproveOrganizerRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var organizer models.Organizer
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Organizer{ID: body.OrganizerID}).
					Preload("User").
					First(&organizer).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&organizer).
					Update("is_verified", body.IsApproved).
					Error
			})
			if err != nil {
				log.Printf("Error approving Organizer [%d]: %s\n", body.OrganizerID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			message := "Organizer rejected"
			if body.IsApproved {
				message = "Organizer approved"
				mailer.SendOrganizerApproval(organizer.User.Email, organizer.User.Name)
			}
			ctx.JSON(http.StatusOK, gin.H{"message": message})
		}).
		GET("/organizers/dashboard", middlewares.RequireRoles(types.ROLE_ORGANIZER), func(ctx *gin.Context) {
			organizerId := ctx.GetUint("organizerId")
			db := db.GetDb()

			var events []models.Event
			if err := db.
				Where(&models.Event{OrganizerID: organizerId}).
				Find(&events).Error; err != nil {
				log.Printf("Error retrieving Events for Organizer [%d]: %s\n", organizerId, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			type perEvent struct {
				EventID     uint
				TicketsSold uint
				Revenue     float64
			}
			var sold []perEvent
			if err := db.
				Model(&models.Ticket{}).
				Select("tickets.event_id as event_id, COALESCE(SUM(tickets.count), 0) as tickets_sold, COALESCE(SUM(tickets.price * tickets.count), 0) as revenue").
				Joins("JOIN events ON events.id = tickets.event_id").
				Where("events.organizer_id = ? AND tickets.status = ?", organizerId, models.TICKET_CONFIRMED).
				Group("tickets.event_id").
				Scan(&sold).Error; err != nil {
				log.Printf("Error aggregating ticket sales for Organizer [%d]: %s\n", organizerId, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			byEvent := make(map[uint]perEvent, len(sold))
			for _, s := range sold {
				byEvent[s.EventID] = s
			}

			var totalRevenue float64
			var totalTicketsSold uint
			approvedEvents := 0
			stats := make([]eventStats, 0, len(events))
			for _, e := range events {
				s := byEvent[e.ID]
				totalRevenue += s.Revenue
				totalTicketsSold += s.TicketsSold
				if e.IsApproved {
					approvedEvents++
				}
				stats = append(stats, eventStats{
					EventID:     e.ID,
					Title:       e.Title,
					TicketsSold: s.TicketsSold,
					Revenue:     s.Revenue,
					IsApproved:  e.IsApproved,
				})
			}

			monthly := make([]monthlyRevenue, 0)
			if err := db.
				Model(&models.Ticket{}).
				Select("to_char(tickets.created_at, 'YYYY-MM') as month, COALESCE(SUM(tickets.price * tickets.count), 0) as revenue, COUNT(DISTINCT tickets.event_id) as event_count").
				Joins("JOIN events ON events.id = tickets.event_id").
				Where("events.organizer_id = ? AND tickets.status = ?", organizerId, models.TICKET_CONFIRMED).
				Group("to_char(tickets.created_at, 'YYYY-MM')").
				Order("month asc").
				Scan(&monthly).Error; err != nil {
				log.Printf("Error aggregating monthly revenue for Organizer [%d]: %s\n", organizerId, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			// Revenue on the profile tracks confirmed sales.
			if err := db.
				Model(&models.Organizer{}).
				Where("id = ?", organizerId).
				Update("revenue", totalRevenue).Error; err != nil {
				log.Printf("Error updating revenue for Organizer [%d]: %s\n", organizerId, err.Error())
			}

			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"total_events":       len(events),
				"approved_events":    approvedEvents,
				"pending_events":     len(events) - approvedEvents,
				"total_revenue":      totalRevenue,
				"total_tickets_sold": totalTicketsSold,
				"event_stats":        stats,
				"monthly_revenue":    monthly,
			}})
		}).
		GET("/organizers/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var organizer models.Organizer
			db := db.GetDb()
			if err := db.
				Where(&models.Organizer{ID: params.ID}).
				Preload("User").
				First(&organizer).
				Error; err != nil {
				log.Printf("Error retrieving Organizer [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": organizer})
		})
	return g
}
