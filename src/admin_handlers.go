package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"planngo/src/db"
	"planngo/src/lib"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

const adminDashboardCacheKey = "admin:dashboard"

type categoryStats struct {
	Category   string  `json:"category"`
	EventCount int64   `json:"event_count"`
	Revenue    float64 `json:"revenue"`
}

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/admin")
	admin.Use(middlewares.RequireRoles(types.ROLE_ADMIN))
	admin.
		GET("/dashboard", func(ctx *gin.Context) {
			rd := lib.GetRedisClient()
			if rd != nil {
				val, err := rd.Get(context.Background(), adminDashboardCacheKey).Result()
				if err == nil && gjson.Valid(val) {
					var cached map[string]any
					if err := json.Unmarshal([]byte(val), &cached); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": cached})
						return
					}
				}
			}

			db := db.GetDb()
			var totalUsers, totalClients, totalOrganizers int64
			var totalEvents, approvedEvents int64
			db.Model(&models.User{}).Count(&totalUsers)
			db.Model(&models.Client{}).Count(&totalClients)
			db.Model(&models.Organizer{}).Count(&totalOrganizers)
			db.Model(&models.Event{}).Count(&totalEvents)
			db.Model(&models.Event{}).Where("is_approved = ?", true).Count(&approvedEvents)

			var totals struct {
				Revenue     float64
				TicketsSold uint
			}
			if err := db.
				Model(&models.Ticket{}).
				Select("COALESCE(SUM(price * count), 0) as revenue, COALESCE(SUM(count), 0) as tickets_sold").
				Where("status = ?", models.TICKET_CONFIRMED).
				Scan(&totals).Error; err != nil {
				log.Printf("Error aggregating platform revenue: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			categories := make([]categoryStats, 0)
			if err := db.
				Model(&models.Event{}).
				Select("events.category as category, COUNT(DISTINCT events.id) as event_count, COALESCE(SUM(CASE WHEN tickets.status = ? THEN tickets.price * tickets.count ELSE 0 END), 0) as revenue", models.TICKET_CONFIRMED).
				Joins("LEFT JOIN tickets ON tickets.event_id = events.id").
				Group("events.category").
				Scan(&categories).Error; err != nil {
				log.Printf("Error aggregating category stats: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			monthly := make([]monthlyRevenue, 0)
			if err := db.
				Model(&models.Ticket{}).
				Select("to_char(created_at, 'YYYY-MM') as month, COALESCE(SUM(price * count), 0) as revenue, COUNT(DISTINCT event_id) as event_count").
				Where("status = ?", models.TICKET_CONFIRMED).
				Group("to_char(created_at, 'YYYY-MM')").
				Order("month asc").
				Scan(&monthly).Error; err != nil {
				log.Printf("Error aggregating monthly revenue: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			dashboard := gin.H{
				"total_users":        totalUsers,
				"total_clients":      totalClients,
				"total_organizers":   totalOrganizers,
				"total_events":       totalEvents,
				"approved_events":    approvedEvents,
				"pending_events":     totalEvents - approvedEvents,
				"total_revenue":      totals.Revenue,
				"total_tickets_sold": totals.TicketsSold,
				"category_stats":     categories,
				"monthly_revenue":    monthly,
			}
			if rd != nil {
				if raw, err := json.Marshal(dashboard); err == nil {
					rd.SetEx(context.Background(), adminDashboardCacheKey, string(raw), time.Minute)
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": dashboard})
		}).
		GET("/users", func(ctx *gin.Context) {
			users := make([]models.User, 0)
			db := db.GetDb()
			if err := db.
				Order("name asc").
				Find(&users).Error; err != nil {
				log.Printf("Error retrieving Users: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users})
		}).
		GET("/pending-organizers", func(ctx *gin.Context) {
			organizers := make([]models.Organizer, 0)
			db := db.GetDb()
			if err := db.
				Where("is_verified = ?", false).
				Preload("User").
				Find(&organizers).Error; err != nil {
				log.Printf("Error retrieving pending Organizers: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": organizers})
		}).
		GET("/pending-events", func(ctx *gin.Context) {
			events := make([]models.Event, 0)
			db := db.GetDb()
			if err := db.
				Where("is_approved = ?", false).
				Preload("Venue").
				Preload("Organizer").
				Preload("Organizer.User").
				Order("start_date asc").
				Find(&events).Error; err != nil {
				log.Printf("Error retrieving pending Events: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events})
		}).
		DELETE("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var user models.User
				if err := tx.Where(&models.User{ID: params.ID}).First(&user).Error; err != nil {
					return err
				}
				if types.Role(user.Role) == types.ROLE_ADMIN {
					return errors.New("cannot delete admin users")
				}
				return tx.Delete(&user).Error
			})
			if err != nil {
				log.Printf("Error deleting User [%d]: %s\n", params.ID, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/revenue-summary", func(ctx *gin.Context) {
			db := db.GetDb()

			var totalPlatformRevenue float64
			if err := db.
				Model(&models.Ticket{}).
				Select("COALESCE(SUM(price * count), 0)").
				Where("status = ?", models.TICKET_CONFIRMED).
				Scan(&totalPlatformRevenue).Error; err != nil {
				log.Printf("Error aggregating platform revenue: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			type organizerRevenue struct {
				OrganizerID   uint    `json:"organizer_id"`
				OrganizerName string  `json:"organizer_name"`
				Organization  string  `json:"organization"`
				Revenue       float64 `json:"revenue"`
				EventCount    int64   `json:"event_count"`
				TicketsSold   uint    `json:"tickets_sold"`
			}
			revenues := make([]organizerRevenue, 0)
			if err := db.
				Model(&models.Organizer{}).
				Select(`organizers.id as organizer_id,
					users.name as organizer_name,
					organizers.organization as organization,
					COALESCE(SUM(CASE WHEN tickets.status = ? THEN tickets.price * tickets.count ELSE 0 END), 0) as revenue,
					COUNT(DISTINCT CASE WHEN events.is_approved THEN events.id END) as event_count,
					COALESCE(SUM(CASE WHEN tickets.status = ? THEN tickets.count ELSE 0 END), 0) as tickets_sold`,
					models.TICKET_CONFIRMED, models.TICKET_CONFIRMED).
				Joins("JOIN users ON users.id = organizers.user_id").
				Joins("LEFT JOIN events ON events.organizer_id = organizers.id").
				Joins("LEFT JOIN tickets ON tickets.event_id = events.id").
				Group("organizers.id, users.name, organizers.organization").
				Order("revenue desc").
				Scan(&revenues).Error; err != nil {
				log.Printf("Error aggregating organizer revenues: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"total_platform_revenue": totalPlatformRevenue,
				"organizer_revenues":     revenues,
			}})
		}).
		GET("/system-stats", func(ctx *gin.Context) {
			db := db.GetDb()
			var totalUsers, activeOrganizers, pendingOrganizers int64
			var totalEvents, approvedEvents, totalVenues, availableVenues int64
			db.Model(&models.User{}).Count(&totalUsers)
			db.Model(&models.Organizer{}).Where("is_verified = ?", true).Count(&activeOrganizers)
			db.Model(&models.Organizer{}).Where("is_verified = ?", false).Count(&pendingOrganizers)
			db.Model(&models.Event{}).Count(&totalEvents)
			db.Model(&models.Event{}).Where("is_approved = ?", true).Count(&approvedEvents)
			db.Model(&models.Venue{}).Count(&totalVenues)
			db.Model(&models.Venue{}).Where("is_available = ?", true).Count(&availableVenues)

			var totals struct {
				Revenue     float64
				TicketsSold uint
			}
			if err := db.
				Model(&models.Ticket{}).
				Select("COALESCE(SUM(price * count), 0) as revenue, COALESCE(SUM(count), 0) as tickets_sold").
				Where("status = ?", models.TICKET_CONFIRMED).
				Scan(&totals).Error; err != nil {
				log.Printf("Error aggregating platform totals: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			type categoryCount struct {
				Category string `json:"category"`
				Count    int64  `json:"count"`
			}
			popular := make([]categoryCount, 0)
			if err := db.
				Model(&models.Event{}).
				Select("category, COUNT(*) as count").
				Group("category").
				Order("count desc").
				Limit(5).
				Scan(&popular).Error; err != nil {
				log.Printf("Error aggregating popular categories: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"total_users":        totalUsers,
				"active_organizers":  activeOrganizers,
				"pending_organizers": pendingOrganizers,
				"total_events":       totalEvents,
				"approved_events":    approvedEvents,
				"pending_events":     totalEvents - approvedEvents,
				"total_venues":       totalVenues,
				"available_venues":   availableVenues,
				"total_tickets_sold": totals.TicketsSold,
				"total_revenue":      totals.Revenue,
				"popular_categories": popular,
			}})
		})
	return g
}
