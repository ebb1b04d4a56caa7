package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"planngo/src/db"
	"planngo/src/middlewares"
	"planngo/src/models"
	"planngo/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB      *gorm.DB
	EventID uint
	Token   string
}

func (s *TestSuite) SetupSuite() {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("REDIS_HOST", "")
	os.Setenv("API_QRC_SECRET", "")
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", eventDateTimeValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not open test database: %s\n", err.Error())
	}
	inner, err := gdb.DB()
	if err != nil {
		log.Fatalf("Error accessing inner db instance: %s\n", err.Error())
	}
	inner.SetMaxOpenConns(1)
	db.NewDB(gdb)
	s.DB = gdb

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Organizer{},
		&models.Venue{},
		&models.Event{},
		&models.Ticket{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	admin := models.User{
		Name:           "Admin User",
		Email:          "admin@planngo.com",
		HashedPassword: string(hashed),
		Role:           string(types.ROLE_ADMIN),
		EmailVerified:  true,
	}
	if err := gdb.Create(&admin).Error; err != nil {
		log.Fatalf("Could not create admin user: %s\n", err.Error())
	}

	orgUser := models.User{Name: "John Smith", Email: "john@events.com", Role: string(types.ROLE_ORGANIZER)}
	if err := gdb.Create(&orgUser).Error; err != nil {
		log.Fatalf("Could not create organizer user: %s\n", err.Error())
	}
	organizer := models.Organizer{UserID: orgUser.ID, Organization: "Elite Events Co.", IsVerified: true}
	if err := gdb.Create(&organizer).Error; err != nil {
		log.Fatalf("Could not create organizer: %s\n", err.Error())
	}

	venue := models.Venue{VenueName: "Tech Hub Auditorium", Location: "Bangalore, Karnataka", Capacity: 500, IsAvailable: true}
	if err := gdb.Create(&venue).Error; err != nil {
		log.Fatalf("Could not create venue: %s\n", err.Error())
	}

	event := models.Event{
		Title:            "Music Festival",
		Category:         "Music",
		Description:      "Live music all weekend",
		Location:         venue.Location,
		StartDate:        time.Now().Add(45 * 24 * time.Hour),
		EndDate:          time.Now().Add(47 * 24 * time.Hour),
		IsApproved:       true,
		TicketPrice:      1500,
		AvailableTickets: 10,
		VenueID:          venue.ID,
		OrganizerID:      organizer.ID,
	}
	if err := gdb.Create(&event).Error; err != nil {
		log.Fatalf("Could not create event: %s\n", err.Error())
	}
	s.EventID = event.ID
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func newTestRouter() *gin.Engine {
	router := setupRouter()
	guestAuthRoutes(router)
	guestRoutes(router)
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	authorized = eventHandlers(authorized)
	authorized = ticketHandlers(authorized)
	authorized = venueHandlers(authorized)
	authorized = clientHandlers(authorized)
	authorized = organizerHandlers(authorized)
	authorized = adminHandlers(authorized)
	return router
}

func jsonRequest(method string, url string, body any, token string) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	}
	req, _ := http.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Setenv("MAINTENANCE_MODE", "false")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAuthFlow() {
	router := newTestRouter()

	s.Run("Should reject registration with a weak password", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/auth/register", map[string]any{
			"name":     "Bob Wilson",
			"email":    "bob@gmail.com",
			"password": "short",
			"role":     "client",
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should register a client and log in", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/auth/register", map[string]any{
			"name":     "Bob Wilson",
			"email":    "bob@gmail.com",
			"password": "client123",
			"role":     "client",
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 201, w.Code)

		w = httptest.NewRecorder()
		req = jsonRequest("POST", "/api/v1/auth/login", map[string]any{
			"email":    "bob@gmail.com",
			"password": "client123",
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		raw, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		token := gjson.Get(string(raw), "token").String()
		assert.NotEmpty(s.T(), token)
		s.Token = token
	})

	s.Run("Should reject login with a wrong password", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/auth/login", map[string]any{
			"email":    "bob@gmail.com",
			"password": "wrong-password",
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject duplicate registration", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/auth/register", map[string]any{
			"name":     "Bob Wilson",
			"email":    "bob@gmail.com",
			"password": "client123",
			"role":     "client",
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestBookingFlow() {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/v1/auth/register", map[string]any{
		"name":     "Alice Brown",
		"email":    "alice@gmail.com",
		"password": "client123",
		"role":     "client",
	}, "")
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 201, w.Code)

	w = httptest.NewRecorder()
	req = jsonRequest("POST", "/api/v1/auth/login", map[string]any{
		"email":    "alice@gmail.com",
		"password": "client123",
	}, "")
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 200, w.Code)
	raw, _ := io.ReadAll(w.Body)
	token := gjson.Get(string(raw), "token").String()
	assert.NotEmpty(s.T(), token)

	var ticketId int64

	s.Run("Should reject booking without a token", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/tickets/book", map[string]any{
			"event_id": s.EventID,
			"count":    2,
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should book tickets with 201 status", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/tickets/book", map[string]any{
			"event_id": s.EventID,
			"count":    2,
		}, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 201, w.Code)

		raw, _ := io.ReadAll(w.Body)
		sjson := string(raw)
		ticketId = gjson.Get(sjson, "data.id").Int()
		assert.Greater(s.T(), ticketId, int64(0))
		assert.Equal(s.T(), "pending", gjson.Get(sjson, "data.status").String())
	})

	s.Run("Should reject booking beyond available inventory", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/tickets/book", map[string]any{
			"event_id": s.EventID,
			"count":    100,
		}, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 409, w.Code)
	})

	s.Run("Should confirm payment with 200 status", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", fmt.Sprintf("/api/v1/tickets/%d/confirm-payment", ticketId), map[string]any{
			"payment_type":      "cash",
			"payment_reference": "cash_0001",
		}, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		raw, _ := io.ReadAll(w.Body)
		sjson := string(raw)
		assert.Equal(s.T(), float64(3000), gjson.Get(sjson, "data.amount").Float())
		assert.Equal(s.T(), "completed", gjson.Get(sjson, "data.status").String())
	})

	s.Run("Should reject a duplicate payment", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", fmt.Sprintf("/api/v1/tickets/%d/confirm-payment", ticketId), map[string]any{
			"payment_type":      "cash",
			"payment_reference": "cash_0002",
		}, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject code generation without a configured key", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", fmt.Sprintf("/api/v1/tickets/%d/code", ticketId), nil, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should list own tickets", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", "/api/v1/tickets/my", nil, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		raw, _ := io.ReadAll(w.Body)
		tickets := gjson.Get(string(raw), "data").Array()
		assert.NotEmpty(s.T(), tickets)
	})

	s.Run("Should cancel the ticket and restore inventory", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", fmt.Sprintf("/api/v1/tickets/%d/cancel", ticketId), nil, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		var event models.Event
		assert.Nil(s.T(), s.DB.First(&event, s.EventID).Error)
		assert.Equal(s.T(), uint(10), event.AvailableTickets)
	})

	s.Run("Should reject a second cancellation", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", fmt.Sprintf("/api/v1/tickets/%d/cancel", ticketId), nil, token)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestGuestEventRoutes() {
	router := newTestRouter()

	s.Run("Should return approved events without a token", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", "/api/v1/events", nil, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		raw, _ := io.ReadAll(w.Body)
		events := gjson.Get(string(raw), "data").Array()
		assert.NotEmpty(s.T(), events)
	})

	s.Run("Should return 404 for an unknown event", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", "/api/v1/events/99999", nil, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 404, w.Code)
	})

	s.Run("Should return venues without a token", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", "/api/v1/venues", nil, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)
	})
}

func (s *TestSuite) TestAdminRoutes() {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/v1/auth/login", map[string]any{
		"email":    "admin@planngo.com",
		"password": "admin123",
	}, "")
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 200, w.Code)
	raw, _ := io.ReadAll(w.Body)
	adminToken := gjson.Get(string(raw), "token").String()
	assert.NotEmpty(s.T(), adminToken)

	s.Run("Should list users for admins", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", "/api/v1/admin/users", nil, adminToken)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		raw, _ := io.ReadAll(w.Body)
		users := gjson.Get(string(raw), "data").Array()
		assert.NotEmpty(s.T(), users)
	})

	s.Run("Should return system stats", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("GET", "/api/v1/admin/system-stats", nil, adminToken)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		raw, _ := io.ReadAll(w.Body)
		sjson := string(raw)
		assert.Greater(s.T(), gjson.Get(sjson, "data.total_users").Int(), int64(0))
		assert.Greater(s.T(), gjson.Get(sjson, "data.total_events").Int(), int64(0))
	})

	s.Run("Should reject booking routes for admins", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/tickets/book", map[string]any{
			"event_id": s.EventID,
			"count":    1,
		}, adminToken)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 403, w.Code)

		w = httptest.NewRecorder()
		req = jsonRequest("GET", "/api/v1/tickets/my", nil, adminToken)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("Should reject admin routes for clients", func() {
		w := httptest.NewRecorder()
		req := jsonRequest("POST", "/api/v1/auth/register", map[string]any{
			"name":     "Carol Davis",
			"email":    "carol@gmail.com",
			"password": "client123",
			"role":     "client",
		}, "")
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 201, w.Code)

		w = httptest.NewRecorder()
		req = jsonRequest("POST", "/api/v1/auth/login", map[string]any{
			"email":    "carol@gmail.com",
			"password": "client123",
		}, "")
		router.ServeHTTP(w, req)
		raw, _ := io.ReadAll(w.Body)
		clientToken := gjson.Get(string(raw), "token").String()

		w = httptest.NewRecorder()
		req = jsonRequest("GET", "/api/v1/admin/users", nil, clientToken)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 403, w.Code)
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
