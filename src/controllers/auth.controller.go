package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"planngo/src/db"
	"planngo/src/models"
	"planngo/src/types"
	"planngo/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func AuthRegister(ctx *gin.Context) (user *models.User, status int, err error) {
	var body types.RegisterRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("could not complete registration")
	}

	db := db.GetDb()
	var newUser models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.
			Model(&models.User{}).
			Select("id").
			Where("email = ?", body.Email).
			First(&existing).
			Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("could not complete transaction")
			}
		}
		if existing.ID > 0 {
			err := errors.New("user is already registered in the system. Please proceed to Log In")
			log.Printf("error: %s\n", err.Error())
			return err
		}

		newUser = models.User{
			Name:           body.Name,
			Email:          body.Email,
			HashedPassword: string(hashed),
			Role:           body.Role,
		}
		if body.Phone != "" {
			newUser.Phone = &body.Phone
		}
		if err := tx.Create(&newUser).Error; err != nil {
			log.Printf("Error creating user: %s\n", err.Error())
			return fmt.Errorf("error creating user: %s", body.Email)
		}

		switch types.Role(body.Role) {
		case types.ROLE_ORGANIZER:
			newOrganizer := models.Organizer{
				UserID:       newUser.ID,
				Organization: fmt.Sprintf("%s's organization", body.Name),
			}
			if err := tx.Create(&newOrganizer).Error; err != nil {
				return err
			}
		default:
			newClient := models.Client{
				UserID: newUser.ID,
			}
			if err := tx.Create(&newClient).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &newUser, http.StatusCreated, nil
}

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}

	db := db.GetDb()
	var muser models.User
	if err = db.
		Model(&models.User{}).
		Where(&models.User{Email: body.Email}).
		First(&muser).
		Error; err != nil {
		log.Printf("error: %s\n", err.Error())
		return nil, http.StatusUnauthorized, errors.New("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(muser.HashedPassword), []byte(body.Password)); err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid email or password")
	}

	jwt, err := utils.GenerateJWT(muser.ID, muser.Email, muser.Role)
	if err != nil {
		log.Printf("Error generating token for user [%d]: %s\n", muser.ID, err.Error())
		return nil, http.StatusInternalServerError, errors.New("could not complete login")
	}
	return &jwt, http.StatusOK, nil
}

type googleTokenInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Aud           string `json:"aud"`
	Exp           string `json:"exp"`
}

// AuthGoogle signs a user in with a Google ID token, registering them on
// first sight. The token is validated against Google's tokeninfo endpoint.
func AuthGoogle(ctx *gin.Context) (token *string, status int, err error) {
	var body types.GoogleLoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	info, err := verifyGoogleIDToken(body.IDToken)
	if err != nil {
		log.Printf("Error verifying Google token: %s\n", err.Error())
		return nil, http.StatusUnauthorized, errors.New("invalid Google token")
	}

	db := db.GetDb()
	var muser models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.User{}).
			Where("google_id = ? OR email = ?", info.Sub, info.Email).
			First(&muser).
			Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if muser.ID > 0 {
			if muser.GoogleID == nil {
				return tx.
					Model(&models.User{}).
					Where("id = ?", muser.ID).
					Updates(&models.User{GoogleID: &info.Sub, EmailVerified: true}).
					Error
			}
			return nil
		}
		role := body.Role
		if role == "" {
			role = string(types.ROLE_CLIENT)
		}
		muser = models.User{
			Name:          info.Name,
			Email:         info.Email,
			Role:          role,
			EmailVerified: true,
			GoogleID:      &info.Sub,
		}
		if info.Picture != "" {
			muser.Pfp = &info.Picture
		}
		if err := tx.Create(&muser).Error; err != nil {
			return err
		}
		switch types.Role(role) {
		case types.ROLE_ORGANIZER:
			return tx.Create(&models.Organizer{
				UserID:       muser.ID,
				Organization: fmt.Sprintf("%s's organization", info.Name),
			}).Error
		default:
			return tx.Create(&models.Client{UserID: muser.ID}).Error
		}
	})
	if err != nil {
		log.Printf("Error signing in user [%s] with Google: %s\n", info.Email, err.Error())
		return nil, http.StatusBadRequest, err
	}

	jwt, err := utils.GenerateJWT(muser.ID, muser.Email, muser.Role)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("could not complete login")
	}
	return &jwt, http.StatusOK, nil
}

func verifyGoogleIDToken(idToken string) (*googleTokenInfo, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(fmt.Sprintf("https://oauth2.googleapis.com/tokeninfo?id_token=%s", idToken))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo returned status %d", resp.StatusCode)
	}
	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" || info.Sub == "" {
		return nil, errors.New("token is missing required claims")
	}
	return &info, nil
}
